package service

import (
	"errors"
	"strings"

	"github.com/arhambuilds/storefront-backend/pkg/logger"
	"github.com/arhambuilds/storefront-backend/pkg/mailer"
)

var (
	ErrContactMissingFields = errors.New("name, email and message are required")
)

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactService relays visitor inquiries to the storefront inbox.
type ContactService interface {
	Relay(input ContactInput) error
}

type contactService struct {
	mailer mailer.Mailer
}

// NewContactService creates a new contact service
func NewContactService(m mailer.Mailer) ContactService {
	return &contactService{mailer: m}
}

func (s *contactService) Relay(input ContactInput) error {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	message := strings.TrimSpace(input.Message)
	if name == "" || email == "" || message == "" {
		return ErrContactMissingFields
	}

	if err := s.mailer.SendInquiry(mailer.Inquiry{
		Name:    name,
		Email:   email,
		Message: message,
	}); err != nil {
		logger.Error("Failed to relay contact inquiry", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	logger.Info("Contact inquiry relayed", map[string]interface{}{
		"email": email,
	})
	return nil
}
