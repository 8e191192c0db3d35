// Package mailer relays contact-form inquiries over SMTP.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/arhambuilds/storefront-backend/config"
	"github.com/arhambuilds/storefront-backend/pkg/logger"
)

// Inquiry is a contact-form submission to relay.
type Inquiry struct {
	Name    string
	Email   string
	Message string
}

// Mailer sends an inquiry to the configured recipient.
type Mailer interface {
	SendInquiry(inquiry Inquiry) error
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

func New(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

// SendInquiry relays the inquiry via SMTP. Without credentials it logs the
// inquiry and reports success, so development environments keep working.
func (m *smtpMailer) SendInquiry(inquiry Inquiry) error {
	if !m.cfg.Configured() {
		logger.Warn("SMTP credentials not configured, simulating relay", map[string]interface{}{
			"from_name":  inquiry.Name,
			"from_email": inquiry.Email,
		})
		return nil
	}

	to := m.cfg.To
	if to == "" {
		to = m.cfg.User
	}

	subject := fmt.Sprintf("New Inquiry from %s", inquiry.Name)
	body := fmt.Sprintf("Name: %s\nEmail: %s\n\nMessage:\n%s",
		inquiry.Name, inquiry.Email, inquiry.Message)

	// The envelope sender must be the authenticated account; the visitor's
	// address goes in Reply-To.
	message := []byte(fmt.Sprintf(
		"From: %q <%s>\r\n"+
			"To: %s\r\n"+
			"Reply-To: %s\r\n"+
			"Subject: %s\r\n"+
			"\r\n"+
			"%s",
		inquiry.Name, m.cfg.User, to, inquiry.Email, subject, body,
	))

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)

	err := smtp.SendMail(
		m.cfg.Host+":"+m.cfg.Port,
		auth,
		m.cfg.User,
		[]string{to},
		message,
	)
	if err != nil {
		logger.Error("Failed to relay inquiry", err, map[string]interface{}{
			"from_email": inquiry.Email,
		})
		return fmt.Errorf("failed to relay inquiry: %w", err)
	}

	logger.Info("Inquiry relayed successfully", map[string]interface{}{
		"from_email": inquiry.Email,
	})
	return nil
}
