package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arhambuilds/storefront-backend/internal/app/service"
	apperrors "github.com/arhambuilds/storefront-backend/internal/errors"
	"github.com/arhambuilds/storefront-backend/internal/middleware"
)

type ContactController struct {
	contactService service.ContactService
}

func NewContactController(contactService service.ContactService) *ContactController {
	return &ContactController{contactService: contactService}
}

// SubmitInquiry relays a visitor message to the storefront inbox
// POST /api/v1/contact
func (ctrl *ContactController) SubmitInquiry(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	if err := ctrl.contactService.Relay(input); err != nil {
		if errors.Is(err, service.ErrContactMissingFields) {
			apperrors.BadRequest(c, apperrors.ContactMissingFields, "Name, email and message are required")
			return
		}
		log.Error("Failed to relay inquiry", err, nil)
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.ContactRelayFailed, "Failed to send message, please try again")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
