package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arhambuilds/storefront-backend/internal/app/service"
	apperrors "github.com/arhambuilds/storefront-backend/internal/errors"
	"github.com/arhambuilds/storefront-backend/internal/middleware"
	"github.com/arhambuilds/storefront-backend/internal/websocket"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
	hub             *websocket.Hub
}

func NewCheckoutController(checkoutService service.CheckoutService, hub *websocket.Hub) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
		hub:             hub,
	}
}

type DismissCheckoutRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

// BeginCheckout starts a checkout and returns the widget parameters
// POST /api/v1/checkout
func (ctrl *CheckoutController) BeginCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.SessionID(c)

	var input service.BeginCheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "mode is required")
		return
	}

	result, err := ctrl.checkoutService.Begin(c.Request.Context(), sessionID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConsentRequired):
			apperrors.BadRequest(c, apperrors.CheckoutConsentRequired, "Please accept the terms before paying")
		case errors.Is(err, service.ErrCheckoutInFlight):
			apperrors.Conflict(c, apperrors.CheckoutInFlight, "A payment is already in progress")
		case errors.Is(err, service.ErrGatewayUnavailable):
			apperrors.ServiceUnavailable(c, apperrors.CheckoutGatewayUnavailable, "Payment system unavailable, please retry")
		case errors.Is(err, service.ErrCartEmpty):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Cart is empty")
		case errors.Is(err, service.ErrInvalidCheckoutAmount):
			apperrors.BadRequest(c, apperrors.CheckoutInvalidAmount, "Nothing to charge for this order")
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.CatalogProductNotFound, "Product not found")
		default:
			log.Error("Failed to begin checkout", err, nil)
			apperrors.InternalError(c, "Failed to begin checkout")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// CompleteCheckout verifies the payment and delivers the purchase
// POST /api/v1/checkout/complete
func (ctrl *CheckoutController) CompleteCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.SessionID(c)

	var input service.CompleteCheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "order_id, payment_id and signature are required")
		return
	}

	result, err := ctrl.checkoutService.Complete(c.Request.Context(), sessionID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCheckoutNotInFlight):
			apperrors.Conflict(c, apperrors.CheckoutNotInFlight, "No matching payment in progress")
		case errors.Is(err, service.ErrSignatureMismatch):
			apperrors.BadRequest(c, apperrors.CheckoutSignatureMismatch, "Payment could not be verified")
		default:
			log.Error("Failed to complete checkout", err, map[string]interface{}{
				"order_id": input.OrderID,
			})
			apperrors.InternalError(c, "Failed to complete checkout")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// DismissCheckout records that the visitor closed the payment widget
// POST /api/v1/checkout/dismiss
func (ctrl *CheckoutController) DismissCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.SessionID(c)

	var req DismissCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "order_id is required")
		return
	}

	if err := ctrl.checkoutService.Dismiss(c.Request.Context(), sessionID, req.OrderID); err != nil {
		log.Error("Failed to dismiss checkout", err, map[string]interface{}{
			"order_id": req.OrderID,
		})
		apperrors.InternalError(c, "Failed to dismiss checkout")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Events upgrades the connection to the session's checkout event feed
// GET /api/v1/checkout/events
func (ctrl *CheckoutController) Events(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.SessionID(c)

	client, err := websocket.Upgrade(c.Writer, c.Request, ctrl.hub, sessionID)
	if err != nil {
		log.Warn("Failed to upgrade checkout event feed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
