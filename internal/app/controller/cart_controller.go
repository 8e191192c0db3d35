package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arhambuilds/storefront-backend/internal/app/model"
	"github.com/arhambuilds/storefront-backend/internal/app/service"
	apperrors "github.com/arhambuilds/storefront-backend/internal/errors"
	"github.com/arhambuilds/storefront-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{cartService: cartService}
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

type ChangeQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type VisibilityRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

// cartResponse flattens the aggregate plus its derived figures, which the
// storefront renders directly without recomputing.
func cartResponse(cart *model.Cart) gin.H {
	return gin.H{
		"cart":            cart,
		"subtotal":        cart.Subtotal(),
		"total":           cart.Total(),
		"line_item_count": cart.LineItemCount(),
	}
}

// GetCart returns the session cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.SessionID(c)

	cart, err := ctrl.cartService.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		log.Error("Failed to fetch cart", err, nil)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.InternalStoreError, "Failed to fetch cart")
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

// AddItem adds a product to the cart
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.SessionID(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id is required")
		return
	}

	cart, err := ctrl.cartService.AddItem(c.Request.Context(), sessionID, req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.CatalogProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to add item to cart", err, map[string]interface{}{
			"product_id": req.ProductID,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.InternalStoreError, "Failed to add item to cart")
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

// RemoveItem removes a product line from the cart
// DELETE /api/v1/cart/items/:productId
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.SessionID(c)

	cart, err := ctrl.cartService.RemoveItem(c.Request.Context(), sessionID, c.Param("productId"))
	if err != nil {
		log.Error("Failed to remove item from cart", err, map[string]interface{}{
			"product_id": c.Param("productId"),
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.InternalStoreError, "Failed to remove item from cart")
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

// ChangeQuantity adjusts a line quantity by a signed delta
// PATCH /api/v1/cart/items/:productId
func (ctrl *CartController) ChangeQuantity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.SessionID(c)

	var req ChangeQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "delta is required and must be non-zero")
		return
	}

	cart, err := ctrl.cartService.ChangeQuantity(c.Request.Context(), sessionID, c.Param("productId"), req.Delta)
	if err != nil {
		log.Error("Failed to change quantity", err, map[string]interface{}{
			"product_id": c.Param("productId"),
			"delta":      req.Delta,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.InternalStoreError, "Failed to change quantity")
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

// ApplyCoupon applies a coupon code to the cart
// POST /api/v1/cart/coupon
func (ctrl *CartController) ApplyCoupon(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.SessionID(c)

	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "code is required")
		return
	}

	cart, ok, err := ctrl.cartService.ApplyCoupon(c.Request.Context(), sessionID, req.Code)
	if err != nil {
		log.Error("Failed to apply coupon", err, nil)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.InternalStoreError, "Failed to apply coupon")
		return
	}
	if !ok {
		// An unknown code is a normal outcome, not a server error. The
		// storefront shows a transient inline message.
		response := cartResponse(cart)
		response["applied"] = false
		response["error_code"] = apperrors.CouponInvalid
		c.JSON(http.StatusOK, response)
		return
	}

	response := cartResponse(cart)
	response["applied"] = true
	c.JSON(http.StatusOK, response)
}

// RemoveCoupon removes the applied coupon
// DELETE /api/v1/cart/coupon
func (ctrl *CartController) RemoveCoupon(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.SessionID(c)

	cart, err := ctrl.cartService.RemoveCoupon(c.Request.Context(), sessionID)
	if err != nil {
		log.Error("Failed to remove coupon", err, nil)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.InternalStoreError, "Failed to remove coupon")
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

// ClearCart empties the cart and drops the coupon
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.SessionID(c)

	if err := ctrl.cartService.Clear(c.Request.Context(), sessionID); err != nil {
		log.Error("Failed to clear cart", err, nil)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.InternalStoreError, "Failed to clear cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SetVisibility shows or hides the cart drawer
// PUT /api/v1/cart/visibility
func (ctrl *CartController) SetVisibility(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "visible is required")
		return
	}

	ctrl.cartService.SetVisibility(sessionID, *req.Visible)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
