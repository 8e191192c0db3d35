package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arhambuilds/storefront-backend/internal/app/service"
	"github.com/arhambuilds/storefront-backend/internal/routeview"
)

// ResolveController answers "which view does this path land on" for the
// client shell, and lists the coupon chips the storefront renders.
type ResolveController struct {
	resolver      *routeview.Resolver
	couponService service.CouponService
}

func NewResolveController(resolver *routeview.Resolver, couponService service.CouponService) *ResolveController {
	return &ResolveController{
		resolver:      resolver,
		couponService: couponService,
	}
}

// ResolvePath maps a storefront path to its view
// GET /api/v1/resolve?path=/product/some-slug
func (ctrl *ResolveController) ResolvePath(c *gin.Context) {
	path := c.Query("path")
	c.JSON(http.StatusOK, ctrl.resolver.Resolve(path))
}

// GetCoupons lists the available coupon codes
// GET /api/v1/coupons
func (ctrl *ResolveController) GetCoupons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"coupons": ctrl.couponService.List()})
}
