package service

import (
	"github.com/arhambuilds/storefront-backend/internal/catalog"
)

// CouponService resolves coupon codes against the static coupon table. Both
// the cart checkout and the single-product checkout go through the same
// table, so a code is worth the same percentage on every path.
type CouponService interface {
	Resolve(code string) (percent int, ok bool)
	List() []string
}

type couponService struct{}

// NewCouponService creates a new coupon service
func NewCouponService() CouponService {
	return &couponService{}
}

func (s *couponService) Resolve(code string) (int, bool) {
	return catalog.ResolveCoupon(code)
}

func (s *couponService) List() []string {
	return catalog.CouponCodes()
}
