package model

// Coupon is a percentage discount applied to a cart. At most one coupon is
// applied at a time; applying another replaces it.
type Coupon struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
}
