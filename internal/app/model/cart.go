package model

// CartSchemaVersion tags persisted cart snapshots so the format can evolve.
// Snapshots with a different version are discarded on load.
const CartSchemaVersion = 1

// CartLine is one product in the cart with its quantity. Line order is
// insertion order; there is at most one line per product ID.
type CartLine struct {
	ProductID    string `json:"product_id"`
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	CurrentPrice int64  `json:"current_price"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Quantity     int    `json:"quantity"`
}

// Cart is the session-scoped aggregate. Lines and the applied coupon are
// persisted after every mutation; totals are derived, never stored.
type Cart struct {
	Lines   []CartLine `json:"lines"`
	Coupon  *Coupon    `json:"applied_coupon"`
	Visible bool       `json:"visible"`
}

// Subtotal is the sum of line prices before any coupon.
func (c *Cart) Subtotal() int64 {
	var sum int64
	for _, line := range c.Lines {
		sum += line.CurrentPrice * int64(line.Quantity)
	}
	return sum
}

// Total applies the coupon to the subtotal. Fractional units are truncated
// toward zero, never rounded.
func (c *Cart) Total() int64 {
	subtotal := c.Subtotal()
	if c.Coupon == nil {
		return subtotal
	}
	return ApplyDiscount(subtotal, c.Coupon.DiscountPercent)
}

// LineItemCount is the sum of quantities across lines (cart badge count).
func (c *Cart) LineItemCount() int {
	var count int
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Line returns the line for the given product ID, or nil.
func (c *Cart) Line(productID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// ApplyDiscount discounts amount by percent, truncating the discounted amount
// toward zero: floor(amount × (100−percent) / 100). Used for whole-cart totals.
func ApplyDiscount(amount int64, percent int) int64 {
	return amount * int64(100-percent) / 100
}

// DiscountAmount truncates the discount itself: floor(amount × percent / 100).
// The single-product checkout subtracts this from the price, which can differ
// from ApplyDiscount by one unit. Both truncation contexts are deliberate.
func DiscountAmount(amount int64, percent int) int64 {
	return amount * int64(percent) / 100
}
