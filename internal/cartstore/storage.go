// Package cartstore persists session carts: a lines snapshot and a coupon
// snapshot per session, plus the per-session checkout latch. The Redis
// implementation backs production; the in-memory one backs tests.
package cartstore

import (
	"context"
	"time"

	"github.com/arhambuilds/storefront-backend/internal/app/model"
)

// CheckoutLatch marks a checkout in flight for a session. At most one latch
// exists per session; it is released on completion, dismissal, or timeout.
type CheckoutLatch struct {
	OrderID    string    `json:"order_id"`
	Mode       string    `json:"mode"`
	ProductID  string    `json:"product_id,omitempty"`
	CouponCode string    `json:"coupon_code,omitempty"`
	Amount     int64     `json:"amount"`
	StartedAt  time.Time `json:"started_at"`
}

type Storage interface {
	// LoadLines returns the persisted cart lines. Corrupt or
	// version-mismatched snapshots are logged and read as an empty cart.
	LoadLines(ctx context.Context, sessionID string) ([]model.CartLine, error)
	SaveLines(ctx context.Context, sessionID string, lines []model.CartLine) error

	// LoadCoupon returns the applied coupon, nil when none.
	LoadCoupon(ctx context.Context, sessionID string) (*model.Coupon, error)
	// SaveCoupon persists the coupon; nil removes it.
	SaveCoupon(ctx context.Context, sessionID string, coupon *model.Coupon) error

	// Clear removes both snapshots for the session.
	Clear(ctx context.Context, sessionID string) error

	// AcquireLatch sets the checkout latch if none is held. Returns false
	// when a checkout is already in flight.
	AcquireLatch(ctx context.Context, sessionID string, latch CheckoutLatch, ttl time.Duration) (bool, error)
	// Latch returns the held latch, nil when none.
	Latch(ctx context.Context, sessionID string) (*CheckoutLatch, error)
	ReleaseLatch(ctx context.Context, sessionID string) error
	// StaleLatches returns latches older than the cutoff, keyed by session.
	StaleLatches(ctx context.Context, olderThan time.Duration) (map[string]CheckoutLatch, error)
}
