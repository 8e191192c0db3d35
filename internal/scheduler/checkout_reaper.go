package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/arhambuilds/storefront-backend/config"
	"github.com/arhambuilds/storefront-backend/internal/cartstore"
	"github.com/arhambuilds/storefront-backend/internal/websocket"
	"github.com/arhambuilds/storefront-backend/pkg/logger"
)

// CheckoutReaper sweeps checkout latches whose sessions never came back from
// the payment widget. The Redis TTL already expires latch keys on its own;
// the reaper exists so abandoned sessions also get a checkout.failed event
// instead of silently losing their in-progress state.
type CheckoutReaper struct {
	cron     *cron.Cron
	store    cartstore.Storage
	notifier *websocket.Hub
	cfg      *config.CheckoutConfig
}

// NewCheckoutReaper creates a new checkout reaper
func NewCheckoutReaper(store cartstore.Storage, notifier *websocket.Hub, cfg *config.CheckoutConfig) *CheckoutReaper {
	return &CheckoutReaper{
		cron:     cron.New(),
		store:    store,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Start schedules the sweep. The cron expression comes from config so
// deployments can tune how aggressively stale checkouts are reported.
func (r *CheckoutReaper) Start() error {
	_, err := r.cron.AddFunc(r.cfg.ReaperSpec, r.Sweep)
	if err != nil {
		logger.Error("Failed to add cron job for checkout reaper", err)
		return err
	}

	r.cron.Start()
	logger.Info("Checkout reaper started", map[string]interface{}{
		"spec":    r.cfg.ReaperSpec,
		"timeout": r.cfg.Timeout.String(),
	})
	return nil
}

// Sweep releases latches older than the checkout timeout and notifies their
// sessions.
func (r *CheckoutReaper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stale, err := r.store.StaleLatches(ctx, r.cfg.Timeout)
	if err != nil {
		logger.Error("Failed to scan stale checkout latches", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	for sessionID, latch := range stale {
		if err := r.store.ReleaseLatch(ctx, sessionID); err != nil {
			logger.Error("Failed to release stale checkout latch", err, map[string]interface{}{
				"session_id": sessionID,
				"order_id":   latch.OrderID,
			})
			continue
		}

		if r.notifier != nil {
			r.notifier.Push(sessionID, websocket.Event{
				Type:    websocket.EventCheckoutFailed,
				OrderID: latch.OrderID,
				Reason:  "timeout",
			})
		}

		logger.Warn("Reaped stale checkout", map[string]interface{}{
			"session_id": sessionID,
			"order_id":   latch.OrderID,
			"age":        time.Since(latch.StartedAt).String(),
		})
	}
}

// Stop halts the scheduler.
func (r *CheckoutReaper) Stop() {
	logger.Info("Stopping checkout reaper...", nil)
	r.cron.Stop()
	logger.Info("Checkout reaper stopped", nil)
}
