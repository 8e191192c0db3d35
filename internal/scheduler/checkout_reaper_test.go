package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arhambuilds/storefront-backend/config"
	"github.com/arhambuilds/storefront-backend/internal/cartstore"
	"github.com/arhambuilds/storefront-backend/internal/websocket"
)

func TestCheckoutReaper_Sweep(t *testing.T) {
	store := cartstore.NewMemoryStorage()
	ctx := context.Background()

	stale := cartstore.CheckoutLatch{
		OrderID:   "order_stale",
		Mode:      "cart",
		Amount:    533,
		StartedAt: time.Now().Add(-time.Hour),
	}
	ok, err := store.AcquireLatch(ctx, "sid-stale", stale, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	fresh := cartstore.CheckoutLatch{
		OrderID:   "order_fresh",
		Mode:      "cart",
		Amount:    281,
		StartedAt: time.Now(),
	}
	ok, err = store.AcquireLatch(ctx, "sid-fresh", fresh, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	reaper := NewCheckoutReaper(store, websocket.NewHub(), &config.CheckoutConfig{
		Timeout:    10 * time.Minute,
		ReaperSpec: "* * * * *",
	})
	reaper.Sweep()

	latch, err := store.Latch(ctx, "sid-stale")
	require.NoError(t, err)
	assert.Nil(t, latch)

	latch, err = store.Latch(ctx, "sid-fresh")
	require.NoError(t, err)
	require.NotNil(t, latch)
	assert.Equal(t, "order_fresh", latch.OrderID)
}
