package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/arhambuilds/storefront-backend/config"
	"github.com/arhambuilds/storefront-backend/internal/app/model"
	"github.com/arhambuilds/storefront-backend/internal/app/repository"
	"github.com/arhambuilds/storefront-backend/internal/cartstore"
	"github.com/arhambuilds/storefront-backend/internal/db"
	"github.com/arhambuilds/storefront-backend/internal/websocket"
	"github.com/arhambuilds/storefront-backend/pkg/payment/razorpay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	orders      int
	lastRequest razorpay.OrderRequest
	createErr   error
	validSig    string
}

func (g *fakeGateway) KeyID() string { return "rzp_test_fake" }

func (g *fakeGateway) CreateOrder(_ context.Context, req razorpay.OrderRequest) (*razorpay.Order, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.orders++
	g.lastRequest = req
	return &razorpay.Order{
		ID:       fmt.Sprintf("order_fake_%d", g.orders),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) VerifyPaymentSignature(_, _, signature string) bool {
	return signature == g.validSig
}

type fakePresigner struct {
	err error
}

func (p *fakePresigner) PresignDownload(_ context.Context, key string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return "https://downloads.test/" + key, nil
}

type fakeNotifier struct {
	events []websocket.Event
}

func (n *fakeNotifier) Push(_ string, event websocket.Event) {
	n.events = append(n.events, event)
}

type checkoutFixture struct {
	checkout CheckoutService
	cart     CartService
	store    *cartstore.MemoryStorage
	gateway  *fakeGateway
	notifier *fakeNotifier
}

func setupCheckoutTest(t *testing.T) *checkoutFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	products := []model.Product{
		{ID: "p1", Slug: "birthday-deluxe", Title: "Birthday Deluxe", Category: "Birthday", CurrentPrice: 281, ArchiveKey: "templates/birthday-deluxe.zip"},
		{ID: "p4", Slug: "new-year-countdown", Title: "New Year Countdown", Category: "Special", CurrentPrice: 149, ArchiveKey: "templates/new-year-countdown.zip"},
		{ID: "p3", Slug: "lyrics-reveal", Title: "Lyrics Reveal", Category: "Special", CurrentPrice: 0},
	}
	for i := range products {
		require.NoError(t, testDB.Create(&products[i]).Error)
	}

	store := cartstore.NewMemoryStorage()
	productRepo := repository.NewProductRepository(testDB)
	coupons := NewCouponService()
	cartSvc := NewCartService(store, productRepo, coupons)
	gateway := &fakeGateway{validSig: "good-signature"}
	notifier := &fakeNotifier{}

	checkout := NewCheckoutService(
		store,
		cartSvc,
		productRepo,
		coupons,
		gateway,
		&fakePresigner{},
		notifier,
		&config.CheckoutConfig{Timeout: 10 * time.Minute, CurrencyCode: "INR"},
		&config.RazorpayConfig{MerchantName: "Test Merchant", ThemeColor: "#000000"},
	)
	return &checkoutFixture{
		checkout: checkout,
		cart:     cartSvc,
		store:    store,
		gateway:  gateway,
		notifier: notifier,
	}
}

func TestCheckoutService_Begin_RequiresConsent(t *testing.T) {
	f := setupCheckoutTest(t)

	_, err := f.checkout.Begin(context.Background(), "sid-1", BeginCheckoutInput{
		Mode:      CheckoutModeSingle,
		ProductID: "p1",
	})
	assert.ErrorIs(t, err, ErrConsentRequired)
	assert.Zero(t, f.gateway.orders)
}

func TestCheckoutService_Begin_CartMode(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, "sid-1", "p1")
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, "sid-1", "p1")
	require.NoError(t, err)
	_, ok, err := f.cart.ApplyCoupon(ctx, "sid-1", "TRYARHAM")
	require.NoError(t, err)
	require.True(t, ok)

	result, err := f.checkout.Begin(ctx, "sid-1", BeginCheckoutInput{
		Mode:    CheckoutModeCart,
		Consent: true,
	})
	require.NoError(t, err)

	// 2×281 = 562, 5% off → 533 INR → 53300 paise.
	assert.Equal(t, int64(53300), result.Amount)
	assert.Equal(t, "INR", result.Currency)
	assert.Equal(t, "rzp_test_fake", result.KeyID)
	assert.NotEmpty(t, result.OrderID)

	latch, err := f.store.Latch(ctx, "sid-1")
	require.NoError(t, err)
	require.NotNil(t, latch)
	assert.Equal(t, result.OrderID, latch.OrderID)
	assert.Equal(t, int64(533), latch.Amount)
}

func TestCheckoutService_Begin_SingleMode_PerProductTruncation(t *testing.T) {
	f := setupCheckoutTest(t)

	result, err := f.checkout.Begin(context.Background(), "sid-1", BeginCheckoutInput{
		Mode:       CheckoutModeSingle,
		ProductID:  "p1",
		CouponCode: "TRYARHAM",
		Consent:    true,
	})
	require.NoError(t, err)

	// 281 − floor(281×5/100) = 281 − 14 = 267 INR. The whole-cart path would
	// give floor(281×0.95) = 266; the per-product path keeps its own math.
	assert.Equal(t, int64(26700), result.Amount)
	assert.Equal(t, "Birthday Deluxe", result.Description)
}

func TestCheckoutService_Begin_EmptyCart(t *testing.T) {
	f := setupCheckoutTest(t)

	_, err := f.checkout.Begin(context.Background(), "sid-1", BeginCheckoutInput{
		Mode:    CheckoutModeCart,
		Consent: true,
	})
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCheckoutService_Begin_SecondWhileInFlight(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, "sid-1", "p1")
	require.NoError(t, err)

	_, err = f.checkout.Begin(ctx, "sid-1", BeginCheckoutInput{Mode: CheckoutModeCart, Consent: true})
	require.NoError(t, err)

	_, err = f.checkout.Begin(ctx, "sid-1", BeginCheckoutInput{Mode: CheckoutModeCart, Consent: true})
	assert.ErrorIs(t, err, ErrCheckoutInFlight)
}

func TestCheckoutService_Begin_GatewayDown(t *testing.T) {
	f := setupCheckoutTest(t)
	f.gateway.createErr = razorpay.ErrNetworkError

	_, err := f.checkout.Begin(context.Background(), "sid-1", BeginCheckoutInput{
		Mode:      CheckoutModeSingle,
		ProductID: "p1",
		Consent:   true,
	})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)

	// No latch left behind after a failed start.
	latch, err := f.store.Latch(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Nil(t, latch)
}

func TestCheckoutService_Complete_HappyPath(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, "sid-1", "p1")
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, "sid-1", "p4")
	require.NoError(t, err)

	begun, err := f.checkout.Begin(ctx, "sid-1", BeginCheckoutInput{Mode: CheckoutModeCart, Consent: true})
	require.NoError(t, err)

	result, err := f.checkout.Complete(ctx, "sid-1", CompleteCheckoutInput{
		OrderID:   begun.OrderID,
		PaymentID: "pay_123",
		Signature: "good-signature",
	})
	require.NoError(t, err)
	require.Len(t, result.Downloads, 2)
	assert.Equal(t, "https://downloads.test/templates/birthday-deluxe.zip", result.Downloads[0].URL)

	// Cart resets, latch clears, completion event goes out.
	cart, err := f.cart.GetCart(ctx, "sid-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	latch, err := f.store.Latch(ctx, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, latch)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, websocket.EventCheckoutCompleted, f.notifier.events[0].Type)
	assert.Equal(t, begun.OrderID, f.notifier.events[0].OrderID)
}

func TestCheckoutService_Complete_BadSignature(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, "sid-1", "p1")
	require.NoError(t, err)
	begun, err := f.checkout.Begin(ctx, "sid-1", BeginCheckoutInput{Mode: CheckoutModeCart, Consent: true})
	require.NoError(t, err)

	_, err = f.checkout.Complete(ctx, "sid-1", CompleteCheckoutInput{
		OrderID:   begun.OrderID,
		PaymentID: "pay_123",
		Signature: "forged",
	})
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	// Latch stays held and the cart is untouched.
	latch, err := f.store.Latch(ctx, "sid-1")
	require.NoError(t, err)
	assert.NotNil(t, latch)

	cart, err := f.cart.GetCart(ctx, "sid-1")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
}

func TestCheckoutService_Complete_WithoutBegin(t *testing.T) {
	f := setupCheckoutTest(t)

	_, err := f.checkout.Complete(context.Background(), "sid-1", CompleteCheckoutInput{
		OrderID:   "order_unknown",
		PaymentID: "pay_123",
		Signature: "good-signature",
	})
	assert.ErrorIs(t, err, ErrCheckoutNotInFlight)
}

func TestCheckoutService_Complete_SingleModeKeepsCart(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, "sid-1", "p4")
	require.NoError(t, err)

	begun, err := f.checkout.Begin(ctx, "sid-1", BeginCheckoutInput{
		Mode:      CheckoutModeSingle,
		ProductID: "p1",
		Consent:   true,
	})
	require.NoError(t, err)

	result, err := f.checkout.Complete(ctx, "sid-1", CompleteCheckoutInput{
		OrderID:   begun.OrderID,
		PaymentID: "pay_123",
		Signature: "good-signature",
	})
	require.NoError(t, err)
	require.Len(t, result.Downloads, 1)
	assert.Equal(t, "birthday-deluxe", result.Downloads[0].Slug)

	// Buying a single product directly leaves the cart alone.
	cart, err := f.cart.GetCart(ctx, "sid-1")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
}

func TestCheckoutService_Dismiss(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, "sid-1", "p1")
	require.NoError(t, err)
	begun, err := f.checkout.Begin(ctx, "sid-1", BeginCheckoutInput{Mode: CheckoutModeCart, Consent: true})
	require.NoError(t, err)

	require.NoError(t, f.checkout.Dismiss(ctx, "sid-1", begun.OrderID))

	latch, err := f.store.Latch(ctx, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, latch)

	// Dismissal keeps the cart; only completion or Clear empties it.
	cart, err := f.cart.GetCart(ctx, "sid-1")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)

	// A second dismiss is a no-op.
	require.NoError(t, f.checkout.Dismiss(ctx, "sid-1", begun.OrderID))
	assert.Empty(t, f.notifier.events)
}

func TestCheckoutService_Begin_NoGatewayConfigured(t *testing.T) {
	f := setupCheckoutTest(t)
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	checkout := NewCheckoutService(
		f.store,
		f.cart,
		repository.NewProductRepository(testDB),
		NewCouponService(),
		nil,
		nil,
		nil,
		&config.CheckoutConfig{Timeout: 10 * time.Minute, CurrencyCode: "INR"},
		&config.RazorpayConfig{},
	)

	_, err = checkout.Begin(context.Background(), "sid-1", BeginCheckoutInput{
		Mode:      CheckoutModeSingle,
		ProductID: "p1",
		Consent:   true,
	})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestCheckoutService_Begin_FreeProductRefused(t *testing.T) {
	f := setupCheckoutTest(t)

	// Free templates are downloaded, not paid for; the gateway never sees a
	// zero amount.
	_, err := f.checkout.Begin(context.Background(), "sid-1", BeginCheckoutInput{
		Mode:      CheckoutModeSingle,
		ProductID: "p3",
		Consent:   true,
	})
	assert.ErrorIs(t, err, ErrInvalidCheckoutAmount)
	assert.Zero(t, f.gateway.orders)
}
