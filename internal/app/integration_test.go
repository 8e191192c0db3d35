package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arhambuilds/storefront-backend/config"
	"github.com/arhambuilds/storefront-backend/internal/app/controller"
	"github.com/arhambuilds/storefront-backend/internal/app/model"
	"github.com/arhambuilds/storefront-backend/internal/app/repository"
	"github.com/arhambuilds/storefront-backend/internal/app/service"
	"github.com/arhambuilds/storefront-backend/internal/cartstore"
	"github.com/arhambuilds/storefront-backend/internal/db"
	"github.com/arhambuilds/storefront-backend/internal/middleware"
	"github.com/arhambuilds/storefront-backend/pkg/payment/razorpay"
)

type stubGateway struct {
	orders int
}

func (g *stubGateway) KeyID() string { return "rzp_test_integration" }

func (g *stubGateway) CreateOrder(_ context.Context, req razorpay.OrderRequest) (*razorpay.Order, error) {
	g.orders++
	return &razorpay.Order{
		ID:       fmt.Sprintf("order_it_%d", g.orders),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func (g *stubGateway) VerifyPaymentSignature(_, _, signature string) bool {
	return signature == "valid"
}

type stubPresigner struct{}

func (stubPresigner) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

type testServer struct {
	Router *gin.Engine
}

func setupIntegrationTest(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	original := int64(349)
	products := []model.Product{
		{ID: "p1", Slug: "birthday-deluxe", Title: "Birthday Deluxe", Category: "Birthday", CurrentPrice: 281, OriginalPrice: &original, ArchiveKey: "templates/birthday-deluxe.zip"},
		{ID: "p4", Slug: "new-year-countdown", Title: "New Year Countdown", Category: "Special", CurrentPrice: 149, ArchiveKey: "templates/new-year-countdown.zip"},
	}
	for i := range products {
		require.NoError(t, testDB.Create(&products[i]).Error)
	}

	store := cartstore.NewMemoryStorage()
	productRepo := repository.NewProductRepository(testDB)
	coupons := service.NewCouponService()
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(store, productRepo, coupons)
	checkoutService := service.NewCheckoutService(
		store,
		cartService,
		productRepo,
		coupons,
		&stubGateway{},
		stubPresigner{},
		nil,
		&config.CheckoutConfig{Timeout: 10 * time.Minute, CurrencyCode: "INR"},
		&config.RazorpayConfig{MerchantName: "Arham Builds"},
	)

	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	checkoutController := controller.NewCheckoutController(checkoutService, nil)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.SessionIDKey, "integration-session")
		c.Next()
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", productController.GetProducts)
		v1.GET("/products/:slug", productController.GetProductBySlug)
		v1.GET("/cart", cartController.GetCart)
		v1.POST("/cart/items", cartController.AddItem)
		v1.POST("/cart/coupon", cartController.ApplyCoupon)
		v1.POST("/checkout", checkoutController.BeginCheckout)
		v1.POST("/checkout/complete", checkoutController.CompleteCheckout)
		v1.POST("/checkout/dismiss", checkoutController.DismissCheckout)
	}
	return &testServer{Router: router}
}

func (ts *testServer) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	ts.Router.ServeHTTP(resp, req)
	return resp
}

// Browse, fill the cart, apply a coupon, pay, download. The whole storefront
// purchase path against one server.
func TestStorefront_PurchaseFlow(t *testing.T) {
	ts := setupIntegrationTest(t)

	// Browse the catalog.
	resp := ts.request(t, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "birthday-deluxe")

	// Add both templates; add the first one twice.
	for _, id := range []string{"p1", "p1", "p4"} {
		resp = ts.request(t, http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": id})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	// Apply TRYARHAM: subtotal 2×281 + 149 = 711, 5% off → floor(675.45) = 675.
	resp = ts.request(t, http.MethodPost, "/api/v1/cart/coupon", gin.H{"code": "TRYARHAM"})
	require.Equal(t, http.StatusOK, resp.Code)
	var cartBody struct {
		Applied bool  `json:"applied"`
		Total   int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cartBody))
	require.True(t, cartBody.Applied)
	assert.Equal(t, int64(675), cartBody.Total)

	// Start the checkout.
	resp = ts.request(t, http.MethodPost, "/api/v1/checkout", gin.H{"mode": "cart", "consent": true})
	require.Equal(t, http.StatusOK, resp.Code)
	var begun struct {
		OrderID string `json:"order_id"`
		Amount  int64  `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &begun))
	assert.Equal(t, int64(67500), begun.Amount)

	// A second checkout while the widget is open is refused.
	resp = ts.request(t, http.MethodPost, "/api/v1/checkout", gin.H{"mode": "cart", "consent": true})
	assert.Equal(t, http.StatusConflict, resp.Code)

	// The widget reports success; the server verifies and delivers.
	resp = ts.request(t, http.MethodPost, "/api/v1/checkout/complete", gin.H{
		"order_id":   begun.OrderID,
		"payment_id": "pay_it_1",
		"signature":  "valid",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	var completed struct {
		Downloads []struct {
			Slug string `json:"slug"`
			URL  string `json:"url"`
		} `json:"downloads"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &completed))
	require.Len(t, completed.Downloads, 2)
	assert.Equal(t, "https://cdn.test/templates/birthday-deluxe.zip", completed.Downloads[0].URL)

	// The cart is reset for the next visit.
	resp = ts.request(t, http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var cart struct {
		Total         int64 `json:"total"`
		LineItemCount int   `json:"line_item_count"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cart))
	assert.Zero(t, cart.Total)
	assert.Zero(t, cart.LineItemCount)
}

func TestStorefront_DismissKeepsCart(t *testing.T) {
	ts := setupIntegrationTest(t)

	resp := ts.request(t, http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "p1"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.request(t, http.MethodPost, "/api/v1/checkout", gin.H{"mode": "cart", "consent": true})
	require.Equal(t, http.StatusOK, resp.Code)
	var begun struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &begun))

	resp = ts.request(t, http.MethodPost, "/api/v1/checkout/dismiss", gin.H{"order_id": begun.OrderID})
	require.Equal(t, http.StatusOK, resp.Code)

	// Cart survives a closed widget, and a new checkout can start.
	resp = ts.request(t, http.MethodGet, "/api/v1/cart", nil)
	var cart struct {
		LineItemCount int `json:"line_item_count"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cart))
	assert.Equal(t, 1, cart.LineItemCount)

	resp = ts.request(t, http.MethodPost, "/api/v1/checkout", gin.H{"mode": "cart", "consent": true})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestStorefront_ConsentGate(t *testing.T) {
	ts := setupIntegrationTest(t)

	resp := ts.request(t, http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "p1"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.request(t, http.MethodPost, "/api/v1/checkout", gin.H{"mode": "cart"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "CHECKOUT_CONSENT_REQUIRED")
}
