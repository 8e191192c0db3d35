package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arhambuilds/storefront-backend/internal/app/model"
	"github.com/arhambuilds/storefront-backend/internal/app/repository"
	"github.com/arhambuilds/storefront-backend/internal/app/service"
	"github.com/arhambuilds/storefront-backend/internal/cartstore"
	"github.com/arhambuilds/storefront-backend/internal/db"
	"github.com/arhambuilds/storefront-backend/internal/middleware"
)

func setupCartControllerTest(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	products := []model.Product{
		{ID: "p1", Slug: "birthday-deluxe", Title: "Birthday Deluxe", Category: "Birthday", CurrentPrice: 281},
		{ID: "p2", Slug: "birthday-classic", Title: "Birthday Classic", Category: "Birthday", CurrentPrice: 28},
	}
	for i := range products {
		require.NoError(t, testDB.Create(&products[i]).Error)
	}

	store := cartstore.NewMemoryStorage()
	productRepo := repository.NewProductRepository(testDB)
	cartService := service.NewCartService(store, productRepo, service.NewCouponService())
	cartController := NewCartController(cartService)

	router := gin.New()
	// Pin the session so requests in a test share one cart.
	router.Use(func(c *gin.Context) {
		c.Set(middleware.SessionIDKey, "test-session")
		c.Next()
	})

	api := router.Group("/api/v1")
	{
		api.GET("/cart", cartController.GetCart)
		api.POST("/cart/items", cartController.AddItem)
		api.DELETE("/cart/items/:productId", cartController.RemoveItem)
		api.PATCH("/cart/items/:productId", cartController.ChangeQuantity)
		api.POST("/cart/coupon", cartController.ApplyCoupon)
		api.DELETE("/cart/coupon", cartController.RemoveCoupon)
		api.DELETE("/cart", cartController.ClearCart)
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCartController_AddAndGet(t *testing.T) {
	router := setupCartControllerTest(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "p1"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Cart          model.Cart `json:"cart"`
		Subtotal      int64      `json:"subtotal"`
		Total         int64      `json:"total"`
		LineItemCount int        `json:"line_item_count"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Cart.Lines, 1)
	assert.Equal(t, int64(281), body.Subtotal)
	assert.Equal(t, int64(281), body.Total)
	assert.Equal(t, 1, body.LineItemCount)
}

func TestCartController_AddUnknownProduct(t *testing.T) {
	router := setupCartControllerTest(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "nope"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "CATALOG_PRODUCT_NOT_FOUND")
}

func TestCartController_ApplyCouponFlow(t *testing.T) {
	router := setupCartControllerTest(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "p1"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/cart/coupon", gin.H{"code": "moment10"})
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Applied bool  `json:"applied"`
		Total   int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.True(t, body.Applied)
	// floor(281 × 0.9) = 252
	assert.Equal(t, int64(252), body.Total)
}

func TestCartController_ApplyInvalidCoupon(t *testing.T) {
	router := setupCartControllerTest(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/cart/coupon", gin.H{"code": "FAKE99"})
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Applied   bool   `json:"applied"`
		ErrorCode string `json:"error_code"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.False(t, body.Applied)
	assert.Equal(t, "COUPON_INVALID", body.ErrorCode)
}

func TestCartController_ChangeQuantityAndRemove(t *testing.T) {
	router := setupCartControllerTest(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "p2"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, http.MethodPatch, "/api/v1/cart/items/p2", gin.H{"delta": 2})
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		LineItemCount int `json:"line_item_count"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 3, body.LineItemCount)

	resp = doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/p2", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 0, body.LineItemCount)
}

func TestCartController_Clear(t *testing.T) {
	router := setupCartControllerTest(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "p1"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/cart", nil)
	var body struct {
		Cart model.Cart `json:"cart"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Empty(t, body.Cart.Lines)
}
