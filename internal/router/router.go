package router

import (
	"github.com/gin-gonic/gin"

	"github.com/arhambuilds/storefront-backend/config"
	"github.com/arhambuilds/storefront-backend/internal/app/controller"
	"github.com/arhambuilds/storefront-backend/internal/middleware"
)

type Router struct {
	productController  *controller.ProductController
	cartController     *controller.CartController
	checkoutController *controller.CheckoutController
	contactController  *controller.ContactController
	resolveController  *controller.ResolveController
	sessionMiddleware  *middleware.SessionMiddleware
	config             *config.Config
}

func NewRouter(
	productController *controller.ProductController,
	cartController *controller.CartController,
	checkoutController *controller.CheckoutController,
	contactController *controller.ContactController,
	resolveController *controller.ResolveController,
	sessionMiddleware *middleware.SessionMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		productController:  productController,
		cartController:     cartController,
		checkoutController: checkoutController,
		contactController:  contactController,
		resolveController:  resolveController,
		sessionMiddleware:  sessionMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(r.sessionMiddleware.Attach())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetProducts)
			products.GET("/categories", r.productController.GetCategories)
			products.GET("/:slug", r.productController.GetProductBySlug)
		}

		cart := v1.Group("/cart")
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/items", r.cartController.AddItem)
			cart.PATCH("/items/:productId", r.cartController.ChangeQuantity)
			cart.DELETE("/items/:productId", r.cartController.RemoveItem)
			cart.POST("/coupon", r.cartController.ApplyCoupon)
			cart.DELETE("/coupon", r.cartController.RemoveCoupon)
			cart.PUT("/visibility", r.cartController.SetVisibility)
		}

		checkout := v1.Group("/checkout")
		{
			checkout.POST("", r.checkoutController.BeginCheckout)
			checkout.POST("/complete", r.checkoutController.CompleteCheckout)
			checkout.POST("/dismiss", r.checkoutController.DismissCheckout)
			checkout.GET("/events", r.checkoutController.Events)
		}

		v1.GET("/coupons", r.resolveController.GetCoupons)
		v1.GET("/resolve", r.resolveController.ResolvePath)
		v1.POST("/contact", r.contactController.SubmitInquiry)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
