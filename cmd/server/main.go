package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arhambuilds/storefront-backend/config"
	"github.com/arhambuilds/storefront-backend/internal/app/controller"
	"github.com/arhambuilds/storefront-backend/internal/app/repository"
	"github.com/arhambuilds/storefront-backend/internal/app/service"
	"github.com/arhambuilds/storefront-backend/internal/cartstore"
	"github.com/arhambuilds/storefront-backend/internal/db"
	"github.com/arhambuilds/storefront-backend/internal/middleware"
	"github.com/arhambuilds/storefront-backend/internal/router"
	"github.com/arhambuilds/storefront-backend/internal/routeview"
	"github.com/arhambuilds/storefront-backend/internal/scheduler"
	"github.com/arhambuilds/storefront-backend/internal/storage"
	"github.com/arhambuilds/storefront-backend/internal/websocket"
	"github.com/arhambuilds/storefront-backend/pkg/logger"
	"github.com/arhambuilds/storefront-backend/pkg/mailer"
	"github.com/arhambuilds/storefront-backend/pkg/payment/razorpay"
	"github.com/arhambuilds/storefront-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Storefront Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations and seed the catalog
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed catalog", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize Redis (cart snapshots and checkout latches)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize Redis", err)
	}
	defer redis.Close()

	cartStorage := cartstore.NewRedisStorage(redis.GetClient())

	// Payment gateway: a missing key pair leaves checkout in "unavailable"
	// mode rather than crashing the storefront.
	var gateway service.CheckoutGateway
	if cfg.Payment.Razorpay.Configured() {
		client, err := razorpay.NewClient(razorpay.Config{
			KeyID:     cfg.Payment.Razorpay.KeyID,
			KeySecret: cfg.Payment.Razorpay.KeySecret,
			BaseURL:   cfg.Payment.Razorpay.BaseURL,
		})
		if err != nil {
			logger.Fatal("Failed to create payment client", err)
		}
		gateway = client
	} else {
		logger.Warn("Payment gateway not configured; checkout will be refused", nil)
	}

	var presigner service.ArchivePresigner
	if cfg.S3.Bucket != "" {
		presigner = storage.NewS3Storage(&cfg.S3, cfg.Checkout.DownloadTTL)
	} else {
		logger.Warn("Archive bucket not configured; download links will be omitted", nil)
	}

	// Checkout event feed
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories and services
	productRepo := repository.NewProductRepository(db.GetDB())

	couponService := service.NewCouponService()
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartStorage, productRepo, couponService)
	checkoutService := service.NewCheckoutService(
		cartStorage,
		cartService,
		productRepo,
		couponService,
		gateway,
		presigner,
		hub,
		&cfg.Checkout,
		&cfg.Payment.Razorpay,
	)
	contactService := service.NewContactService(mailer.New(cfg.SMTP))

	resolver := routeview.NewResolver(func(slug string) bool {
		_, err := productRepo.FindBySlug(slug)
		return err == nil
	})

	// Initialize controllers
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	checkoutController := controller.NewCheckoutController(checkoutService, hub)
	contactController := controller.NewContactController(contactService)
	resolveController := controller.NewResolveController(resolver, couponService)

	// Session middleware keys carts to anonymous visitors
	sessionMiddleware := middleware.NewSessionMiddleware(&cfg.Session)

	// Setup router
	r := router.NewRouter(
		productController,
		cartController,
		checkoutController,
		contactController,
		resolveController,
		sessionMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start the stale checkout reaper
	reaper := scheduler.NewCheckoutReaper(cartStorage, hub, &cfg.Checkout)
	if err := reaper.Start(); err != nil {
		logger.Fatal("Failed to start checkout reaper", err)
	}
	defer reaper.Stop()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
