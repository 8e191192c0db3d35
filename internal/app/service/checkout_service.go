package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arhambuilds/storefront-backend/config"
	"github.com/arhambuilds/storefront-backend/internal/app/model"
	"github.com/arhambuilds/storefront-backend/internal/app/repository"
	"github.com/arhambuilds/storefront-backend/internal/cartstore"
	"github.com/arhambuilds/storefront-backend/internal/websocket"
	"github.com/arhambuilds/storefront-backend/pkg/logger"
	"github.com/arhambuilds/storefront-backend/pkg/payment/razorpay"
	"gorm.io/gorm"
)

var (
	ErrConsentRequired       = errors.New("terms consent is required before checkout")
	ErrCheckoutInFlight      = errors.New("a checkout is already in progress for this session")
	ErrCheckoutNotInFlight   = errors.New("no matching checkout is in progress")
	ErrGatewayUnavailable    = errors.New("payment system unavailable, please retry")
	ErrCartEmpty             = errors.New("cart is empty")
	ErrInvalidCheckoutAmount = errors.New("checkout amount must be positive")
	ErrSignatureMismatch     = errors.New("payment signature verification failed")
)

const (
	CheckoutModeCart   = "cart"
	CheckoutModeSingle = "single"
)

// CheckoutGateway is the slice of the payment provider the checkout flow
// needs. *razorpay.Client satisfies it.
type CheckoutGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
}

// ArchivePresigner issues short-lived download URLs for purchased archives.
type ArchivePresigner interface {
	PresignDownload(ctx context.Context, key string) (string, error)
}

// CheckoutNotifier pushes checkout outcome events to the session's event
// feed. *websocket.Hub satisfies it.
type CheckoutNotifier interface {
	Push(sessionID string, event websocket.Event)
}

type BeginCheckoutInput struct {
	Mode       string `json:"mode" binding:"required"`
	ProductID  string `json:"product_id"`
	CouponCode string `json:"coupon_code"`
	Consent    bool   `json:"consent"`
}

type BeginCheckoutResult struct {
	OrderID      string `json:"order_id"`
	KeyID        string `json:"key_id"`
	Amount       int64  `json:"amount"` // minor units (paise)
	Currency     string `json:"currency"`
	Description  string `json:"description"`
	MerchantName string `json:"merchant_name"`
	ThemeColor   string `json:"theme_color"`
	ImageURL     string `json:"image_url"`
}

type CompleteCheckoutInput struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type DownloadLink struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type CompleteCheckoutResult struct {
	OrderID   string         `json:"order_id"`
	Downloads []DownloadLink `json:"downloads"`
}

// CheckoutService drives the handoff to the payment widget: one parameterized
// flow for whole-cart and single-product purchases, with at most one checkout
// in flight per session.
type CheckoutService interface {
	Begin(ctx context.Context, sessionID string, input BeginCheckoutInput) (*BeginCheckoutResult, error)
	Complete(ctx context.Context, sessionID string, input CompleteCheckoutInput) (*CompleteCheckoutResult, error)
	Dismiss(ctx context.Context, sessionID, orderID string) error
}

type checkoutService struct {
	store       cartstore.Storage
	cartSvc     CartService
	productRepo repository.ProductRepository
	coupons     CouponService
	gateway     CheckoutGateway
	presigner   ArchivePresigner
	notifier    CheckoutNotifier
	cfg         *config.CheckoutConfig
	payCfg      *config.RazorpayConfig
}

// NewCheckoutService creates a new checkout service. gateway and presigner
// may be nil when unconfigured; Begin then refuses with ErrGatewayUnavailable
// and Complete skips download links respectively.
func NewCheckoutService(
	store cartstore.Storage,
	cartSvc CartService,
	productRepo repository.ProductRepository,
	coupons CouponService,
	gateway CheckoutGateway,
	presigner ArchivePresigner,
	notifier CheckoutNotifier,
	cfg *config.CheckoutConfig,
	payCfg *config.RazorpayConfig,
) CheckoutService {
	return &checkoutService{
		store:       store,
		cartSvc:     cartSvc,
		productRepo: productRepo,
		coupons:     coupons,
		gateway:     gateway,
		presigner:   presigner,
		notifier:    notifier,
		cfg:         cfg,
		payCfg:      payCfg,
	}
}

func (s *checkoutService) Begin(ctx context.Context, sessionID string, input BeginCheckoutInput) (*BeginCheckoutResult, error) {
	// The UI gates on consent too; the server check is the one that counts.
	if !input.Consent {
		return nil, ErrConsentRequired
	}
	if input.Mode != CheckoutModeCart && input.Mode != CheckoutModeSingle {
		return nil, fmt.Errorf("unknown checkout mode %q", input.Mode)
	}
	if s.gateway == nil {
		logger.Warn("Checkout refused: payment gateway not configured", map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, ErrGatewayUnavailable
	}

	if held, err := s.store.Latch(ctx, sessionID); err != nil {
		return nil, err
	} else if held != nil {
		return nil, ErrCheckoutInFlight
	}

	amount, description, err := s.resolveAmount(ctx, sessionID, input)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, ErrInvalidCheckoutAmount
	}

	order, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   amount * 100, // INR to paise
		Currency: s.cfg.CurrencyCode,
		Receipt:  uuid.New().String(),
		Notes: map[string]string{
			"mode":       input.Mode,
			"session_id": sessionID,
		},
	})
	if err != nil {
		logger.Error("Failed to create payment order", err, map[string]interface{}{
			"session_id": sessionID,
			"mode":       input.Mode,
			"amount":     amount,
		})
		return nil, ErrGatewayUnavailable
	}

	latch := cartstore.CheckoutLatch{
		OrderID:    order.ID,
		Mode:       input.Mode,
		ProductID:  input.ProductID,
		CouponCode: input.CouponCode,
		Amount:     amount,
		StartedAt:  time.Now().UTC(),
	}
	acquired, err := s.store.AcquireLatch(ctx, sessionID, latch, s.cfg.Timeout)
	if err != nil {
		return nil, err
	}
	if !acquired {
		// Lost the race to a concurrent Begin. The unpaid provider order
		// lapses on its own.
		return nil, ErrCheckoutInFlight
	}

	logger.Info("Checkout started", map[string]interface{}{
		"session_id": sessionID,
		"order_id":   order.ID,
		"mode":       input.Mode,
		"amount":     amount,
	})

	return &BeginCheckoutResult{
		OrderID:      order.ID,
		KeyID:        s.gateway.KeyID(),
		Amount:       order.Amount,
		Currency:     order.Currency,
		Description:  description,
		MerchantName: s.payCfg.MerchantName,
		ThemeColor:   s.payCfg.ThemeColor,
		ImageURL:     s.payCfg.ImageURL,
	}, nil
}

// resolveAmount computes the amount to charge, in whole INR, server-side.
// Cart mode discounts the subtotal; single mode subtracts the truncated
// per-product discount. The two paths can differ by one rupee on the same
// price, which matches how the storefront has always displayed them.
func (s *checkoutService) resolveAmount(ctx context.Context, sessionID string, input BeginCheckoutInput) (int64, string, error) {
	switch input.Mode {
	case CheckoutModeCart:
		cart, err := s.cartSvc.GetCart(ctx, sessionID)
		if err != nil {
			return 0, "", err
		}
		if len(cart.Lines) == 0 {
			return 0, "", ErrCartEmpty
		}
		return cart.Total(), fmt.Sprintf("%d template(s)", cart.LineItemCount()), nil

	case CheckoutModeSingle:
		product, err := s.productRepo.FindByID(input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, "", ErrProductNotFound
			}
			return 0, "", err
		}
		amount := product.CurrentPrice
		if percent, ok := s.coupons.Resolve(input.CouponCode); ok {
			amount -= model.DiscountAmount(product.CurrentPrice, percent)
		}
		return amount, product.Title, nil
	}
	return 0, "", fmt.Errorf("unknown checkout mode %q", input.Mode)
}

func (s *checkoutService) Complete(ctx context.Context, sessionID string, input CompleteCheckoutInput) (*CompleteCheckoutResult, error) {
	latch, err := s.store.Latch(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if latch == nil || latch.OrderID != input.OrderID {
		return nil, ErrCheckoutNotInFlight
	}

	if !s.gateway.VerifyPaymentSignature(input.OrderID, input.PaymentID, input.Signature) {
		logger.Warn("Payment signature mismatch", map[string]interface{}{
			"session_id": sessionID,
			"order_id":   input.OrderID,
		})
		return nil, ErrSignatureMismatch
	}

	downloads, err := s.collectDownloads(ctx, sessionID, latch)
	if err != nil {
		// Payment already went through; deliver what we can and log the rest.
		logger.Error("Failed to presign purchased archives", err, map[string]interface{}{
			"session_id": sessionID,
			"order_id":   input.OrderID,
		})
	}

	if latch.Mode == CheckoutModeCart {
		if err := s.cartSvc.Clear(ctx, sessionID); err != nil {
			logger.Error("Failed to clear cart after checkout", err, map[string]interface{}{
				"session_id": sessionID,
			})
		}
	}
	if err := s.store.ReleaseLatch(ctx, sessionID); err != nil {
		logger.Error("Failed to release checkout latch", err, map[string]interface{}{
			"session_id": sessionID,
		})
	}

	if s.notifier != nil {
		s.notifier.Push(sessionID, websocket.Event{
			Type:    websocket.EventCheckoutCompleted,
			OrderID: input.OrderID,
			Payload: map[string]interface{}{"downloads": downloads},
		})
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"session_id": sessionID,
		"order_id":   input.OrderID,
		"mode":       latch.Mode,
		"downloads":  len(downloads),
	})
	return &CompleteCheckoutResult{OrderID: input.OrderID, Downloads: downloads}, nil
}

func (s *checkoutService) collectDownloads(ctx context.Context, sessionID string, latch *cartstore.CheckoutLatch) ([]DownloadLink, error) {
	if s.presigner == nil {
		return nil, nil
	}

	var productIDs []string
	if latch.Mode == CheckoutModeSingle {
		productIDs = []string{latch.ProductID}
	} else {
		lines, err := s.store.LoadLines(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			productIDs = append(productIDs, line.ProductID)
		}
	}

	downloads := make([]DownloadLink, 0, len(productIDs))
	var firstErr error
	for _, id := range productIDs {
		product, err := s.productRepo.FindByID(id)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if product.ArchiveKey == "" {
			continue
		}
		url, err := s.presigner.PresignDownload(ctx, product.ArchiveKey)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		downloads = append(downloads, DownloadLink{
			Slug:  product.Slug,
			Title: product.Title,
			URL:   url,
		})
	}
	return downloads, firstErr
}

func (s *checkoutService) Dismiss(ctx context.Context, sessionID, orderID string) error {
	latch, err := s.store.Latch(ctx, sessionID)
	if err != nil {
		return err
	}
	// Dismissing a checkout that is not in flight is a no-op: the widget can
	// fire dismiss after a timeout reap already cleaned up.
	if latch == nil || latch.OrderID != orderID {
		return nil
	}
	if err := s.store.ReleaseLatch(ctx, sessionID); err != nil {
		return err
	}
	logger.Info("Checkout dismissed", map[string]interface{}{
		"session_id": sessionID,
		"order_id":   orderID,
	})
	return nil
}
