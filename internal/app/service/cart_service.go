package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/arhambuilds/storefront-backend/internal/app/model"
	"github.com/arhambuilds/storefront-backend/internal/app/repository"
	"github.com/arhambuilds/storefront-backend/internal/cartstore"
	"github.com/arhambuilds/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// CartService owns the session cart aggregate. Every mutation persists the
// full snapshot before returning, so a session survives process restarts with
// whatever it last saw.
type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*model.Cart, error)
	AddItem(ctx context.Context, sessionID, productID string) (*model.Cart, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*model.Cart, error)
	ChangeQuantity(ctx context.Context, sessionID, productID string, delta int) (*model.Cart, error)
	ApplyCoupon(ctx context.Context, sessionID, code string) (*model.Cart, bool, error)
	RemoveCoupon(ctx context.Context, sessionID string) (*model.Cart, error)
	Clear(ctx context.Context, sessionID string) error
	SetVisibility(sessionID string, visible bool)
}

type cartService struct {
	store       cartstore.Storage
	productRepo repository.ProductRepository
	coupons     CouponService

	// Drawer visibility is UI state, not cart state. It lives in memory per
	// session and resets to hidden on restart.
	mu      sync.RWMutex
	visible map[string]bool
}

// NewCartService creates a new cart service
func NewCartService(
	store cartstore.Storage,
	productRepo repository.ProductRepository,
	coupons CouponService,
) CartService {
	return &cartService{
		store:       store,
		productRepo: productRepo,
		coupons:     coupons,
		visible:     make(map[string]bool),
	}
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (*model.Cart, error) {
	lines, err := s.store.LoadLines(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	coupon, err := s.store.LoadCoupon(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	visible := s.visible[sessionID]
	s.mu.RUnlock()

	return &model.Cart{Lines: lines, Coupon: coupon, Visible: visible}, nil
}

func (s *cartService) AddItem(ctx context.Context, sessionID, productID string) (*model.Cart, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"session_id": sessionID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	lines, err := s.store.LoadLines(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, model.CartLine{
			ProductID:    product.ID,
			Slug:         product.Slug,
			Title:        product.Title,
			CurrentPrice: product.CurrentPrice,
			ThumbnailURL: product.ThumbnailURL,
			Quantity:     1,
		})
	}

	if err := s.store.SaveLines(ctx, sessionID, lines); err != nil {
		return nil, err
	}

	// Adding always reveals the cart drawer.
	s.SetVisibility(sessionID, true)

	logger.Info("Item added to cart", map[string]interface{}{
		"session_id": sessionID,
		"product_id": productID,
		"merged":     merged,
	})
	return s.GetCart(ctx, sessionID)
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID, productID string) (*model.Cart, error) {
	lines, err := s.store.LoadLines(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	filtered := lines[:0]
	for _, line := range lines {
		if line.ProductID != productID {
			filtered = append(filtered, line)
		}
	}

	// Removing an absent line is a no-op, not an error.
	if len(filtered) != len(lines) {
		if err := s.store.SaveLines(ctx, sessionID, filtered); err != nil {
			return nil, err
		}
	}
	return s.GetCart(ctx, sessionID)
}

func (s *cartService) ChangeQuantity(ctx context.Context, sessionID, productID string, delta int) (*model.Cart, error) {
	lines, err := s.store.LoadLines(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	changed := false
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}
		// A decrement that would drop the quantity to zero or below is
		// ignored; removal is always explicit.
		if lines[i].Quantity+delta > 0 {
			lines[i].Quantity += delta
			changed = true
		}
		break
	}

	if changed {
		if err := s.store.SaveLines(ctx, sessionID, lines); err != nil {
			return nil, err
		}
	}
	return s.GetCart(ctx, sessionID)
}

func (s *cartService) ApplyCoupon(ctx context.Context, sessionID, code string) (*model.Cart, bool, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	percent, ok := s.coupons.Resolve(normalized)
	if !ok {
		logger.Debug("Coupon rejected", map[string]interface{}{
			"session_id": sessionID,
			"code":       normalized,
		})
		cart, err := s.GetCart(ctx, sessionID)
		return cart, false, err
	}

	// At most one coupon: applying a valid code replaces whatever was there.
	coupon := &model.Coupon{Code: normalized, DiscountPercent: percent}
	if err := s.store.SaveCoupon(ctx, sessionID, coupon); err != nil {
		return nil, false, err
	}

	logger.Info("Coupon applied", map[string]interface{}{
		"session_id": sessionID,
		"code":       normalized,
		"percent":    percent,
	})
	cart, err := s.GetCart(ctx, sessionID)
	return cart, true, err
}

func (s *cartService) RemoveCoupon(ctx context.Context, sessionID string) (*model.Cart, error) {
	if err := s.store.SaveCoupon(ctx, sessionID, nil); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, sessionID)
}

func (s *cartService) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return err
	}
	logger.Info("Cart cleared", map[string]interface{}{
		"session_id": sessionID,
	})
	return nil
}

func (s *cartService) SetVisibility(sessionID string, visible bool) {
	s.mu.Lock()
	s.visible[sessionID] = visible
	s.mu.Unlock()
}
