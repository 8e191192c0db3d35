package cartstore

import (
	"context"
	"sync"
	"time"

	"github.com/arhambuilds/storefront-backend/internal/app/model"
	"github.com/arhambuilds/storefront-backend/pkg/logger"
)

// MemoryStorage is the in-memory Storage used by tests. It round-trips
// snapshots through the same codec as the Redis implementation so format
// bugs surface in tests too.
type MemoryStorage struct {
	mu      sync.RWMutex
	lines   map[string][]byte
	coupons map[string][]byte
	latches map[string]CheckoutLatch
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		lines:   make(map[string][]byte),
		coupons: make(map[string][]byte),
		latches: make(map[string]CheckoutLatch),
	}
}

func (s *MemoryStorage) LoadLines(_ context.Context, sessionID string) ([]model.CartLine, error) {
	s.mu.RLock()
	data, ok := s.lines[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	lines, ok := decodeLines(data)
	if !ok {
		logger.Warn("Discarding unreadable cart snapshot", map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, nil
	}
	return lines, nil
}

func (s *MemoryStorage) SaveLines(_ context.Context, sessionID string, lines []model.CartLine) error {
	data, err := encodeLines(lines)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lines[sessionID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) LoadCoupon(_ context.Context, sessionID string) (*model.Coupon, error) {
	s.mu.RLock()
	data, ok := s.coupons[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	coupon, ok := decodeCoupon(data)
	if !ok {
		logger.Warn("Discarding unreadable coupon snapshot", map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, nil
	}
	return coupon, nil
}

func (s *MemoryStorage) SaveCoupon(_ context.Context, sessionID string, coupon *model.Coupon) error {
	if coupon == nil {
		s.mu.Lock()
		delete(s.coupons, sessionID)
		s.mu.Unlock()
		return nil
	}

	data, err := encodeCoupon(coupon)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.coupons[sessionID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.lines, sessionID)
	delete(s.coupons, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) AcquireLatch(_ context.Context, sessionID string, latch CheckoutLatch, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.latches[sessionID]; held {
		return false, nil
	}
	s.latches[sessionID] = latch
	return true, nil
}

func (s *MemoryStorage) Latch(_ context.Context, sessionID string) (*CheckoutLatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latch, ok := s.latches[sessionID]
	if !ok {
		return nil, nil
	}
	return &latch, nil
}

func (s *MemoryStorage) ReleaseLatch(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.latches, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) StaleLatches(_ context.Context, olderThan time.Duration) (map[string]CheckoutLatch, error) {
	cutoff := time.Now().Add(-olderThan)
	stale := make(map[string]CheckoutLatch)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for sessionID, latch := range s.latches {
		if latch.StartedAt.Before(cutoff) {
			stale[sessionID] = latch
		}
	}
	return stale, nil
}

// CorruptLines overwrites the stored snapshot with garbage. Test helper for
// the fail-soft load path.
func (s *MemoryStorage) CorruptLines(sessionID string, data []byte) {
	s.mu.Lock()
	s.lines[sessionID] = data
	s.mu.Unlock()
}
