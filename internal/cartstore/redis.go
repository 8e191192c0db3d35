package cartstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arhambuilds/storefront-backend/internal/app/model"
	"github.com/arhambuilds/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	linesKeyPrefix  = "cart:lines:"
	couponKeyPrefix = "cart:coupon:"
	latchKeyPrefix  = "checkout:inflight:"
)

// RedisStorage persists carts in Redis. Cart keys have no expiry: a cart and
// its coupon survive until checkout completion or an explicit clear. Latch
// keys carry a TTL as a backstop behind the reaper.
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (s *RedisStorage) LoadLines(ctx context.Context, sessionID string) ([]model.CartLine, error) {
	data, err := s.client.Get(ctx, linesKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
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

func (s *RedisStorage) SaveLines(ctx context.Context, sessionID string, lines []model.CartLine) error {
	data, err := encodeLines(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart lines: %w", err)
	}
	if err := s.client.Set(ctx, linesKeyPrefix+sessionID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save cart lines: %w", err)
	}
	return nil
}

func (s *RedisStorage) LoadCoupon(ctx context.Context, sessionID string) (*model.Coupon, error) {
	data, err := s.client.Get(ctx, couponKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon: %w", err)
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

func (s *RedisStorage) SaveCoupon(ctx context.Context, sessionID string, coupon *model.Coupon) error {
	key := couponKeyPrefix + sessionID
	if coupon == nil {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to remove coupon: %w", err)
		}
		return nil
	}

	data, err := encodeCoupon(coupon)
	if err != nil {
		return fmt.Errorf("failed to encode coupon: %w", err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save coupon: %w", err)
	}
	return nil
}

func (s *RedisStorage) Clear(ctx context.Context, sessionID string) error {
	err := s.client.Del(ctx, linesKeyPrefix+sessionID, couponKeyPrefix+sessionID).Err()
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *RedisStorage) AcquireLatch(ctx context.Context, sessionID string, latch CheckoutLatch, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(latch)
	if err != nil {
		return false, fmt.Errorf("failed to encode checkout latch: %w", err)
	}

	acquired, err := s.client.SetNX(ctx, latchKeyPrefix+sessionID, data, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire checkout latch: %w", err)
	}
	return acquired, nil
}

func (s *RedisStorage) Latch(ctx context.Context, sessionID string) (*CheckoutLatch, error) {
	data, err := s.client.Get(ctx, latchKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkout latch: %w", err)
	}

	var latch CheckoutLatch
	if err := json.Unmarshal(data, &latch); err != nil {
		return nil, fmt.Errorf("failed to decode checkout latch: %w", err)
	}
	return &latch, nil
}

func (s *RedisStorage) ReleaseLatch(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, latchKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to release checkout latch: %w", err)
	}
	return nil
}

func (s *RedisStorage) StaleLatches(ctx context.Context, olderThan time.Duration) (map[string]CheckoutLatch, error) {
	cutoff := time.Now().Add(-olderThan)
	stale := make(map[string]CheckoutLatch)

	iter := s.client.Scan(ctx, 0, latchKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := s.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read checkout latch %s: %w", key, err)
		}

		var latch CheckoutLatch
		if err := json.Unmarshal(data, &latch); err != nil {
			logger.Warn("Discarding unreadable checkout latch", map[string]interface{}{
				"key": key,
			})
			continue
		}
		if latch.StartedAt.Before(cutoff) {
			stale[key[len(latchKeyPrefix):]] = latch
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan checkout latches: %w", err)
	}
	return stale, nil
}
