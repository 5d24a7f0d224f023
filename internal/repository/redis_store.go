package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kaikyoudou/storefront/internal/domain"
	"github.com/kaikyoudou/storefront/pkg/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// RedisStore persists the cart under cart:<key>. A circuit breaker
// fronts every call so a dead Redis fails fast instead of stalling each
// cart mutation; the cart service then degrades to in-memory.
type RedisStore struct {
	client  *redis.Client
	key     string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewRedisStore(client *redis.Client, cartKey string, logger *zap.Logger) *RedisStore {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "cart-store",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &RedisStore{
		client:  client,
		key:     "cart:" + cartKey,
		breaker: breaker,
		logger:  logger,
	}
}

func (s *RedisStore) Load(ctx context.Context) ([]domain.CartLine, error) {
	data, err := utils.ExecuteWithBreaker(s.breaker, func() (string, error) {
		return s.client.Get(ctx, s.key).Result()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: redis get %s: %v", ErrStoreUnavailable, s.key, err)
	}

	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(data), &lines); err != nil {
		s.logger.Warn("discarding corrupt cart payload",
			zap.String("key", s.key),
			zap.Error(err),
		)
		return nil, nil
	}

	return lines, nil
}

func (s *RedisStore) Save(ctx context.Context, lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}

	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("%w: encoding cart: %v", ErrStoreUnavailable, err)
	}

	_, err = utils.ExecuteWithBreaker(s.breaker, func() (string, error) {
		return s.client.Set(ctx, s.key, data, 0).Result()
	})
	if err != nil {
		return fmt.Errorf("%w: redis set %s: %v", ErrStoreUnavailable, s.key, err)
	}

	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	_, err := utils.ExecuteWithBreaker(s.breaker, func() (int64, error) {
		return s.client.Del(ctx, s.key).Result()
	})
	if err != nil {
		return fmt.Errorf("%w: redis del %s: %v", ErrStoreUnavailable, s.key, err)
	}

	return nil
}
