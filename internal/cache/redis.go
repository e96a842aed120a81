// Package cache provides a Redis-backed report cache wrapped in a circuit
// breaker. Cache failures must never take the scoring path down with them,
// so an unhealthy Redis trips the breaker and callers fall through to a
// fresh computation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/longevity-score-server/internal/domain"
)

// RedisCache caches full score responses in Redis.
type RedisCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration
	log     *logrus.Logger
}

// NewRedisCache connects to Redis from a URL and verifies the connection.
func NewRedisCache(cfg domain.CacheConfig, logger *logrus.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.PoolTimeout > 0 {
		opts.PoolTimeout = cfg.PoolTimeout
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ReportCache",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &RedisCache{
		client:  client,
		breaker: breaker,
		ttl:     ttl,
		log:     logger,
	}, nil
}

// Get retrieves a cached score response. A missing key is not an error:
// found is false and err is nil. Breaker-open errors are returned so the
// caller can decide how loudly to log them.
func (c *RedisCache) Get(ctx context.Context, key string) (*domain.ScoreResponse, bool, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return payload, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return nil, false, fmt.Errorf("report cache unavailable (circuit breaker open)")
		}
		return nil, false, fmt.Errorf("cache get failed: %w", err)
	}
	if result == nil {
		return nil, false, nil
	}

	var resp domain.ScoreResponse
	if err := json.Unmarshal(result.([]byte), &resp); err != nil {
		// Poisoned entry. Drop it so the next run recomputes cleanly.
		c.client.Del(ctx, key)
		return nil, false, fmt.Errorf("failed to decode cached response: %w", err)
	}
	return &resp, true, nil
}

// Set stores a score response under the given key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, resp *domain.ScoreResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, key, payload, c.ttl).Err()
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return fmt.Errorf("report cache unavailable (circuit breaker open)")
		}
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// Delete removes a cached entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.Del(ctx, key).Err()
	})
	return err
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
