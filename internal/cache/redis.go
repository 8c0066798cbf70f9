package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jonathan/career-guidance/internal/logging"
	"github.com/jonathan/career-guidance/internal/metrics"
	"github.com/jonathan/career-guidance/internal/types"
)

const (
	BackendRedis = "redis"

	breakerName = "redis-recommendation-cache"
)

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// BreakerSettings tunes the circuit breaker around Redis calls
type BreakerSettings struct {
	// ConsecutiveFailures opens the circuit
	ConsecutiveFailures uint32
	// Timeout is how long the circuit stays open before probing again
	Timeout time.Duration
}

// DefaultBreakerSettings opens after 5 straight failures and probes after 30s
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 5, Timeout: 30 * time.Second}
}

// RedisCache stores recommendations as JSON under Key(userID) with a TTL.
// Every call goes through a circuit breaker; while it is open calls fail fast
// with ErrUnavailable.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
	cb     *gobreaker.CircuitBreaker[[]byte]
}

// NewRedisCache wraps client. Zero settings fall back to DefaultBreakerSettings.
func NewRedisCache(client redis.Cmdable, ttl time.Duration, settings BreakerSettings) *RedisCache {
	def := DefaultBreakerSettings()
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = def.ConsecutiveFailures
	}
	if settings.Timeout == 0 {
		settings.Timeout = def.Timeout
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &RedisCache{client: client, ttl: ttl, cb: cb}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func (c *RedisCache) Backend() string { return BackendRedis }

// State reports the circuit breaker state
func (c *RedisCache) State() gobreaker.State {
	return c.cb.State()
}

func (c *RedisCache) execute(operation string, fn func() ([]byte, error)) ([]byte, error) {
	b, err := c.cb.Execute(fn)
	if err != nil {
		metrics.RecordCacheError(BackendRedis, operation)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("%w: redis %s: %v", ErrUnavailable, operation, err)
	}
	return b, nil
}

// Get returns a hit when the key exists. A missing key is a miss, not a failure.
func (c *RedisCache) Get(ctx context.Context, userID uuid.UUID) (*types.Recommendation, bool, error) {
	b, err := c.execute("get", func() ([]byte, error) {
		b, err := c.client.Get(ctx, Key(userID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		return nil, false, err
	}
	if b == nil {
		metrics.RecordCacheLookup(BackendRedis, false)
		return nil, false, nil
	}

	var rec types.Recommendation
	if err := json.Unmarshal(b, &rec); err != nil {
		// a corrupt entry is dropped and recomputed
		metrics.RecordCacheError(BackendRedis, "decode")
		_ = c.Invalidate(ctx, userID)
		return nil, false, nil
	}
	metrics.RecordCacheLookup(BackendRedis, true)
	return &rec, true, nil
}

func (c *RedisCache) Set(ctx context.Context, userID uuid.UUID, rec *types.Recommendation) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation: %w", err)
	}
	_, err = c.execute("set", func() ([]byte, error) {
		return nil, c.client.Set(ctx, Key(userID), payload, c.ttl).Err()
	})
	return err
}

func (c *RedisCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	_, err := c.execute("invalidate", func() ([]byte, error) {
		return nil, c.client.Del(ctx, Key(userID)).Err()
	})
	return err
}
