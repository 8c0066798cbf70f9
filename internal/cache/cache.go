// Package cache keeps computed recommendations so repeated requests within the
// TTL skip the matching engine.
//
// Three backends implement RecommendationCache:
//
//   - MemoryCache: a process-local TTL map
//   - RedisCache: shared across instances, guarded by a circuit breaker
//   - StoreCache: reads the newest stored recommendation from PostgreSQL
package cache

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jonathan/career-guidance/internal/types"
)

// ErrUnavailable wraps backend failures, including an open circuit breaker.
// Callers treat it as a miss.
var ErrUnavailable = errors.New("recommendation cache unavailable")

// RecommendationCache stores one recommendation per user.
type RecommendationCache interface {
	// Get returns the cached recommendation and true on a hit
	Get(ctx context.Context, userID uuid.UUID) (*types.Recommendation, bool, error)
	Set(ctx context.Context, userID uuid.UUID, rec *types.Recommendation) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
	// Backend names the implementation in logs and metrics
	Backend() string
}

// KeyPrefix namespaces recommendation keys as app:{module}:{entity}:{id}
const KeyPrefix = "app:recommend:user:"

// Key returns the cache key for a user's recommendation
func Key(userID uuid.UUID) string {
	return KeyPrefix + userID.String()
}
