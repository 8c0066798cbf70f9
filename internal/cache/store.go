package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/career-guidance/internal/metrics"
	"github.com/jonathan/career-guidance/internal/types"
)

const BackendPostgres = "postgres"

// RecommendationStore is the subset of the database StoreCache reads
type RecommendationStore interface {
	LatestRecommendation(ctx context.Context, userID uuid.UUID, since time.Time) (*types.Recommendation, error)
	DeleteRecommendations(ctx context.Context, userID uuid.UUID) error
}

// StoreCache serves the newest stored recommendation younger than the TTL.
// The guidance service persists every computed recommendation, so Set has
// nothing left to do.
type StoreCache struct {
	store RecommendationStore
	ttl   time.Duration
	now   func() time.Time
}

// NewStoreCache creates a StoreCache over store
func NewStoreCache(store RecommendationStore, ttl time.Duration) *StoreCache {
	return &StoreCache{store: store, ttl: ttl, now: time.Now}
}

func (c *StoreCache) Backend() string { return BackendPostgres }

func (c *StoreCache) Get(ctx context.Context, userID uuid.UUID) (*types.Recommendation, bool, error) {
	rec, err := c.store.LatestRecommendation(ctx, userID, c.now().Add(-c.ttl))
	if err != nil {
		metrics.RecordCacheError(BackendPostgres, "get")
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.RecordCacheLookup(BackendPostgres, rec != nil)
	return rec, rec != nil, nil
}

func (c *StoreCache) Set(context.Context, uuid.UUID, *types.Recommendation) error {
	return nil
}

// Invalidate deletes the user's stored recommendations so the next request
// recomputes against the current profile.
func (c *StoreCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := c.store.DeleteRecommendations(ctx, userID); err != nil {
		metrics.RecordCacheError(BackendPostgres, "invalidate")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
