// Package guidance serves recommendations, skill gap reports and counselor
// replies for stored users. It combines the user store, the career catalog,
// the recommendation cache and the matching engine.
package guidance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/career-guidance/internal/cache"
	"github.com/jonathan/career-guidance/internal/counselor"
	"github.com/jonathan/career-guidance/internal/db"
	"github.com/jonathan/career-guidance/internal/logging"
	"github.com/jonathan/career-guidance/internal/matching"
	"github.com/jonathan/career-guidance/internal/metrics"
	"github.com/jonathan/career-guidance/internal/types"
)

// ErrUserNotFound is returned when the user ID does not exist
var ErrUserNotFound = errors.New("user not found")

const (
	// computeTimeout bounds a shared computation, which outlives the
	// request that started it
	computeTimeout = 30 * time.Second

	gateStripes = 32
)

// Store is the persistence the service needs
type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, education string, skills, interests []string) (*db.User, error)
	ListCareers(ctx context.Context, filter types.CareerFilter) ([]types.Career, error)
	SaveRecommendation(ctx context.Context, rec *types.Recommendation) error
}

// Service is safe for concurrent use
type Service struct {
	store  Store
	cache  cache.RecommendationCache
	engine *matching.Engine
	now    func() time.Time

	// one computation per user and profile generation at a time
	inflight singleflight.Group
	gates    [gateStripes]profileGate
}

// profileGate orders profile writes against storing computed results.
// gens counts profile updates per user; a result computed under an older
// generation is returned to its callers but never stored.
type profileGate struct {
	mu   sync.Mutex
	gens map[uuid.UUID]uint64
}

func (s *Service) gate(userID uuid.UUID) *profileGate {
	return &s.gates[int(userID[15])%gateStripes]
}

func (s *Service) generation(userID uuid.UUID) uint64 {
	g := s.gate(userID)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[userID]
}

// NewService creates a Service. A nil engine uses matching.NewEngine().
func NewService(store Store, c cache.RecommendationCache, engine *matching.Engine) *Service {
	if engine == nil {
		engine = matching.NewEngine()
	}
	svc := &Service{store: store, cache: c, engine: engine, now: time.Now}
	for i := range svc.gates {
		svc.gates[i].gens = make(map[uuid.UUID]uint64)
	}
	return svc
}

// Recommendations returns the user's cached recommendation, or computes,
// stores and caches a new one. Cache failures degrade to recomputation.
func (s *Service) Recommendations(ctx context.Context, userID uuid.UUID) (*types.Recommendation, error) {
	if rec, ok := s.cached(ctx, userID); ok {
		return rec, nil
	}
	return s.computeShared(ctx, userID)
}

// Refresh drops any cached recommendation and computes a new one
func (s *Service) Refresh(ctx context.Context, userID uuid.UUID) (*types.Recommendation, error) {
	s.invalidate(ctx, userID)
	return s.computeShared(ctx, userID)
}

// computeShared joins or starts the computation for the user's current
// profile generation. The computation does not inherit the caller's
// cancellation, since other callers may be waiting on it; a cancelled caller
// stops waiting and gets ctx.Err().
func (s *Service) computeShared(ctx context.Context, userID uuid.UUID) (*types.Recommendation, error) {
	gen := s.generation(userID)
	key := userID.String() + ":" + strconv.FormatUint(gen, 10)

	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()
		return s.compute(cctx, userID, gen)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*types.Recommendation), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) cached(ctx context.Context, userID uuid.UUID) (*types.Recommendation, bool) {
	rec, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("backend", s.cache.Backend()).Msg("recommendation cache read failed")
		return nil, false
	}
	return rec, ok
}

func (s *Service) invalidate(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("backend", s.cache.Backend()).Msg("recommendation cache invalidation failed")
	}
}

// load fetches the user and the full catalog concurrently
func (s *Service) load(ctx context.Context, userID uuid.UUID) (*db.User, []types.Career, error) {
	var (
		user    *db.User
		catalog []types.Career
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.store.GetUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		c, err := s.store.ListCareers(gctx, types.CareerFilter{})
		if err != nil {
			return fmt.Errorf("failed to load careers: %w", err)
		}
		catalog = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return user, catalog, nil
}

func (s *Service) compute(ctx context.Context, userID uuid.UUID, gen uint64) (*types.Recommendation, error) {
	user, catalog, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rec, err := s.engine.Recommend(user.ToTypes().Profile(), catalog)
	metrics.RecordEngine("recommend", time.Since(start))
	if err != nil {
		return nil, err
	}
	metrics.RecommendationsComputed.Inc()

	rec.UserID = userID
	if !s.keep(ctx, userID, gen, rec) {
		logging.Ctx(ctx).Info().Msg("profile changed during computation; result not stored")
		rec.CreatedAt = s.now().UTC()
		return rec, nil
	}

	logging.Ctx(ctx).Info().
		Int("careers", len(catalog)).
		Int("missing_skills", len(rec.MissingSkills)).
		Msg("recommendation computed")
	return rec, nil
}

// keep persists and caches rec unless the user's profile changed since gen.
// It reports whether rec was kept.
func (s *Service) keep(ctx context.Context, userID uuid.UUID, gen uint64, rec *types.Recommendation) bool {
	g := s.gate(userID)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gens[userID] != gen {
		return false
	}

	if err := s.store.SaveRecommendation(ctx, rec); err != nil {
		// the result is still valid for this request
		logging.Ctx(ctx).Error().Err(err).Msg("failed to persist recommendation")
		rec.CreatedAt = s.now().UTC()
	}
	if err := s.cache.Set(ctx, userID, rec); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("backend", s.cache.Backend()).Msg("recommendation cache write failed")
	}
	return true
}

// SkillGap compares the user's skills with the named career. The name must
// match a catalog entry exactly.
func (s *Service) SkillGap(ctx context.Context, userID uuid.UUID, careerName string) (*types.SkillGapReport, error) {
	user, catalog, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report, err := s.engine.SkillGap(user.ToTypes().Profile(), catalog, careerName)
	metrics.RecordEngine("skill_gap", time.Since(start))
	if err != nil {
		return nil, err
	}
	metrics.SkillGapsComputed.Inc()
	return report, nil
}

// Chat answers a counselor question for the user. When a recommendation is
// already cached its careers are mentioned; Chat never computes one.
func (s *Service) Chat(ctx context.Context, userID uuid.UUID, req *types.ChatRequest) (*types.ChatResponse, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	p := counselor.Profile{
		Education: user.Education,
		Skills:    user.Skills,
		Interests: user.Interests,
	}
	if rec, ok := s.cached(ctx, userID); ok {
		for _, c := range rec.SuggestedCareers {
			p.SuggestedCareers = append(p.SuggestedCareers, c.CareerName)
		}
	}

	return &types.ChatResponse{
		Reply:     counselor.Reply(p, req.Message),
		Timestamp: s.now().UTC(),
	}, nil
}

// UpdateProfile stores the new profile and drops the user's cached
// recommendation, which was computed from the old one.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*types.User, error) {
	g := s.gate(userID)
	g.mu.Lock()
	defer g.mu.Unlock()

	user, err := s.store.UpdateProfile(ctx, userID, req.Name, req.Education, req.Skills, req.Interests)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	g.gens[userID]++
	s.invalidate(ctx, userID)
	return user.ToTypes(), nil
}
