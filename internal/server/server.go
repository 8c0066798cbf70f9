// Package server provides the HTTP REST API for the career guidance service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/career-guidance/internal/cache"
	"github.com/jonathan/career-guidance/internal/config"
	"github.com/jonathan/career-guidance/internal/db"
	"github.com/jonathan/career-guidance/internal/guidance"
	"github.com/jonathan/career-guidance/internal/logging"
	"github.com/jonathan/career-guidance/internal/matching"
	"github.com/jonathan/career-guidance/internal/metrics"
	"github.com/jonathan/career-guidance/internal/server/middleware"
	"github.com/jonathan/career-guidance/internal/server/ratelimit"
	"github.com/jonathan/career-guidance/internal/types"
)

// Store is everything the API reads and writes. *db.DB implements it.
type Store interface {
	DBClient
	guidance.Store
	GetCareer(ctx context.Context, id uuid.UUID) (*types.Career, error)
	GetCareerByName(ctx context.Context, name string) (*types.Career, error)
	ListCategories(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// Server is the HTTP API server
type Server struct {
	httpServer  *http.Server
	cfg         *config.Config
	store       Store
	cache       cache.RecommendationCache
	guidance    *guidance.Service
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	validator   *validator.Validate
	closers     []func()
}

// New connects to PostgreSQL and the configured cache backend and builds the
// server around them.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	if err := cfg.ValidateServe(); err != nil {
		return nil, err
	}

	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rc, closeCache, err := newCache(ctx, cfg, database)
	if err != nil {
		database.Close()
		return nil, err
	}

	s, err := NewWithStore(cfg, database, rc)
	if err != nil {
		closeCache()
		database.Close()
		return nil, err
	}
	s.closers = append(s.closers, closeCache, database.Close)
	return s, nil
}

// newCache builds the recommendation cache selected by cache.backend
func newCache(ctx context.Context, cfg *config.Config, database *db.DB) (cache.RecommendationCache, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		client, err := cache.NewRedisClient(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		closeClient := func() { _ = client.Close() }
		return cache.NewRedisCache(client, cfg.Cache.TTL, cache.DefaultBreakerSettings()), closeClient, nil
	case config.CacheBackendPostgres:
		return cache.NewStoreCache(database, cfg.Cache.TTL), func() {}, nil
	default:
		mc := cache.NewMemoryCache(cfg.Cache.TTL)
		return mc, mc.Close, nil
	}
}

// newEngine builds the matching engine with the configured skill matcher
func newEngine(cfg *config.Config) (*matching.Engine, error) {
	m, err := matching.MatcherByName(cfg.Matching.Matcher)
	if err != nil {
		return nil, err
	}
	return matching.NewEngine(matching.WithMatcher(m)), nil
}

// NewWithStore builds a server over an existing store and cache.
func NewWithStore(cfg *config.Config, store Store, rc cache.RecommendationCache) (*Server, error) {
	passwordConfig, err := cfg.PasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load password config: %w", err)
	}
	jwtConfig, err := cfg.JWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load JWT config: %w", err)
	}
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	userService := NewUserService(store, passwordConfig)
	jwtService := NewJWTService(jwtConfig)
	limits, err := ratelimit.FromSettings(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate limit config: %w", err)
	}
	rateLimiter := ratelimit.NewLimiter(limits)

	s := &Server{
		cfg:         cfg,
		store:       store,
		cache:       rc,
		guidance:    guidance.NewService(store, rc, engine),
		rateLimiter: rateLimiter,
		jwtService:  jwtService,
		userService: userService,
		authHandler: NewAuthHandler(userService, jwtService),
		validator:   validator.New(),
	}
	s.closers = append(s.closers, rateLimiter.Stop)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	protected := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	auth := func(h http.HandlerFunc) http.Handler { return protected(h) }

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Accounts
	mux.HandleFunc("POST /v1/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", s.authHandler.Login)
	mux.Handle("PUT /v1/users/me/password", auth(s.handleUpdatePassword))
	mux.Handle("GET /v1/users/me", auth(s.handleGetMe))
	mux.Handle("PUT /v1/users/me/profile", auth(s.handleUpdateProfile))

	// Catalog (public)
	mux.HandleFunc("GET /v1/careers", s.handleListCareers)
	mux.HandleFunc("GET /v1/careers/categories", s.handleListCategories)
	mux.HandleFunc("GET /v1/careers/by-name", s.handleGetCareerByName)
	mux.HandleFunc("GET /v1/careers/{id}", s.handleGetCareer)

	// Guidance
	mux.Handle("GET /v1/ai/recommendations", auth(s.handleRecommendations))
	mux.Handle("POST /v1/ai/skill-gap", auth(s.handleSkillGap))
	mux.Handle("POST /v1/ai/chat", auth(s.handleChat))

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Handler exposes the full middleware chain, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests
// within the configured shutdown timeout.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", s.httpServer.Addr).
			Str("cache_backend", s.cache.Backend()).
			Str("skill_matcher", s.cfg.Matching.Matcher).
			Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			s.Close()
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.Close()
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	logging.Info().Msg("server stopped")
	return nil
}

// Close stops the rate limiter and releases the cache and database connections.
// It is safe to call more than once.
func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// withCORS adds the CORS headers for the configured origins
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool, len(s.cfg.Server.CORSOrigins))
	for _, o := range s.cfg.Server.CORSOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit meters requests per route tier. Requests with a valid bearer
// token are metered per user on user-scoped tiers; an invalid token is left
// for the auth middleware to reject and is metered by IP.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	tokens := s.jwtService.AsTokenValidator()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := ratelimit.Request{
			Method:   r.Method,
			Path:     r.URL.Path,
			ClientIP: s.extractClientID(r),
		}
		if userID, err := middleware.Authenticate(tokens, r); err == nil {
			req.UserID = userID.String()
		}

		d := s.rateLimiter.Allow(req)
		s.setRateLimitHeaders(w, d)
		if !d.Allowed {
			metrics.RateLimitRejections.WithLabelValues(d.Tier).Inc()
			s.rateLimitResponse(w, r, req, d)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// withLogging assigns a request ID, logs each request and records metrics
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}
		w.Header().Set(RequestIDHeader, requestID)
		r = r.WithContext(logging.ContextWithRequestID(r.Context(), requestID))

		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordAPIRequest(r.Method, route, rec.status, duration)

		event := logging.Ctx(r.Context()).Info()
		if rec.status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", duration).
			Str("remote_addr", r.RemoteAddr).
			Msg("request completed")
	})
}

// handleHealth reports liveness plus database reachability
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	database := "ok"
	if err := s.store.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("health check: database unreachable")
		status, code, database = "degraded", http.StatusServiceUnavailable, "unreachable"
	}

	s.jsonResponse(w, code, map[string]string{
		"status":   status,
		"database": database,
		"cache":    s.cache.Backend(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// domainError logs unexpected failures and writes the mapped status
func (s *Server) domainError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	s.errorResponse(w, status, publicMessage(err))
}

// decodeAndValidate reads a JSON body into dst and runs its validator tags.
// It writes the 400 response itself and reports whether the caller may go on.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validator.Struct(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return false
	}
	return true
}

// currentUser returns the authenticated user ID set by the auth middleware
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets the X-RateLimit headers on metered requests
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	if !d.Limited() {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	if !d.ResetAt.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	}
}

// rateLimitResponse writes the 429 body
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, req ratelimit.Request, d ratelimit.Decision) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"tier":      d.Tier,
		"limit":     d.Limit,
		"remaining": d.Remaining,
	}
	if !d.ResetAt.IsZero() {
		response["reset_at"] = d.ResetAt.Format(time.RFC3339)
	}

	if d.RetryAfter > 0 {
		seconds := int(math.Ceil(d.RetryAfter.Seconds()))
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	event := logging.Ctx(r.Context()).Warn().
		Str("client", req.ClientIP).
		Str("tier", d.Tier).
		Str("path", r.URL.Path)
	if req.UserID != "" {
		event = event.Str("user_id", req.UserID)
	}
	event.Msg("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("failed to encode JSON response")
	}
}
