package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonathan/career-guidance/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[map[string]string](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["cache"])
}

func TestHealthEndpoint_DatabaseDown(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.store.pingErr = errors.New("connection refused")

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", decodeBody[map[string]string](t, w)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(t, http.MethodGet, "/health", "", nil)

	w := ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "career_api_requests_total")
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestCORSMiddleware(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORSMiddleware_OPTIONS(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodOptions, "/v1/ai/recommendations", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSMiddleware_ConfiguredOrigins(t *testing.T) {
	cfg := testConfig()
	cfg.Server.CORSOrigins = []string{"https://app.example.com"}
	ts := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.DefaultLimit = 2
	cfg.RateLimit.DefaultWindow = time.Hour
	ts := newTestServer(t, cfg, testCatalog()...)

	for i := 0; i < 2; i++ {
		w := ts.do(t, http.MethodGet, "/v1/careers", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := ts.do(t, http.MethodGet, "/v1/careers", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limit_exceeded", decodeBody[map[string]any](t, w)["error"])

	// health is never limited
	w = ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_Blacklist(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Blacklist = []string{"192.0.2.1"}
	ts := newTestServer(t, cfg)

	// httptest requests come from 192.0.2.1
	w := ts.do(t, http.MethodGet, "/v1/careers", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimit_RecommendationsPerUser(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	ts := newTestServer(t, cfg, testCatalog()...)

	// both accounts share the httptest client address
	alice, _ := ts.register(t, "alice@example.com")
	bob, _ := ts.register(t, "bob@example.com")

	for i := 0; i < 5; i++ {
		w := ts.do(t, http.MethodGet, "/v1/ai/recommendations", alice, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "20", w.Header().Get("X-RateLimit-Limit"))
	}

	w := ts.do(t, http.MethodGet, "/v1/ai/recommendations", alice, nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, "recommendations", body["tier"])
	assert.Equal(t, "3", w.Header().Get("Retry-After"))

	w = ts.do(t, http.MethodGet, "/v1/ai/recommendations", bob, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// other tiers keep their own budget
	w = ts.do(t, http.MethodPost, "/v1/ai/chat", alice, types.ChatRequest{Message: "What should I learn next?"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "30", w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimit_InvalidTokenMeteredByAddress(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	ts := newTestServer(t, cfg)

	for i := 0; i < 5; i++ {
		w := ts.do(t, http.MethodGet, "/v1/ai/recommendations", "forged-token", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := ts.do(t, http.MethodGet, "/v1/ai/recommendations", "another-forged-token", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/v1/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodDelete, "/v1/careers", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, nil, testCatalog()...)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/v1/users/me"},
		{http.MethodPut, "/v1/users/me/profile"},
		{http.MethodPut, "/v1/users/me/password"},
		{http.MethodGet, "/v1/ai/recommendations"},
		{http.MethodPost, "/v1/ai/skill-gap"},
		{http.MethodPost, "/v1/ai/chat"},
	}
	for _, r := range routes {
		w := ts.do(t, r.method, r.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", r.method, r.path)

		w = ts.do(t, r.method, r.path, "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", r.method, r.path)
	}
}

func TestNewWithStore_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.Secret = ""
	_, err := NewWithStore(cfg, newMemStore(), nil)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Password.BcryptCost = 4
	_, err = NewWithStore(cfg, newMemStore(), nil)
	assert.Error(t, err)
}

func TestNewEngine_Matcher(t *testing.T) {
	cfg := testConfig()
	cfg.Matching.Matcher = "alias"
	e, err := newEngine(cfg)
	require.NoError(t, err)
	gap := e.Gap(profileWith("golang"), careerWith("Go"))
	assert.Equal(t, 100, gap.MatchPercentage)

	cfg.Matching.Matcher = "substring"
	e, err = newEngine(cfg)
	require.NoError(t, err)
	gap = e.Gap(profileWith("golang"), careerWith("Go"))
	assert.Equal(t, 100, gap.MatchPercentage)

	gap = e.Gap(profileWith("k8s"), careerWith("Kubernetes"))
	assert.Equal(t, 0, gap.MatchPercentage)

	cfg.Matching.Matcher = "fuzzy"
	_, err = newEngine(cfg)
	assert.Error(t, err)
}
