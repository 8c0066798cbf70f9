package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-guidance/internal/cache"
	"github.com/jonathan/career-guidance/internal/config"
	"github.com/jonathan/career-guidance/internal/db"
	"github.com/jonathan/career-guidance/internal/types"
)

// memStore is an in-memory Store for handler tests
type memStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*db.User
	careers []types.Career
	saved   []*types.Recommendation
	pingErr error
	listErr error
}

func newMemStore(careers ...types.Career) *memStore {
	for i := range careers {
		if careers[i].ID == uuid.Nil {
			careers[i].ID = uuid.New()
		}
	}
	return &memStore{users: make(map[uuid.UUID]*db.User), careers: careers}
}

func (m *memStore) CheckEmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateUser(_ context.Context, name, email, phone string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	id := uuid.New()
	m.users[id] = &db.User{ID: id, Name: name, Email: email, Phone: phone, CreatedAt: now, UpdatedAt: now}
	return id, nil
}

func (m *memStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return errors.New("user not found: " + id.String())
	}
	u.PasswordHash = hash
	u.PasswordSet = true
	return nil
}

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *memStore) UpdateProfile(_ context.Context, id uuid.UUID, name, education string, skills, interests []string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	if name != "" {
		u.Name = name
	}
	u.Education = education
	u.Skills = skills
	u.Interests = interests
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (m *memStore) ListCareers(_ context.Context, filter types.CareerFilter) ([]types.Career, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []types.Career
	for _, c := range m.careers {
		if filter.Category != "" && !strings.EqualFold(c.Category, filter.Category) {
			continue
		}
		if filter.Search != "" {
			q := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(c.Name), q) && !strings.Contains(strings.ToLower(c.Description), q) {
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memStore) SaveRecommendation(_ context.Context, rec *types.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now()
	m.saved = append(m.saved, rec)
	return nil
}

func (m *memStore) GetCareer(_ context.Context, id uuid.UUID) (*types.Career, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.careers {
		if m.careers[i].ID == id {
			c := m.careers[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetCareerByName(_ context.Context, name string) (*types.Career, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.careers {
		if m.careers[i].Name == name {
			c := m.careers[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListCategories(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, c := range m.careers {
		if !seen[c.Category] {
			seen[c.Category] = true
			out = append(out, c.Category)
		}
	}
	return out, nil
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func testCatalog() []types.Career {
	return []types.Career{
		{
			Name:           "Frontend Developer",
			Description:    "Builds user interfaces for the web",
			Category:       "Technology",
			RequiredSkills: []string{"JavaScript", "React", "CSS"},
			Resources: []types.LearningResource{
				{Title: "React Docs", URL: "https://react.dev", Type: types.ResourceTypeDocumentation},
			},
		},
		{
			Name:           "Data Scientist",
			Description:    "Turns data into decisions",
			Category:       "Data",
			RequiredSkills: []string{"Python", "Statistics", "SQL"},
		},
		{
			Name:           "UX Designer",
			Description:    "Designs user experiences",
			Category:       "Design",
			RequiredSkills: []string{"Figma", "User Research"},
		},
	}
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.JWT.Secret = testJWTSecret
	cfg.Password.BcryptCost = 10
	cfg.RateLimit.Enabled = false
	return cfg
}

type testServer struct {
	*Server
	store *memStore
	cache *cache.MemoryCache
}

func newTestServer(t *testing.T, cfg *config.Config, careers ...types.Career) *testServer {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	store := newMemStore(careers...)
	mc := cache.NewMemoryCache(cfg.Cache.TTL)
	s, err := NewWithStore(cfg, store, mc)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
		mc.Close()
	})
	return &testServer{Server: s, store: store, cache: mc}
}

// do sends a request through the full middleware chain
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

// register creates an account and returns its token and user
func (ts *testServer) register(t *testing.T, email string) (string, *types.User) {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/v1/auth/register", "", types.CreateUserRequest{
		Name:     "Test User",
		Email:    email,
		Password: "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func profileWith(skills ...string) types.UserProfile {
	return types.UserProfile{Skills: skills}
}

func careerWith(skills ...string) types.Career {
	return types.Career{Name: "Test Career", RequiredSkills: skills}
}
