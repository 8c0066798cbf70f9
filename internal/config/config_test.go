package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no CONFIG_PATH so that
// stray config files never leak into assertions.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, "")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 24, cfg.JWT.ExpirationHours)
	assert.Equal(t, 12, cfg.Password.BcryptCost)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, MatcherSubstring, cfg.Matching.Matcher)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "custom.yaml", `
server:
  port: 9090
cache:
  backend: redis
  ttl: 1h
redis:
  addr: cache:6379
matching:
  matcher: alias
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, MatcherAlias, cfg.Matching.Matcher)
	assert.Equal(t, 12, cfg.Password.BcryptCost, "unset keys keep their defaults")
}

func TestLoad_DiscoversConfigFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "config.yaml", "log:\n  level: debug\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "elsewhere.yml", "log:\n  format: console\n")
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "config.yaml", "server:\n  port: 9090\ncache:\n  ttl: 2h\n")

	t.Setenv("PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/careers")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("BCRYPT_COST", "11")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2,")
	t.Setenv("SKILL_MATCHER", "alias")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres://u:p@db:5432/careers", cfg.Database.URL)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 11, cfg.Password.BcryptCost)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.RateLimit.Whitelist)
	assert.Equal(t, MatcherAlias, cfg.Matching.Matcher)
}

func TestLoad_IgnoresUnmappedEnv(t *testing.T) {
	isolate(t)
	t.Setenv("SERVER_PORT_TYPO", "1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "config.yaml", "server: [unclosed\n")

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestLoad_ValidationFailure(t *testing.T) {
	isolate(t)
	t.Setenv("CACHE_BACKEND", "memcached")

	cfg, err := Load("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "unknown cache.backend")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, "cache.ttl"},
		{"unknown matcher", func(c *Config) { c.Matching.Matcher = "fuzzy" }, "matching.matcher"},
		{"bcrypt too low", func(c *Config) { c.Password.BcryptCost = 4 }, "bcrypt cost"},
		{"rate limit zero", func(c *Config) { c.RateLimit.DefaultLimit = 0 }, "rate limit"},
		{"rate limit disabled", func(c *Config) {
			c.RateLimit.Enabled = false
			c.RateLimit.DefaultLimit = 0
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateServe(t *testing.T) {
	c := Defaults()
	assert.ErrorContains(t, c.ValidateServe(), "DATABASE_URL")

	c.Database.URL = "postgres://localhost/careers"
	assert.ErrorContains(t, c.ValidateServe(), "JWT_SECRET")

	c.JWT.Secret = "secret"
	assert.NoError(t, c.ValidateServe())

	c.Cache.Backend = CacheBackendRedis
	c.Redis.Addr = ""
	assert.ErrorContains(t, c.ValidateServe(), "REDIS_ADDR")
}
