// Package config provides layered configuration loading and validation.
//
// Values are resolved in three layers, later layers winning:
//
//  1. Built-in defaults
//  2. An optional YAML file (CONFIG_PATH, or config.yaml in the working directory)
//  3. Environment variables (DATABASE_URL, JWT_SECRET, REDIS_ADDR, ...)
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is not set
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// Cache backends
const (
	CacheBackendMemory   = "memory"
	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"
)

// Skill matchers
const (
	MatcherSubstring = "substring"
	MatcherAlias     = "alias"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Database  DatabaseConfig   `koanf:"database"`
	Redis     RedisConfig      `koanf:"redis"`
	Cache     CacheConfig      `koanf:"cache"`
	JWT       JWTSettings      `koanf:"jwt"`
	Password  PasswordSettings `koanf:"password"`
	Log       LogConfig        `koanf:"log"`
	RateLimit RateLimitConfig  `koanf:"ratelimit"`
	Matching  MatchingConfig   `koanf:"matching"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DatabaseConfig holds the PostgreSQL connection string
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// RedisConfig holds the Redis connection settings
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// CacheConfig selects where computed recommendations are kept and for how long
type CacheConfig struct {
	Backend string        `koanf:"backend"`
	TTL     time.Duration `koanf:"ttl"`
}

// JWTSettings are the raw token settings; see JWTConfig
type JWTSettings struct {
	Secret          string `koanf:"secret"`
	ExpirationHours int    `koanf:"expiration_hours"`
}

// PasswordSettings are the raw hashing settings; see PasswordConfig
type PasswordSettings struct {
	BcryptCost int    `koanf:"bcrypt_cost"`
	Pepper     string `koanf:"pepper"`
}

// LogConfig configures the global logger
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RateLimitConfig configures the default tier and the address lists of the
// rate limiter; the career routes have fixed tiers
type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	DefaultLimit    int           `koanf:"default_limit"`
	DefaultWindow   time.Duration `koanf:"default_window"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	Whitelist       []string      `koanf:"whitelist"`
	Blacklist       []string      `koanf:"blacklist"`
}

// MatchingConfig selects the skill equivalence rule
type MatchingConfig struct {
	Matcher string `koanf:"matcher"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Cache: CacheConfig{
			Backend: CacheBackendMemory,
			TTL:     24 * time.Hour,
		},
		JWT: JWTSettings{
			ExpirationHours: 24,
		},
		Password: PasswordSettings{
			BcryptCost: 12,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
		Matching: MatchingConfig{
			Matcher: MatcherSubstring,
		},
	}
}

// Load resolves the configuration from defaults, the config file and the
// environment. An empty path searches CONFIG_PATH and DefaultConfigPaths; a
// non-empty path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitListFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps environment variable names to config paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"port":                        "server.port",
	"server_read_timeout":         "server.read_timeout",
	"server_write_timeout":        "server.write_timeout",
	"server_shutdown_timeout":     "server.shutdown_timeout",
	"cors_origins":                "server.cors_origins",
	"database_url":                "database.url",
	"redis_addr":                  "redis.addr",
	"redis_password":              "redis.password",
	"redis_db":                    "redis.db",
	"cache_backend":               "cache.backend",
	"cache_ttl":                   "cache.ttl",
	"jwt_secret":                  "jwt.secret",
	"jwt_expiration_hours":        "jwt.expiration_hours",
	"bcrypt_cost":                 "password.bcrypt_cost",
	"password_pepper":             "password.pepper",
	"log_level":                   "log.level",
	"log_format":                  "log.format",
	"log_caller":                  "log.caller",
	"rate_limit_enabled":          "ratelimit.enabled",
	"rate_limit_default_limit":    "ratelimit.default_limit",
	"rate_limit_default_window":   "ratelimit.default_window",
	"rate_limit_cleanup_interval": "ratelimit.cleanup_interval",
	"rate_limit_whitelist":        "ratelimit.whitelist",
	"rate_limit_blacklist":        "ratelimit.blacklist",
	"skill_matcher":               "matching.matcher",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// listPaths are comma-separated when they come from the environment
var listPaths = []string{
	"server.cors_origins",
	"ratelimit.whitelist",
	"ratelimit.blacklist",
}

func splitListFields(k *koanf.Koanf) error {
	for _, path := range listPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := []string{}
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// Validate checks values that are wrong regardless of which command runs.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: server.port out of range: %d", c.Server.Port)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("config error: cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis, CacheBackendPostgres:
	default:
		return fmt.Errorf("config error: unknown cache.backend %q", c.Cache.Backend)
	}
	switch c.Matching.Matcher {
	case MatcherSubstring, MatcherAlias:
	default:
		return fmt.Errorf("config error: unknown matching.matcher %q", c.Matching.Matcher)
	}
	if c.Password.BcryptCost < 10 || c.Password.BcryptCost > 14 {
		return fmt.Errorf("config error: bcrypt cost out of range: %d (must be 10-14)", c.Password.BcryptCost)
	}
	if c.RateLimit.Enabled && (c.RateLimit.DefaultLimit <= 0 || c.RateLimit.DefaultWindow <= 0) {
		return fmt.Errorf("config error: rate limit defaults must be positive")
	}
	return nil
}

// ValidateServe checks the settings the API server cannot run without.
func (c *Config) ValidateServe() error {
	if c.Database.URL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("config error: JWT_SECRET is required")
	}
	if c.Cache.Backend == CacheBackendRedis && c.Redis.Addr == "" {
		return fmt.Errorf("config error: REDIS_ADDR is required for the redis cache backend")
	}
	return nil
}
