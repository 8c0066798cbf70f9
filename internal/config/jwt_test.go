package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig_DefaultExpiration(t *testing.T) {
	c := Defaults()
	c.JWT.Secret = "test-secret-key"

	cfg, err := c.JWTConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "test-secret-key", cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours, "should use default expiration of 24 hours")
}

func TestNewJWTConfig_CustomExpiration(t *testing.T) {
	tests := []struct {
		name    string
		hours   int
		wantErr bool
	}{
		{"12 hours", 12, false},
		{"48 hours", 48, false},
		{"minimum 1 hour", 1, false},
		{"zero rejected", 0, true},
		{"negative rejected", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewJWTConfig(JWTSettings{Secret: "s", ExpirationHours: tt.hours})
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "at least 1 hour")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hours, cfg.ExpirationHours)
		})
	}
}

func TestNewJWTConfig_MissingSecret(t *testing.T) {
	cfg, err := NewJWTConfig(JWTSettings{ExpirationHours: 24})
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewJWTConfig_FromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "6")
	t.Setenv(ConfigPathEnvVar, "")
	t.Chdir(t.TempDir())

	c, err := Load("")
	require.NoError(t, err)

	cfg, err := c.JWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Secret)
	assert.Equal(t, 6, cfg.ExpirationHours)
}
