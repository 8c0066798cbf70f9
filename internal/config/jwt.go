package config

import (
	"fmt"
)

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig builds a validated JWT configuration from loaded settings.
func NewJWTConfig(s JWTSettings) (*JWTConfig, error) {
	config := &JWTConfig{
		Secret:          s.Secret,
		ExpirationHours: s.ExpirationHours,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// JWTConfig returns the validated token configuration.
func (c *Config) JWTConfig() (*JWTConfig, error) {
	return NewJWTConfig(c.JWT)
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
