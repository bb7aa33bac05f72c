// Package config loads the security policy file that tunes authentication
// without a rebuild.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SecurityConfig mirrors config/security.yaml.
type SecurityConfig struct {
	Security struct {
		Auth            AuthPolicy `yaml:"auth"`
		PublicEndpoints []string   `yaml:"public_endpoints"`
		JWT             JWTPolicy  `yaml:"jwt"`
	} `yaml:"security"`
}

// AuthPolicy names the credential provider and its password policy.
type AuthPolicy struct {
	Provider string `yaml:"provider"`
	Basic    struct {
		MinPasswordLength int      `yaml:"min_password_length"`
		WeakPasswords     []string `yaml:"weak_passwords"`
	} `yaml:"basic"`
}

// JWTPolicy points at the env var holding the signing secret.
type JWTPolicy struct {
	SecretEnv   string `yaml:"secret_env"`
	ExpiryHours int    `yaml:"expiry_hours"`
}

// LoadSecurityConfig reads and validates the policy file. The path comes
// from SECURITY_CONFIG_PATH or the built-in default, never from request
// input.
func LoadSecurityConfig(path string) (*SecurityConfig, error) {
	// #nosec G304 -- path is provided by trusted source (CLI arg or config), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config SecurityConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

func (c *SecurityConfig) validate() error {
	auth := c.Security.Auth
	if auth.Provider == "" {
		return fmt.Errorf("auth provider is required")
	}
	if auth.Provider == "basic" {
		if auth.Basic.MinPasswordLength <= 0 {
			return fmt.Errorf("min_password_length must be positive")
		}
		if auth.Basic.MinPasswordLength < 8 {
			return fmt.Errorf("min_password_length must be at least 8")
		}
	}
	if c.Security.JWT.SecretEnv == "" {
		return fmt.Errorf("jwt secret_env is required")
	}
	if c.Security.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("jwt expiry_hours must be positive")
	}
	return nil
}

// GetMinPasswordLength returns the minimum password length requirement.
func (c *SecurityConfig) GetMinPasswordLength() int {
	return c.Security.Auth.Basic.MinPasswordLength
}

// GetWeakPasswords returns the configured weak password list.
func (c *SecurityConfig) GetWeakPasswords() []string {
	return c.Security.Auth.Basic.WeakPasswords
}

// GetPublicEndpoints returns the paths served without authentication.
func (c *SecurityConfig) GetPublicEndpoints() []string {
	return c.Security.PublicEndpoints
}
