// Package auth holds the provider-agnostic authentication contract. The
// HTTP layer implements AuthProvider with whatever accounts the
// deployment configured; this package only routes calls through it.
package auth

import (
	"context"
	"strings"
)

// Credentials is a username and password pair as submitted by a caller.
type Credentials struct {
	Username string
	Password string
}

// CredentialRequirements is the password policy a provider enforces,
// surfaced so operators can see it in the health report.
type CredentialRequirements struct {
	MinPasswordLength int
	WeakPasswords     []string
}

// AuthProvider authenticates callers and maps them to roles. The token
// handler needs both halves: ValidateCredentials on login and
// IdentifyUser to decide which role goes into the issued token.
type AuthProvider interface {
	ValidateCredentials(ctx context.Context, creds Credentials) error
	IdentifyUser(ctx context.Context, username string) (string, error)
	GetRequirements() CredentialRequirements
	Name() string
}

// AuthService fronts the configured provider and knows which paths skip
// authentication entirely.
type AuthService struct {
	provider        AuthProvider
	publicEndpoints []string
}

func NewAuthService(provider AuthProvider, publicEndpoints []string) *AuthService {
	return &AuthService{provider: provider, publicEndpoints: publicEndpoints}
}

func (s *AuthService) ValidateCredentials(ctx context.Context, creds Credentials) error {
	return s.provider.ValidateCredentials(ctx, creds)
}

// IsPublicEndpoint reports whether path matches a configured public
// prefix.
func (s *AuthService) IsPublicEndpoint(path string) bool {
	for _, endpoint := range s.publicEndpoints {
		if strings.HasPrefix(path, endpoint) {
			return true
		}
	}
	return false
}

func (s *AuthService) GetProvider() AuthProvider {
	return s.provider
}
