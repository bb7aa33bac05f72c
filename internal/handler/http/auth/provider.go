package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"os"
	"strings"

	authservice "recipebox/internal/service/auth"
)

// MultiUserAuthProvider authenticates against the admin and optional
// viewer accounts configured through environment variables. All secret
// comparisons are constant-time.
type MultiUserAuthProvider struct {
	minPasswordLength int
	weakPasswords     []string
}

func NewMultiUserAuthProvider(minPasswordLength int, weakPasswords []string) *MultiUserAuthProvider {
	return &MultiUserAuthProvider{
		minPasswordLength: minPasswordLength,
		weakPasswords:     weakPasswords,
	}
}

// ValidateCredentials accepts the credentials when they match either the
// admin account or, if configured, the viewer account. The policy checks
// run first so that a weak submitted password is rejected without ever
// comparing it against the stored secrets.
func (p *MultiUserAuthProvider) ValidateCredentials(ctx context.Context, creds authservice.Credentials) error {
	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("credentials must not be empty")
	}
	if len(creds.Password) < p.minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", p.minPasswordLength)
	}
	for _, weak := range p.weakPasswords {
		if creds.Password == weak || strings.HasPrefix(creds.Password, weak) {
			return fmt.Errorf("weak password detected")
		}
	}

	if accountMatches(creds, os.Getenv("ADMIN_USER"), os.Getenv("ADMIN_USER_PASSWORD")) {
		return nil
	}
	if demoUser := os.Getenv("DEMO_USER"); demoUser != "" {
		if accountMatches(creds, demoUser, os.Getenv("DEMO_USER_PASSWORD")) {
			return nil
		}
	}
	return fmt.Errorf("invalid credentials")
}

func accountMatches(creds authservice.Credentials, user, pass string) bool {
	userMatch := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(user)) == 1
	passMatch := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(pass)) == 1
	return userMatch && passMatch
}

// IdentifyUser maps a username to its role. The viewer account only
// exists while DEMO_USER is set.
func (p *MultiUserAuthProvider) IdentifyUser(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username must not be empty")
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(os.Getenv("ADMIN_USER"))) == 1 {
		return RoleAdmin, nil
	}
	if demoUser := os.Getenv("DEMO_USER"); demoUser != "" {
		if subtle.ConstantTimeCompare([]byte(username), []byte(demoUser)) == 1 {
			return RoleViewer, nil
		}
	}
	return "", fmt.Errorf("user not found")
}

func (p *MultiUserAuthProvider) GetRequirements() authservice.CredentialRequirements {
	return authservice.CredentialRequirements{
		MinPasswordLength: p.minPasswordLength,
		WeakPasswords:     p.weakPasswords,
	}
}

func (p *MultiUserAuthProvider) Name() string {
	return "multi-user"
}
