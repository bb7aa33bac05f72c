package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// stubProvider is a canned AuthProvider.
type stubProvider struct {
	name        string
	validateErr error
	role        string
	identifyErr error

	mu     sync.Mutex
	gotCtx context.Context
}

func (p *stubProvider) ValidateCredentials(ctx context.Context, creds Credentials) error {
	p.mu.Lock()
	p.gotCtx = ctx
	p.mu.Unlock()
	return p.validateErr
}

func (p *stubProvider) IdentifyUser(ctx context.Context, username string) (string, error) {
	return p.role, p.identifyErr
}

func (p *stubProvider) GetRequirements() CredentialRequirements {
	return CredentialRequirements{MinPasswordLength: 12}
}

func (p *stubProvider) Name() string { return p.name }

func TestAuthService_ValidateCredentials(t *testing.T) {
	tests := []struct {
		name        string
		providerErr error
	}{
		{name: "provider accepts"},
		{name: "provider rejects", providerErr: errors.New("invalid credentials")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &stubProvider{name: "stub", validateErr: tt.providerErr}
			svc := NewAuthService(provider, nil)

			err := svc.ValidateCredentials(context.Background(),
				Credentials{Username: "chef@example.com", Password: "secret"})
			if !errors.Is(err, tt.providerErr) {
				t.Errorf("err = %v, want %v", err, tt.providerErr)
			}
		})
	}
}

func TestAuthService_PropagatesContext(t *testing.T) {
	type ctxKey string
	provider := &stubProvider{name: "stub"}
	svc := NewAuthService(provider, nil)

	ctx := context.WithValue(context.Background(), ctxKey("req"), "abc")
	_ = svc.ValidateCredentials(ctx, Credentials{})

	if provider.gotCtx == nil || provider.gotCtx.Value(ctxKey("req")) != "abc" {
		t.Error("provider should receive the caller's context")
	}
}

func TestAuthService_IsPublicEndpoint(t *testing.T) {
	svc := NewAuthService(&stubProvider{}, []string{
		"/health", "/ready", "/metrics", "/swagger/", "/auth/token",
	})

	tests := []struct {
		path string
		want bool
	}{
		{path: "/health", want: true},
		{path: "/health/ai", want: true},
		{path: "/swagger/index.html", want: true},
		{path: "/auth/token", want: true},
		{path: "/recipes", want: false},
		{path: "/recipes/import", want: false},
		{path: "/", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := svc.IsPublicEndpoint(tt.path); got != tt.want {
				t.Errorf("IsPublicEndpoint(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestAuthService_IsPublicEndpoint_NoEndpoints(t *testing.T) {
	for _, endpoints := range [][]string{nil, {}} {
		svc := NewAuthService(&stubProvider{}, endpoints)
		if svc.IsPublicEndpoint("/health") {
			t.Error("without configured endpoints every path requires auth")
		}
	}
}

func TestAuthService_GetProvider(t *testing.T) {
	provider := &stubProvider{name: "multi-user"}
	svc := NewAuthService(provider, nil)

	got := svc.GetProvider()
	if got != AuthProvider(provider) {
		t.Fatal("GetProvider should return the configured provider")
	}
	if got.Name() != "multi-user" {
		t.Errorf("Name = %q", got.Name())
	}
	if got.GetRequirements().MinPasswordLength != 12 {
		t.Errorf("requirements should pass through the provider")
	}
}

func TestAuthService_GetProvider_IdentifyUser(t *testing.T) {
	// The token handler resolves the caller's role through GetProvider,
	// so IdentifyUser must be callable on the returned interface.
	svc := NewAuthService(&stubProvider{name: "multi-user", role: "admin"}, nil)

	role, err := svc.GetProvider().IdentifyUser(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("IdentifyUser: %v", err)
	}
	if role != "admin" {
		t.Errorf("role = %q, want admin", role)
	}

	svc = NewAuthService(&stubProvider{identifyErr: errors.New("user not found")}, nil)
	if _, err := svc.GetProvider().IdentifyUser(context.Background(), "ghost@example.com"); err == nil {
		t.Error("unknown user should return an error")
	}
}

func TestAuthService_ConcurrentReads(t *testing.T) {
	svc := NewAuthService(&stubProvider{role: "viewer"}, []string{"/health"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.IsPublicEndpoint("/health")
			_ = svc.ValidateCredentials(context.Background(), Credentials{})
			_, _ = svc.GetProvider().IdentifyUser(context.Background(), "x")
		}()
	}
	wg.Wait()
}
