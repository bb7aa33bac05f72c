package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-jwt-secret-for-authz"

// mintToken signs an HS256 token with the test secret. Pass a different
// method or secret to produce tokens the middleware must reject.
func mintToken(t *testing.T, method jwt.SigningMethod, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func validClaims(sub, role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func authzRequest(t *testing.T, method, path, bearer string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var gotUser string
	handler := Authz(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, gotUser
}

func TestAuthz(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	secret := []byte(testSecret)

	adminToken := mintToken(t, jwt.SigningMethodHS256, secret, validClaims("admin@example.com", RoleAdmin))
	viewerToken := mintToken(t, jwt.SigningMethodHS256, secret, validClaims("demo@example.com", RoleViewer))

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		wantCode int
		wantUser string
	}{
		{name: "public endpoint needs no token", method: "GET", path: "/health", wantCode: http.StatusOK},
		{name: "protected read without token", method: "GET", path: "/recipes", wantCode: http.StatusUnauthorized},
		{name: "admin write allowed", method: "POST", path: "/recipes/import", token: adminToken, wantCode: http.StatusOK, wantUser: "admin@example.com"},
		{name: "viewer read allowed", method: "GET", path: "/recipes/42", token: viewerToken, wantCode: http.StatusOK, wantUser: "demo@example.com"},
		{name: "viewer write forbidden", method: "POST", path: "/recipes/import", token: viewerToken, wantCode: http.StatusForbidden},
		{name: "garbage token", method: "GET", path: "/recipes", token: "not.a.jwt", wantCode: http.StatusUnauthorized},
		{
			name: "expired token", method: "GET", path: "/recipes",
			token: mintToken(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
				"sub": "admin@example.com", "role": RoleAdmin,
				"exp": time.Now().Add(-time.Minute).Unix(),
			}),
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "wrong secret", method: "GET", path: "/recipes",
			token:    mintToken(t, jwt.SigningMethodHS256, []byte("other-secret"), validClaims("admin@example.com", RoleAdmin)),
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "missing role claim", method: "GET", path: "/recipes",
			token: mintToken(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
				"sub": "admin@example.com",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "fabricated role claim", method: "GET", path: "/recipes",
			token:    mintToken(t, jwt.SigningMethodHS256, secret, validClaims("x@example.com", "superuser")),
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, user := authzRequest(t, tt.method, tt.path, tt.token)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantUser != "" && user != tt.wantUser {
				t.Errorf("subject in context = %q, want %q", user, tt.wantUser)
			}
		})
	}
}

// Tokens signed with "none" or any non-HS256 algorithm must be rejected
// even when their payload is otherwise valid.
func TestAuthz_RejectsAlgorithmConfusion(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims("admin@example.com", RoleAdmin)).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none token: %v", err)
	}

	rec, _ := authzRequest(t, "GET", "/recipes", noneToken)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("alg=none token: status = %d, want 401", rec.Code)
	}
}

func TestWithUser_RoundTrip(t *testing.T) {
	ctx := WithUser(httptest.NewRequest("GET", "/", nil).Context(), "worker@internal")
	if got := UserFromContext(ctx); got != "worker@internal" {
		t.Errorf("UserFromContext = %q", got)
	}
	if got := UserFromContext(httptest.NewRequest("GET", "/", nil).Context()); got != "" {
		t.Errorf("unauthenticated context should yield empty subject, got %q", got)
	}
}
