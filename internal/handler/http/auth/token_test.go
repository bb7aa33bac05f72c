package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authservice "recipebox/internal/service/auth"

	"github.com/golang-jwt/jwt/v5"
)

func tokenTestService(t *testing.T) *authservice.AuthService {
	t.Helper()
	providerEnv(t, true)
	t.Setenv("JWT_SECRET", testSecret)
	provider := NewMultiUserAuthProvider(12, []string{"password", "123456"})
	return authservice.NewAuthService(provider, PublicEndpoints)
}

func postLogin(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeIssuedToken(t *testing.T, rec *httptest.ResponseRecorder) jwt.MapClaims {
	t.Helper()

	var resp tokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	tok, err := jwt.Parse(resp.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("issued token does not verify: %v", err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("issued token has no map claims")
	}
	return claims
}

func TestTokenHandler_IssuesAdminToken(t *testing.T) {
	handler := TokenHandler(tokenTestService(t))

	rec := postLogin(handler, `{"email":"admin@example.com","password":"Adm1n&Secure!Pass"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	claims := decodeIssuedToken(t, rec)
	if claims["sub"] != "admin@example.com" {
		t.Errorf("sub = %v", claims["sub"])
	}
	if claims["role"] != RoleAdmin {
		t.Errorf("role = %v, want admin", claims["role"])
	}
	if _, ok := claims["exp"].(float64); !ok {
		t.Error("exp claim missing")
	}
}

func TestTokenHandler_IssuesViewerToken(t *testing.T) {
	handler := TokenHandler(tokenTestService(t))

	rec := postLogin(handler, `{"email":"demo@example.com","password":"Viewer&Secure!Pass"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if claims := decodeIssuedToken(t, rec); claims["role"] != RoleViewer {
		t.Errorf("role = %v, want viewer", claims["role"])
	}
}

func TestTokenHandler_Failures(t *testing.T) {
	handler := TokenHandler(tokenTestService(t))

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "malformed json", body: `{not json`, wantCode: http.StatusBadRequest},
		{name: "wrong password", body: `{"email":"admin@example.com","password":"Wrong&Secure!Pass"}`, wantCode: http.StatusUnauthorized},
		{name: "unknown user", body: `{"email":"stranger@example.com","password":"Strng&Secure!Pass"}`, wantCode: http.StatusUnauthorized},
		{name: "empty body fields", body: `{}`, wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLogin(handler, tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if strings.Contains(rec.Body.String(), "token") && rec.Code != http.StatusOK {
				t.Errorf("failure response must not leak a token: %s", rec.Body.String())
			}
		})
	}
}

// Token from the handler must pass the Authz middleware end to end.
func TestTokenHandler_TokenAcceptedByAuthz(t *testing.T) {
	handler := TokenHandler(tokenTestService(t))

	rec := postLogin(handler, `{"email":"demo@example.com","password":"Viewer&Secure!Pass"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d", rec.Code)
	}
	var resp tokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	authzRec, user := authzRequest(t, "GET", "/recipes", resp.Token)
	if authzRec.Code != http.StatusOK {
		t.Errorf("viewer token rejected by Authz: %d", authzRec.Code)
	}
	if user != "demo@example.com" {
		t.Errorf("subject = %q", user)
	}

	// Viewer token must still not authorize writes.
	if forbidden, _ := authzRequest(t, "POST", "/recipes/import", resp.Token); forbidden.Code != http.StatusForbidden {
		t.Errorf("viewer write: status = %d, want 403", forbidden.Code)
	}
}
