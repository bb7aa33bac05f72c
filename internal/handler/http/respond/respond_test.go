package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	return body["error"]
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"id": 7})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["id"] != 7 {
		t.Errorf("body = %v, err = %v", body, err)
	}
}

func TestJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusNoContent, nil)

	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Errorf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
}

func TestSafeError(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		err      error
		wantBody string
	}{
		{
			name: "validation error passes through",
			code: http.StatusBadRequest,
			err:  errors.New("title is required"),
			wantBody: "title is required",
		},
		{
			name: "not found passes through",
			code: http.StatusNotFound,
			err:  errors.New("recipe not found"),
			wantBody: "recipe not found",
		},
		{
			name: "internal detail hidden",
			code: http.StatusBadRequest,
			err:  errors.New("dial tcp 10.0.0.1:5432: connection refused"),
			wantBody: "internal server error",
		},
		{
			name: "5xx always generic even with safe wording",
			code: http.StatusInternalServerError,
			err:  errors.New("recipe not found in cache"),
			wantBody: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			SafeError(rec, tt.code, tt.err)
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if got := decodeErrorBody(t, rec); got != tt.wantBody {
				t.Errorf("body error = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestSafeError_NilWritesNothing(t *testing.T) {
	rec := httptest.NewRecorder()
	SafeError(rec, http.StatusInternalServerError, nil)
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}

func TestSafeErrorV2_AppError(t *testing.T) {
	appErr := NewAppError(http.StatusConflict, "Recipe already imported",
		errors.New("pq: duplicate key value violates unique constraint"))

	rec := httptest.NewRecorder()
	SafeErrorV2(rec, http.StatusInternalServerError, fmt.Errorf("importing: %w", appErr))

	// The AppError's code and message win over the passed-in code.
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if got := decodeErrorBody(t, rec); got != "Recipe already imported" {
		t.Errorf("body error = %q", got)
	}
}

func TestSafeErrorV2_PlainErrorFallsBack(t *testing.T) {
	rec := httptest.NewRecorder()
	SafeErrorV2(rec, http.StatusBadRequest, errors.New("url is invalid"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	if got := decodeErrorBody(t, rec); got != "url is invalid" {
		t.Errorf("body error = %q", got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	appErr := NewAppError(http.StatusBadGateway, "upstream failed", inner)

	if !errors.Is(appErr, inner) {
		t.Error("AppError must unwrap to the inner error")
	}
	if appErr.Error() != "boom" {
		t.Errorf("Error() = %q", appErr.Error())
	}
	if msgOnly := NewAppError(400, "just a message", nil); msgOnly.Error() != "just a message" {
		t.Errorf("Error() without inner = %q", msgOnly.Error())
	}
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "anthropic key masked",
			err:  errors.New("auth failed for sk-ant-api03-abc123_XY"),
			want: "auth failed for sk-ant-****",
		},
		{
			name: "openai key masked",
			err:  errors.New("401 from api with sk-abcdef1234567890"),
			want: "401 from api with sk-****",
		},
		{
			name: "dsn password masked, user kept",
			err:  errors.New("connect postgres://recipebox:hunter22@db:5432/recipes failed"),
			want: "connect postgres://recipebox:****@db:5432/recipes failed",
		},
		{
			name: "plain message untouched",
			err:  errors.New("no rows in result set"),
			want: "no rows in result set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeError(tt.err)
			if got != tt.want {
				t.Errorf("SanitizeError = %q, want %q", got, tt.want)
			}
			if strings.Contains(got, "hunter22") {
				t.Error("password leaked through sanitization")
			}
		})
	}

	if SanitizeError(nil) != "" {
		t.Error("nil error should sanitize to empty string")
	}
}
