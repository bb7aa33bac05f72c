package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// CORS defaults when the corresponding environment variable is unset.
var (
	defaultCORSMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	defaultCORSHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Trace-ID"}
)

const defaultCORSMaxAge = 86400

// CORSConfig holds the cross-origin policy for the recipe API. Origins are
// an exact-match whitelist; there is no wildcard support because the API
// serves credentialed requests.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool

	// MaxAge is the preflight cache duration in seconds.
	MaxAge int

	Logger *slog.Logger
}

// LoadCORSConfig reads the CORS policy from the environment.
//
// CORS_ALLOWED_ORIGINS is required and fail-closed: the API refuses to
// start without an explicit whitelist. CORS_ALLOWED_METHODS,
// CORS_ALLOWED_HEADERS and CORS_MAX_AGE fall back to defaults.
func LoadCORSConfig() (*CORSConfig, error) {
	origins, err := parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if err != nil {
		return nil, err
	}

	methods, err := parseCORSMethods(os.Getenv("CORS_ALLOWED_METHODS"))
	if err != nil {
		return nil, err
	}

	headers := defaultCORSHeaders
	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_HEADERS")); raw != "" {
		headers = splitAndTrim(raw)
		if len(headers) == 0 {
			return nil, fmt.Errorf("CORS_ALLOWED_HEADERS is set but contains no headers")
		}
	}

	maxAge := defaultCORSMaxAge
	if raw := strings.TrimSpace(os.Getenv("CORS_MAX_AGE")); raw != "" {
		maxAge, err = strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CORS_MAX_AGE %q: must be an integer", raw)
		}
		if maxAge < 0 {
			return nil, fmt.Errorf("CORS_MAX_AGE must be non-negative, got %d", maxAge)
		}
	}

	return &CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   methods,
		AllowedHeaders:   headers,
		AllowCredentials: true,
		MaxAge:           maxAge,
	}, nil
}

func parseCORSOrigins(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("CORS_ALLOWED_ORIGINS environment variable is required")
	}

	origins := splitAndTrim(raw)
	for _, origin := range origins {
		u, err := url.Parse(origin)
		if err != nil {
			return nil, fmt.Errorf("invalid origin %q: %w", origin, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("origin %q must use http or https", origin)
		}
		if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
			return nil, fmt.Errorf("origin %q must be scheme://host[:port] with no path, query or fragment", origin)
		}
		if strings.HasSuffix(origin, "/") {
			return nil, fmt.Errorf("origin %q must not have a trailing slash", origin)
		}
	}
	if len(origins) == 0 {
		return nil, fmt.Errorf("CORS_ALLOWED_ORIGINS contains no origins")
	}
	return origins, nil
}

func parseCORSMethods(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultCORSMethods, nil
	}

	methods := splitAndTrim(raw)
	for i, method := range methods {
		method = strings.ToUpper(method)
		switch method {
		case "GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS":
			methods[i] = method
		default:
			return nil, fmt.Errorf("invalid HTTP method %q in CORS_ALLOWED_METHODS", method)
		}
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("CORS_ALLOWED_METHODS is set but contains no methods")
	}
	return methods, nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeOrigin lowercases and strips the trailing slash so the whitelist
// comparison is insensitive to both.
func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
}

// CORS returns middleware enforcing the whitelist policy.
//
// Same-origin requests (no Origin header) pass through untouched. Requests
// from origins outside the whitelist also pass through, but without CORS
// headers, so the browser blocks the response. Whitelisted preflights are
// answered with 204 without reaching the next handler.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(config.AllowedOrigins))
	for _, origin := range config.AllowedOrigins {
		allowed[normalizeOrigin(origin)] = struct{}{}
	}

	allowMethods := strings.Join(config.AllowedMethods, ", ")
	allowHeaders := strings.Join(config.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := allowed[normalizeOrigin(origin)]; !ok {
				if config.Logger != nil {
					config.Logger.Warn("cross-origin request refused",
						slog.String("origin", origin),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("remote_addr", r.RemoteAddr))
				}
				next.ServeHTTP(w, r)
				return
			}

			// Echo the request origin; a wildcard is invalid with credentials.
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if config.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", allowMethods)
				w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				if config.Logger != nil {
					config.Logger.Debug("cors preflight",
						slog.String("origin", origin),
						slog.String("requested_method", r.Header.Get("Access-Control-Request-Method")))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
