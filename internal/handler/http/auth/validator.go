package auth

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// minPasswordLength applies to every account the API will issue tokens for.
const minPasswordLength = 12

// weakPasswords are rejected outright, as are passwords merely prefixed
// with one of them when the remainder is short.
var weakPasswords = []string{
	"admin", "password", "123456", "secret", "admin123", "password123",
	"123456789", "12345678", "qwerty", "abc123", "letmein", "welcome",
	"monkey", "1234567890", "password1", "admin1", "test", "test123",
	"default", "root",
}

var keyboardRows = []string{
	"qwertyuiop", "asdfghjkl", "zxcvbnm", "qwerty", "asdfgh", "zxcvb",
}

// ValidateAdminCredentials checks ADMIN_USER and ADMIN_USER_PASSWORD at
// startup. The server refuses to boot on a missing or guessable admin
// password; there is no degraded admin-less mode.
func ValidateAdminCredentials() error {
	user := os.Getenv("ADMIN_USER")
	pass := os.Getenv("ADMIN_USER_PASSWORD")

	if user == "" {
		return fmt.Errorf("admin credentials validation failed: ADMIN_USER must not be empty")
	}
	if pass == "" {
		return fmt.Errorf("admin credentials validation failed: ADMIN_USER_PASSWORD must not be empty")
	}
	if reason := passwordWeakness(pass); reason != "" {
		return fmt.Errorf("admin credentials validation failed: ADMIN_USER_PASSWORD %s", reason)
	}
	return nil
}

// passwordWeakness returns a human-readable reason when pass is too weak
// to guard an account, or "" when it is acceptable.
func passwordWeakness(pass string) string {
	if len(pass) < minPasswordLength {
		return fmt.Sprintf("must be at least %d characters (current length: %d)", minPasswordLength, len(pass))
	}
	if isNumericRun(pass) {
		return "must not be a simple numeric pattern"
	}
	lower := strings.ToLower(pass)
	for _, row := range keyboardRows {
		if strings.Contains(lower, row) || strings.Contains(lower, reverseString(row)) {
			return "must not be a keyboard pattern"
		}
	}
	for _, weak := range weakPasswords {
		if lower == weak {
			return "must not be a weak password"
		}
		// "admin1234567890" style padding of a known weak word.
		if strings.HasPrefix(lower, weak) && len(pass) < minPasswordLength+5 {
			return "must not be based on common weak passwords"
		}
	}
	return ""
}

// isNumericRun reports whether pass is one repeated character or an
// all-digit ascending/descending sequence (wrapping 9->0 and 0->9).
func isNumericRun(pass string) bool {
	if len(pass) < minPasswordLength {
		return false
	}

	repeated := true
	for i := 1; i < len(pass); i++ {
		if pass[i] != pass[0] {
			repeated = false
			break
		}
	}
	if repeated {
		return true
	}

	for _, ch := range pass {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	ascending, descending := true, true
	for i := 1; i < len(pass); i++ {
		diff := int(pass[i]) - int(pass[i-1])
		if diff != 1 && diff != -9 {
			ascending = false
		}
		if diff != -1 && diff != 9 {
			descending = false
		}
	}
	return ascending || descending
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// ValidateViewerCredentials checks DEMO_USER and DEMO_USER_PASSWORD at
// startup. Unlike the admin check it never fails the boot: a misconfigured
// viewer account is disabled (the env vars are unset) and the API runs
// admin-only.
func ValidateViewerCredentials(logger *slog.Logger) error {
	demoUser := os.Getenv("DEMO_USER")
	demoPass := os.Getenv("DEMO_USER_PASSWORD")

	if demoUser == "" {
		logger.Info("viewer role not configured - running in admin-only mode")
		return nil
	}

	disable := func(reason string) {
		logger.Warn(reason + " - disabling viewer role")
		os.Unsetenv("DEMO_USER")
		os.Unsetenv("DEMO_USER_PASSWORD")
	}

	if demoPass == "" {
		disable("DEMO_USER_PASSWORD is empty")
		return nil
	}
	if demoUser == os.Getenv("ADMIN_USER") {
		disable("DEMO_USER cannot be the same as ADMIN_USER")
		return nil
	}
	if len(demoPass) < minPasswordLength {
		disable(fmt.Sprintf("DEMO_USER_PASSWORD must be at least %d characters", minPasswordLength))
		return nil
	}
	lower := strings.ToLower(demoPass)
	for _, weak := range weakPasswords {
		if lower == weak || strings.HasPrefix(lower, weak) {
			disable("DEMO_USER_PASSWORD is a weak password")
			return nil
		}
	}

	logger.Info("viewer role configured", slog.String("user", demoUser))
	return nil
}
