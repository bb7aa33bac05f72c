package auth

import "strings"

// Roles carried in the JWT "role" claim.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Permission lists the methods and path patterns a role may use. A
// pattern ending in "/*" matches the prefix itself and everything below
// it; "/*" alone matches every path.
type Permission struct {
	AllowedMethods []string
	AllowedPaths   []string
}

// RolePermissions is the authorization table. Admin can do everything,
// including imports and deletes; viewer is read-only on the recipe
// endpoints and the API docs. OPTIONS is allowed for both so CORS
// preflights pass.
var RolePermissions = map[string]Permission{
	RoleAdmin: {
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedPaths:   []string{"/*"},
	},
	RoleViewer: {
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedPaths:   []string{"/recipes", "/recipes/*", "/swagger/*"},
	},
}

// checkRolePermission reports whether role may invoke method on path.
// Unknown or empty roles are denied.
func checkRolePermission(role, method, path string) bool {
	perm, ok := RolePermissions[role]
	if !ok {
		return false
	}

	methodAllowed := false
	for _, m := range perm.AllowedMethods {
		if m == method {
			methodAllowed = true
			break
		}
	}
	if !methodAllowed {
		return false
	}
	return matchesPathPattern(path, perm.AllowedPaths)
}

func matchesPathPattern(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "/*" {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == pattern {
			return true
		}
	}
	return false
}
