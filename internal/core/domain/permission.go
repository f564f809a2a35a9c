package domain

import (
	"slices"
	"strings"
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Permission strings follow the resource:action convention.
const (
	PermissionAll = "*:*:*"

	PermDocumentCreate  = "document:create"
	PermDocumentRead    = "document:read"
	PermDocumentUpdate  = "document:update"
	PermDocumentDelete  = "document:delete"
	PermUserManage      = "user:manage"
	PermUserRead        = "user:read"
	PermLogView         = "log:view"
	PermVersionRollback = "version:rollback"
	PermAICall          = "ai:call"
	PermQAUse           = "qa:use"
)

// RolePermissions is the read-only mapping from role name to permission set.
// Build it once at startup; there are no mutators, so concurrent reads are safe.
type RolePermissions struct {
	table map[string][]string
}

// NewRolePermissions copies m, lower-casing role names.
func NewRolePermissions(m map[string][]string) RolePermissions {
	table := make(map[string][]string, len(m))
	for role, perms := range m {
		table[normalizeRole(role)] = slices.Clone(perms)
	}
	return RolePermissions{table: table}
}

// DefaultRolePermissions returns the admin / editor / viewer table.
func DefaultRolePermissions() RolePermissions {
	return NewRolePermissions(map[string][]string{
		RoleAdmin: {
			PermissionAll,
			PermDocumentCreate, PermDocumentRead, PermDocumentUpdate, PermDocumentDelete,
			PermUserManage, PermUserRead,
			PermLogView,
			PermVersionRollback,
			PermAICall,
			PermQAUse,
		},
		RoleEditor: {
			PermDocumentCreate, PermDocumentRead, PermDocumentUpdate,
			PermVersionRollback,
			PermAICall,
		},
		RoleViewer: {
			PermDocumentRead,
			PermQAUse,
		},
	})
}

// PermissionsFor returns the sorted, de-duplicated union of the permissions of
// every role. Unknown roles contribute nothing and are not an error.
func (t RolePermissions) PermissionsFor(roles []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, role := range roles {
		for _, p := range t.table[normalizeRole(role)] {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}

// Known reports whether role exists in the table.
func (t RolePermissions) Known(role string) bool {
	_, ok := t.table[normalizeRole(role)]
	return ok
}

// PermissionGranted reports whether held satisfies required. The wildcard
// grants everything; otherwise strings compare by exact equality.
func PermissionGranted(held []string, required string) bool {
	if slices.Contains(held, PermissionAll) {
		return true
	}
	return slices.Contains(held, required)
}

// NormalizeRoles lower-cases and trims role names, dropping blanks and
// duplicates while keeping first-seen order.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = normalizeRole(r)
		if r == "" || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
