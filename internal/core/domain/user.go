package domain

import (
	"slices"
	"time"
)

// DefaultAvatar is assigned to identities created without an avatar URL.
const DefaultAvatar = "https://avatars.githubusercontent.com/u/44761321"

// Identity models an authenticated principal (user account).
//
// Permissions is derived from Roles through RolePermissions and must never be
// edited on its own; use SetRoles.
type Identity struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Nickname     string     `json:"nickname"`
	Avatar       string     `json:"avatar"`
	Roles        []string   `json:"roles"`
	Permissions  []string   `json:"permissions"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login"`
}

// SetRoles replaces the role set and recomputes the permission set from table.
func (i *Identity) SetRoles(roles []string, table RolePermissions) {
	i.Roles = NormalizeRoles(roles)
	i.Permissions = table.PermissionsFor(i.Roles)
}

// HasRole reports whether role (case-insensitive) is assigned.
func (i *Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, normalizeRole(role))
}

// HasPermission reports whether the identity holds permission, either exactly
// or through the wildcard.
func (i *Identity) HasPermission(permission string) bool {
	return PermissionGranted(i.Permissions, permission)
}
