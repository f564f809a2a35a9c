package ports

import (
	"context"
	"time"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
)

// IdentityRepository is the storage collaborator for identities.
type IdentityRepository interface {
	// Create assigns an id and persists the identity. Duplicate usernames or
	// emails fail with an error wrapping domain.ErrConflict.
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	FindByID(ctx context.Context, id int64) (*domain.Identity, error)
	FindByUsername(ctx context.Context, username string) (*domain.Identity, error)
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	List(ctx context.Context, skip, limit int) ([]*domain.Identity, int64, error)
	// Update writes only the fields set in changes and returns the identity as
	// stored after the write.
	Update(ctx context.Context, id int64, changes IdentityChanges) (*domain.Identity, error)
	UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error
	Delete(ctx context.Context, id int64) error
}

// IdentityChanges is a partial update. Nil fields are left untouched. Roles and
// Permissions are written together whenever Roles is non-nil.
type IdentityChanges struct {
	Email       *string
	Nickname    *string
	Avatar      *string
	Roles       []string
	Permissions []string
	IsActive    *bool
	UpdatedAt   time.Time
}

// Apply copies the set fields onto identity.
func (c IdentityChanges) Apply(identity *domain.Identity) {
	if c.Email != nil {
		identity.Email = *c.Email
	}
	if c.Nickname != nil {
		identity.Nickname = *c.Nickname
	}
	if c.Avatar != nil {
		identity.Avatar = *c.Avatar
	}
	if c.Roles != nil {
		identity.Roles = append([]string{}, c.Roles...)
		identity.Permissions = append([]string{}, c.Permissions...)
	}
	if c.IsActive != nil {
		identity.IsActive = *c.IsActive
	}
	identity.UpdatedAt = c.UpdatedAt
}
