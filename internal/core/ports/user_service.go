package ports

import (
	"context"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
)

// Actor identifies who performs an admin action and from where.
type Actor struct {
	ID       int64
	Username string
	IP       string
}

// CreateUserInput carries the fields for a new identity.
type CreateUserInput struct {
	Username string
	Password string
	Email    string
	Nickname string
	Roles    []string // empty = viewer
}

// UpdateUserInput carries optional changes; nil fields are left untouched.
type UpdateUserInput struct {
	Email    *string
	Nickname *string
	Avatar   *string
	Roles    []string // nil or empty = unchanged
}

// UserList is a page of identities plus the total count.
type UserList struct {
	Total int64
	Items []*domain.Identity
}

// UserService defines admin operations on identities.
type UserService interface {
	List(ctx context.Context, skip, limit int) (*UserList, error)
	Get(ctx context.Context, id int64) (*domain.Identity, error)
	Create(ctx context.Context, actor Actor, input CreateUserInput) (*domain.Identity, error)
	Update(ctx context.Context, actor Actor, id int64, input UpdateUserInput) (*domain.Identity, error)
	Delete(ctx context.Context, actor Actor, id int64) (*domain.Identity, error)
	ToggleStatus(ctx context.Context, actor Actor, id int64) (*domain.Identity, error)
}
