package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wisdombase/wisdombase-api/internal/core/auth"
	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

const defaultUserPageSize = 10

// UserService implements admin management of identities.
type UserService struct {
	repo  ports.IdentityRepository
	docs  ports.DocumentRepository
	table domain.RolePermissions
	audit ports.AuditSink
	log   zerolog.Logger
	now   func() time.Time
}

func NewUserService(
	repo ports.IdentityRepository,
	docs ports.DocumentRepository,
	table domain.RolePermissions,
	audit ports.AuditSink,
	log zerolog.Logger,
) *UserService {
	return &UserService{repo: repo, docs: docs, table: table, audit: audit, log: log, now: time.Now}
}

func (s *UserService) List(ctx context.Context, skip, limit int) (*ports.UserList, error) {
	skip, limit = clampPage(skip, limit, defaultUserPageSize)
	items, total, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &ports.UserList{Total: total, Items: items}, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.Identity, error) {
	return s.repo.FindByID(ctx, id)
}

// Create hashes the password, derives permissions from roles and persists the
// identity. Roles default to viewer.
func (s *UserService) Create(ctx context.Context, actor ports.Actor, in ports.CreateUserInput) (*domain.Identity, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Username == "" || in.Password == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: username, password and email are required", domain.ErrInvalidInput)
	}

	if err := s.ensureUnique(ctx, 0, in.Username, in.Email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	roles := in.Roles
	if len(domain.NormalizeRoles(roles)) == 0 {
		roles = []string{domain.RoleViewer}
	}

	now := s.now().UTC()
	identity := &domain.Identity{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Nickname:     in.Nickname,
		Avatar:       domain.DefaultAvatar,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	identity.SetRoles(roles, s.table)

	created, err := s.repo.Create(ctx, identity)
	if err != nil {
		return nil, err
	}

	record(s.audit, actor.ID, domain.ActionCreate, domain.ResourceUser, created.ID,
		fmt.Sprintf("Created user %s", created.Username), actor.IP, now)
	s.log.Info().Int64("actor_id", actor.ID).Int64("user_id", created.ID).Strs("roles", created.Roles).Msg("user created")

	return created, nil
}

// Update writes only the fields present in the input. A role change
// recomputes permissions and both go out in the same write.
func (s *UserService) Update(ctx context.Context, actor ports.Actor, id int64, in ports.UpdateUserInput) (*domain.Identity, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := ports.IdentityChanges{UpdatedAt: s.now().UTC()}
	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if email != "" && email != current.Email {
			if err := s.ensureUnique(ctx, id, "", email); err != nil {
				return nil, err
			}
			changes.Email = &email
		}
	}
	if in.Nickname != nil && *in.Nickname != "" {
		changes.Nickname = in.Nickname
	}
	if in.Avatar != nil && *in.Avatar != "" {
		changes.Avatar = in.Avatar
	}
	if len(domain.NormalizeRoles(in.Roles)) > 0 {
		var next domain.Identity
		next.SetRoles(in.Roles, s.table)
		changes.Roles, changes.Permissions = next.Roles, next.Permissions
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	record(s.audit, actor.ID, domain.ActionUpdate, domain.ResourceUser, id,
		fmt.Sprintf("Updated user %s", updated.Username), actor.IP, changes.UpdatedAt)

	return updated, nil
}

// Delete removes the identity, then the documents it authored. Audit records
// are kept. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor ports.Actor, id int64) (*domain.Identity, error) {
	if id == actor.ID {
		return nil, fmt.Errorf("%w: cannot delete yourself", domain.ErrInvalidInput)
	}
	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	record(s.audit, actor.ID, domain.ActionDelete, domain.ResourceUser, id,
		fmt.Sprintf("Deleted user %s", identity.Username), actor.IP, s.now())

	if s.docs != nil {
		n, err := s.docs.DeleteByAuthor(ctx, id)
		if err != nil {
			s.log.Error().Err(err).Int64("user_id", id).Msg("user deleted but removing their documents failed")
			return nil, fmt.Errorf("delete user documents: %w", err)
		}
		if n > 0 {
			s.log.Info().Int64("user_id", id).Int64("documents", n).Msg("removed documents of deleted user")
		}
	}

	return identity, nil
}

// ToggleStatus flips the active flag. Admins cannot change their own status.
// Only is_active is written.
func (s *UserService) ToggleStatus(ctx context.Context, actor ports.Actor, id int64) (*domain.Identity, error) {
	if id == actor.ID {
		return nil, fmt.Errorf("%w: cannot change your own status", domain.ErrInvalidInput)
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	active := !current.IsActive
	now := s.now().UTC()
	updated, err := s.repo.Update(ctx, id, ports.IdentityChanges{IsActive: &active, UpdatedAt: now})
	if err != nil {
		return nil, err
	}

	verb := "Deactivated"
	if updated.IsActive {
		verb = "Activated"
	}
	record(s.audit, actor.ID, domain.ActionUpdate, domain.ResourceUser, id,
		fmt.Sprintf("%s user %s", verb, updated.Username), actor.IP, now)

	return updated, nil
}

// ensureUnique checks username (when non-empty) and email against identities
// other than exceptID.
func (s *UserService) ensureUnique(ctx context.Context, exceptID int64, username, email string) error {
	if username != "" {
		existing, err := s.repo.FindByUsername(ctx, username)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil && existing.ID != exceptID {
			return domain.ErrUserExists
		}
	}
	if email != "" {
		existing, err := s.repo.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil && existing.ID != exceptID {
			return domain.ErrEmailExists
		}
	}
	return nil
}
