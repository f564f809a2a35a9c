package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wisdombase/wisdombase-api/internal/core/auth"
	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

// DefaultAccount describes one identity created by InitDefaultIdentities.
type DefaultAccount struct {
	Username string
	Password string
	Email    string
	Nickname string
	Role     string
	Avatar   string
}

// DefaultAccounts are the bootstrap admin, editor and viewer logins.
var DefaultAccounts = []DefaultAccount{
	{Username: "admin", Password: "admin123", Email: "admin@wisdombase.com", Nickname: "Administrator", Role: domain.RoleAdmin, Avatar: domain.DefaultAvatar},
	{Username: "editor", Password: "editor123", Email: "editor@wisdombase.com", Nickname: "Editor", Role: domain.RoleEditor, Avatar: "https://avatars.githubusercontent.com/u/52823142"},
	{Username: "viewer", Password: "viewer123", Email: "viewer@wisdombase.com", Nickname: "Viewer", Role: domain.RoleViewer, Avatar: domain.DefaultAvatar},
}

// Seeder bootstraps an empty identity store.
type Seeder struct {
	repo  ports.IdentityRepository
	table domain.RolePermissions
	log   zerolog.Logger
}

func NewSeeder(repo ports.IdentityRepository, table domain.RolePermissions, log zerolog.Logger) *Seeder {
	return &Seeder{repo: repo, table: table, log: log}
}

// InitDefaultIdentities creates DefaultAccounts unless an "admin" identity
// already exists. It reports whether anything was created.
func (s *Seeder) InitDefaultIdentities(ctx context.Context) (bool, error) {
	existing, err := s.repo.FindByUsername(ctx, "admin")
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("seed: %w", err)
	}
	if existing != nil {
		s.log.Info().Msg("admin user already exists, skipping initialization")
		return false, nil
	}

	now := time.Now().UTC()
	for _, acc := range DefaultAccounts {
		hash, err := auth.HashPassword(acc.Password)
		if err != nil {
			return false, fmt.Errorf("seed %s: %w", acc.Username, err)
		}
		identity := &domain.Identity{
			Username:     acc.Username,
			Email:        acc.Email,
			PasswordHash: hash,
			Nickname:     acc.Nickname,
			Avatar:       acc.Avatar,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		identity.SetRoles([]string{acc.Role}, s.table)

		if _, err := s.repo.Create(ctx, identity); err != nil {
			return false, fmt.Errorf("seed %s: %w", acc.Username, err)
		}
		s.log.Info().Str("username", acc.Username).Str("role", acc.Role).Msg("created default user")
	}
	return true, nil
}
