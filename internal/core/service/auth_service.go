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

// ExpiresLayout is the client-facing format of token expiry timestamps (UTC).
const ExpiresLayout = "2006/01/02 15:04:05"

// LoginThrottle abstracts the failed-login counter (Redis).
type LoginThrottle interface {
	Locked(ctx context.Context, username string) (bool, error)
	RegisterFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// AuthService implements login, token refresh and logout.
type AuthService struct {
	repo     ports.IdentityRepository
	tokens   *auth.TokenService
	audit    ports.AuditSink
	throttle LoginThrottle // optional
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	repo ports.IdentityRepository,
	tokens *auth.TokenService,
	audit ports.AuditSink,
	throttle LoginThrottle,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:     repo,
		tokens:   tokens,
		audit:    audit,
		throttle: throttle,
		log:      log,
		now:      time.Now,
	}
}

// Login verifies credentials and issues an access/refresh token pair. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password, clientIP string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		locked, err := s.throttle.Locked(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("throttle check failed, continuing")
		} else if locked {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil || !auth.VerifyPassword(password, user.PasswordHash) {
		s.registerFailure(ctx, username, clientIP)
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrInactiveAccount
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login throttle")
		}
	}

	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("login: update last login: %w", err)
	}
	user.LastLogin = &now

	record(s.audit, user.ID, domain.ActionLogin, domain.ResourceAuth, user.ID,
		fmt.Sprintf("User %s logged in", user.Username), clientIP, now)

	access, expires, err := s.tokens.Issue(user.ID, auth.TokenAccess, 0)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.tokens.Issue(user.ID, auth.TokenRefresh, 0)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Str("ip", clientIP).Msg("user logged in")

	return &ports.LoginResult{
		Identity:     user,
		AccessToken:  access,
		RefreshToken: refresh,
		Expires:      expires.UTC().Format(ExpiresLayout),
	}, nil
}

// Refresh mints a new access token from a valid refresh token. The refresh
// token itself is not rotated and is returned unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.RefreshResult, error) {
	claims, err := s.tokens.Validate(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, err
	}
	id, err := claims.SubjectID()
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUnknownOrInactive
	}

	access, expires, err := s.tokens.Issue(user.ID, auth.TokenAccess, 0)
	if err != nil {
		return nil, err
	}

	return &ports.RefreshResult{
		AccessToken:  access,
		RefreshToken: refreshToken,
		Expires:      expires.UTC().Format(ExpiresLayout),
	}, nil
}

// Logout only records the event; the caller's tokens stay valid until expiry.
func (s *AuthService) Logout(_ context.Context, identity *domain.Identity, clientIP string) error {
	if identity == nil {
		return domain.ErrUnknownOrInactive
	}
	record(s.audit, identity.ID, domain.ActionLogout, domain.ResourceAuth, identity.ID,
		fmt.Sprintf("User %s logged out", identity.Username), clientIP, s.now())
	return nil
}

func (s *AuthService) registerFailure(ctx context.Context, username, clientIP string) {
	s.log.Info().Str("username", username).Str("ip", clientIP).Msg("login failed")
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RegisterFailure(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
	}
}
