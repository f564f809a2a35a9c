package ports

import (
	"context"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Identity     *domain.Identity
	AccessToken  string
	RefreshToken string
	// Expires is the access token expiry formatted as "2006/01/02 15:04:05" UTC.
	Expires string
}

// RefreshResult carries a freshly minted access token. RefreshToken is the
// caller's token, returned unchanged.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	Expires      string
}

type AuthService interface {
	Login(ctx context.Context, username, password, clientIP string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
	Logout(ctx context.Context, identity *domain.Identity, clientIP string) error
}
