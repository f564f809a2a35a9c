package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
)

// IdentityFinder is the slice of the identity store the guard needs.
type IdentityFinder interface {
	FindByID(ctx context.Context, id int64) (*domain.Identity, error)
}

// Guard derives the current identity from a bearer token and enforces role
// and permission checks.
type Guard struct {
	tokens     *TokenService
	identities IdentityFinder
}

func NewGuard(tokens *TokenService, identities IdentityFinder) *Guard {
	return &Guard{tokens: tokens, identities: identities}
}

// ExtractToken parses an Authorization header value of the form
// "Bearer <token>". The scheme is matched case-insensitively.
func ExtractToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", domain.ErrMissingHeader
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", domain.ErrMalformedHeader
	}
	return parts[1], nil
}

// CurrentIdentity validates token as an access token and loads its subject.
// A missing identity and a disabled one fail with the same error.
func (g *Guard) CurrentIdentity(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := g.tokens.Validate(token, TokenAccess)
	if err != nil {
		return nil, err
	}
	id, err := claims.SubjectID()
	if err != nil {
		return nil, err
	}

	identity, err := g.identities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnknownOrInactive
		}
		return nil, err
	}
	if identity == nil || !identity.IsActive {
		return nil, domain.ErrUnknownOrInactive
	}
	return identity, nil
}

// RequireRole fails with domain.ErrForbidden unless role is assigned.
func RequireRole(identity *domain.Identity, role string) error {
	if identity == nil || !identity.HasRole(role) {
		return domain.ErrForbidden
	}
	return nil
}

// RequirePermission fails with domain.ErrForbidden unless the identity holds
// permission exactly or holds the wildcard.
func RequirePermission(identity *domain.Identity, permission string) error {
	if identity == nil || !identity.HasPermission(permission) {
		return domain.ErrForbidden
	}
	return nil
}
