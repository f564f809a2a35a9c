package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
)

func newTestTokenService(t *testing.T, now time.Time) *TokenService {
	t.Helper()
	svc, err := NewTokenService(TokenConfig{Secret: "test-secret", AccessTTL: 120 * time.Minute, RefreshTTL: 30 * 24 * time.Hour})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	svc.now = func() time.Time { return now }
	return svc
}

func TestNewTokenService_Validation(t *testing.T) {
	if _, err := NewTokenService(TokenConfig{}); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	if _, err := NewTokenService(TokenConfig{Secret: "s", Algorithm: "RS256"}); err == nil {
		t.Fatalf("expected error for non-HMAC algorithm")
	}
	if _, err := NewTokenService(TokenConfig{Secret: "s", Algorithm: "HS512"}); err != nil {
		t.Fatalf("HS512 should be accepted: %v", err)
	}

	svc, err := NewTokenService(TokenConfig{Secret: "s"})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	if svc.accessTTL != defaultAccessTTL || svc.refreshTTL != defaultRefreshTTL {
		t.Fatalf("defaults not applied: %v %v", svc.accessTTL, svc.refreshTTL)
	}
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := newTestTokenService(t, now)

	token, expires, err := svc.Issue(42, TokenAccess, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !expires.Equal(now.Add(120 * time.Minute)) {
		t.Fatalf("unexpected expiry: %v", expires)
	}

	claims, err := svc.Validate(token, TokenAccess)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "42" || claims.Type != TokenAccess {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if id, _ := claims.SubjectID(); id != 42 {
		t.Fatalf("expected subject 42, got %d", id)
	}
	if !claims.IssuedAt.Time.Equal(now) {
		t.Fatalf("unexpected iat: %v", claims.IssuedAt)
	}
}

func TestTokenService_DeterministicForSameInstant(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := newTestTokenService(t, now)

	a, _, _ := svc.Issue(7, TokenRefresh, 0)
	b, _, _ := svc.Issue(7, TokenRefresh, 0)
	if a != b {
		t.Fatalf("expected identical tokens for identical inputs")
	}

	svc.now = func() time.Time { return now.Add(time.Second) }
	c, _, _ := svc.Issue(7, TokenRefresh, 0)
	if a == c {
		t.Fatalf("expected tokens to differ when issued-at changes")
	}
}

func TestTokenService_RefreshDefaultTTL(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, now)

	_, expires, err := svc.Issue(1, TokenRefresh, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !expires.Equal(now.Add(30 * 24 * time.Hour)) {
		t.Fatalf("unexpected refresh expiry: %v", expires)
	}

	_, expires, _ = svc.Issue(1, TokenRefresh, time.Minute)
	if !expires.Equal(now.Add(time.Minute)) {
		t.Fatalf("explicit ttl ignored: %v", expires)
	}
}

func TestTokenService_Expired(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := newTestTokenService(t, now)

	token, _, _ := svc.Issue(1, TokenAccess, 0)

	svc.now = func() time.Time { return now.Add(119 * time.Minute) }
	if _, err := svc.Validate(token, TokenAccess); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	svc.now = func() time.Time { return now.Add(121 * time.Minute) }
	_, err := svc.Validate(token, TokenAccess)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expired must also match ErrInvalidToken")
	}
}

func TestTokenService_TypeMismatch(t *testing.T) {
	svc := newTestTokenService(t, time.Now())

	refresh, _, _ := svc.Issue(1, TokenRefresh, 0)
	if _, err := svc.Validate(refresh, TokenAccess); !errors.Is(err, domain.ErrTokenTypeMismatch) {
		t.Fatalf("expected ErrTokenTypeMismatch, got %v", err)
	}

	access, _, _ := svc.Issue(1, TokenAccess, 0)
	if _, err := svc.Validate(access, TokenRefresh); !errors.Is(err, domain.ErrTokenTypeMismatch) {
		t.Fatalf("expected ErrTokenTypeMismatch, got %v", err)
	}
}

func TestTokenService_InvalidSignature(t *testing.T) {
	svc := newTestTokenService(t, time.Now())
	token, _, _ := svc.Issue(1, TokenAccess, 0)

	other, err := NewTokenService(TokenConfig{Secret: "rotated-secret"})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	if _, err := other.Validate(token, TokenAccess); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature after secret rotation, got %v", err)
	}

	i := len(token) - 10
	replacement := "A"
	if token[i] == 'A' {
		replacement = "B"
	}
	tampered := token[:i] + replacement + token[i+1:]
	if _, err := svc.Validate(tampered, TokenAccess); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}

	if _, err := svc.Validate("not-a-token", TokenAccess); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestTokenService_RejectsOtherAlgorithm(t *testing.T) {
	svc := newTestTokenService(t, time.Now())

	claims := Claims{
		Type: TokenAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Validate(signed, TokenAccess); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for HS512 token, got %v", err)
	}
}

func TestTokenService_MalformedSubject(t *testing.T) {
	svc := newTestTokenService(t, time.Now())

	for _, sub := range []string{"", "abc", "-3", "0"} {
		claims := Claims{
			Type: TokenAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   sub,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := svc.Validate(signed, TokenAccess); !errors.Is(err, domain.ErrMalformedSubject) {
			t.Fatalf("sub %q: expected ErrMalformedSubject, got %v", sub, err)
		}
	}
}
