package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
)

const (
	defaultAccessTTL  = 120 * time.Minute
	defaultRefreshTTL = 30 * 24 * time.Hour
)

// TokenType tags a token as access or refresh.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims is the signed payload: sub, iat, exp plus the token type.
type Claims struct {
	Type TokenType `json:"type"`
	jwt.RegisteredClaims
}

// SubjectID returns the identity id carried in sub.
func (c *Claims) SubjectID() (int64, error) {
	if c.Subject == "" {
		return 0, domain.ErrMalformedSubject
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrMalformedSubject
	}
	return id, nil
}

// TokenConfig captures the signing settings. The secret and algorithm are
// process-wide; rotating either invalidates every outstanding token.
type TokenConfig struct {
	Secret     string
	Algorithm  string // HS256 (default), HS384 or HS512
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenService issues and validates stateless tokens. It holds no mutable
// state and never touches storage.
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: token secret is required")
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", alg)
	}

	s := &TokenService{
		secret:     []byte(cfg.Secret),
		method:     method,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
	if s.accessTTL <= 0 {
		s.accessTTL = defaultAccessTTL
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = defaultRefreshTTL
	}
	return s, nil
}

// AccessTTL is the default lifetime of access tokens.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// Issue signs a token for subjectID. A non-positive ttl selects the default
// for typ. It returns the token and its expiry.
func (s *TokenService) Issue(subjectID int64, typ TokenType, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL(typ)
	}

	now := s.now().UTC()
	expires := now.Add(ttl)
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Validate verifies signature, expiry and type, in that order, then checks the
// subject. It is the only gate for trusting a token's claims.
func (s *TokenService) Validate(token string, expected TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidSignature
	}

	if claims.Type != expected {
		return nil, domain.ErrTokenTypeMismatch
	}
	if _, err := claims.SubjectID(); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) defaultTTL(typ TokenType) time.Duration {
	if typ == TokenAccess {
		return s.accessTTL
	}
	return s.refreshTTL
}
