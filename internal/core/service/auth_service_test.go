package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wisdombase/wisdombase-api/internal/core/auth"
	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubIdentityRepo struct {
	users  map[int64]*domain.Identity
	nextID int64
	err    error

	// beforeUpdate runs at the start of Update, between a caller's read and write.
	beforeUpdate func()
	deleteErr    error
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{users: make(map[int64]*domain.Identity)}
}

func cloneIdentity(u *domain.Identity) *domain.Identity {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = slices.Clone(u.Roles)
	clone.Permissions = slices.Clone(u.Permissions)
	return &clone
}

func (r *stubIdentityRepo) Create(_ context.Context, u *domain.Identity) (*domain.Identity, error) {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return nil, domain.ErrUserExists
		}
		if existing.Email == u.Email {
			return nil, domain.ErrEmailExists
		}
	}
	r.nextID++
	stored := cloneIdentity(u)
	stored.ID = r.nextID
	r.users[stored.ID] = stored
	return cloneIdentity(stored), nil
}

func (r *stubIdentityRepo) FindByID(_ context.Context, id int64) (*domain.Identity, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneIdentity(u), nil
}

func (r *stubIdentityRepo) FindByUsername(_ context.Context, username string) (*domain.Identity, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneIdentity(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubIdentityRepo) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneIdentity(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubIdentityRepo) List(_ context.Context, skip, limit int) ([]*domain.Identity, int64, error) {
	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []*domain.Identity{}
	for i, id := range ids {
		if i < skip || len(out) >= limit {
			continue
		}
		out = append(out, cloneIdentity(r.users[id]))
	}
	return out, int64(len(ids)), nil
}

func (r *stubIdentityRepo) Update(_ context.Context, id int64, changes ports.IdentityChanges) (*domain.Identity, error) {
	if hook := r.beforeUpdate; hook != nil {
		r.beforeUpdate = nil
		hook()
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	changes.Apply(u)
	return cloneIdentity(u), nil
}

func (r *stubIdentityRepo) UpdateLastLogin(_ context.Context, id int64, ts time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &ts
	return nil
}

func (r *stubIdentityRepo) Delete(_ context.Context, id int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type stubAuditSink struct {
	entries []domain.OperationLog
}

func (s *stubAuditSink) Record(entry domain.OperationLog) {
	s.entries = append(s.entries, entry)
}

type stubThrottle struct {
	failures map[string]int
	max      int
	err      error
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), max: max}
}

func (t *stubThrottle) Locked(_ context.Context, username string) (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	return t.failures[username] >= t.max, nil
}

func (t *stubThrottle) RegisterFailure(_ context.Context, username string) error {
	t.failures[username]++
	return t.err
}

func (t *stubThrottle) Reset(_ context.Context, username string) error {
	delete(t.failures, username)
	return t.err
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: "secret"})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return tokens
}

// seededRepo returns a repo initialised with the default accounts.
func seededRepo(t *testing.T) *stubIdentityRepo {
	t.Helper()
	repo := newStubIdentityRepo()
	if _, err := NewSeeder(repo, domain.DefaultRolePermissions(), zerolog.Nop()).InitDefaultIdentities(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return repo
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestAuthService_Login_Admin(t *testing.T) {
	repo := seededRepo(t)
	sink := &stubAuditSink{}
	tokens := newTestTokens(t)
	svc := NewAuthService(repo, tokens, sink, nil, zerolog.Nop())

	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	res, err := svc.Login(context.Background(), "admin", "admin123", "10.0.0.1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !slices.Equal(res.Identity.Roles, []string{"admin"}) {
		t.Fatalf("unexpected roles: %v", res.Identity.Roles)
	}
	if !slices.Contains(res.Identity.Permissions, domain.PermissionAll) {
		t.Fatalf("admin permissions missing wildcard: %v", res.Identity.Permissions)
	}
	if res.AccessToken == "" || res.RefreshToken == "" || res.AccessToken == res.RefreshToken {
		t.Fatalf("expected distinct access and refresh tokens")
	}
	if _, err := tokens.Validate(res.AccessToken, auth.TokenAccess); err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if _, err := tokens.Validate(res.RefreshToken, auth.TokenRefresh); err != nil {
		t.Fatalf("refresh token invalid: %v", err)
	}
	if _, err := time.Parse(ExpiresLayout, res.Expires); err != nil {
		t.Fatalf("expires %q not in %s layout: %v", res.Expires, ExpiresLayout, err)
	}

	stored := repo.users[res.Identity.ID]
	if stored.LastLogin == nil || !stored.LastLogin.Equal(fixed) {
		t.Fatalf("last_login not updated: %v", stored.LastLogin)
	}

	if len(sink.entries) != 1 {
		t.Fatalf("expected one audit record, got %d", len(sink.entries))
	}
	entry := sink.entries[0]
	if entry.Action != domain.ActionLogin || entry.ResourceType != domain.ResourceAuth || entry.IPAddress != "10.0.0.1" {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if entry.UserID != res.Identity.ID || entry.ResourceID == nil || *entry.ResourceID != res.Identity.ID {
		t.Fatalf("audit entry not attributed to the user: %+v", entry)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	repo := seededRepo(t)
	sink := &stubAuditSink{}
	svc := NewAuthService(repo, newTestTokens(t), sink, nil, zerolog.Nop())

	_, wrongPass := svc.Login(context.Background(), "admin", "nope", "")
	_, unknownUser := svc.Login(context.Background(), "ghost", "admin123", "")
	_, empty := svc.Login(context.Background(), "", "", "")

	for _, err := range []error{wrongPass, unknownUser, empty} {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
	if len(sink.entries) != 0 {
		t.Fatalf("failed logins must not be audited as LOGIN")
	}
}

func TestAuthService_Login_Inactive(t *testing.T) {
	repo := seededRepo(t)
	u, _ := repo.FindByUsername(context.Background(), "viewer")
	repo.users[u.ID].IsActive = false

	svc := NewAuthService(repo, newTestTokens(t), nil, nil, zerolog.Nop())
	if _, err := svc.Login(context.Background(), "viewer", "viewer123", ""); !errors.Is(err, domain.ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
}

func TestAuthService_Login_StoreError(t *testing.T) {
	repo := newStubIdentityRepo()
	repo.err = errors.New("mongo down")
	svc := NewAuthService(repo, newTestTokens(t), nil, nil, zerolog.Nop())

	_, err := svc.Login(context.Background(), "admin", "admin123", "")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("storage failure must not look like bad credentials: %v", err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := seededRepo(t)
	throttle := newStubThrottle(2)
	svc := NewAuthService(repo, newTestTokens(t), nil, throttle, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Login(ctx, "editor", "bad-pass", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	if _, err := svc.Login(ctx, "editor", "editor123", ""); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	delete(throttle.failures, "editor")
	if _, err := svc.Login(ctx, "editor", "editor123", ""); err != nil {
		t.Fatalf("login after lockout cleared: %v", err)
	}
}

func TestAuthService_Login_ThrottleUnavailable(t *testing.T) {
	repo := seededRepo(t)
	throttle := newStubThrottle(1)
	throttle.err = errors.New("redis down")
	svc := NewAuthService(repo, newTestTokens(t), nil, throttle, zerolog.Nop())

	if _, err := svc.Login(context.Background(), "editor", "editor123", ""); err != nil {
		t.Fatalf("throttle outage must not block login: %v", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	repo := seededRepo(t)
	tokens := newTestTokens(t)
	svc := NewAuthService(repo, tokens, nil, nil, zerolog.Nop())

	login, err := svc.Login(context.Background(), "editor", "editor123", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	res, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if res.RefreshToken != login.RefreshToken {
		t.Fatalf("refresh token must be returned unchanged")
	}
	claims, err := tokens.Validate(res.AccessToken, auth.TokenAccess)
	if err != nil {
		t.Fatalf("new access token invalid: %v", err)
	}
	if id, _ := claims.SubjectID(); id != login.Identity.ID {
		t.Fatalf("access token subject %d, want %d", id, login.Identity.ID)
	}

	// The same refresh token keeps working: no rotation.
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	repo := seededRepo(t)
	svc := NewAuthService(repo, newTestTokens(t), nil, nil, zerolog.Nop())

	login, _ := svc.Login(context.Background(), "viewer", "viewer123", "")
	if _, err := svc.Refresh(context.Background(), login.AccessToken); !errors.Is(err, domain.ErrTokenTypeMismatch) {
		t.Fatalf("expected ErrTokenTypeMismatch, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), "garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_Refresh_InactiveUser(t *testing.T) {
	repo := seededRepo(t)
	svc := NewAuthService(repo, newTestTokens(t), nil, nil, zerolog.Nop())

	login, _ := svc.Login(context.Background(), "viewer", "viewer123", "")
	repo.users[login.Identity.ID].IsActive = false

	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, domain.ErrUnknownOrInactive) {
		t.Fatalf("expected ErrUnknownOrInactive, got %v", err)
	}
}

func TestAuthService_Logout_AuditsOnly(t *testing.T) {
	repo := seededRepo(t)
	sink := &stubAuditSink{}
	tokens := newTestTokens(t)
	svc := NewAuthService(repo, tokens, sink, nil, zerolog.Nop())

	login, _ := svc.Login(context.Background(), "viewer", "viewer123", "")
	if err := svc.Logout(context.Background(), login.Identity, "127.0.0.1"); err != nil {
		t.Fatalf("logout: %v", err)
	}

	last := sink.entries[len(sink.entries)-1]
	if last.Action != domain.ActionLogout || last.UserID != login.Identity.ID {
		t.Fatalf("unexpected audit entry: %+v", last)
	}
	if _, err := tokens.Validate(login.AccessToken, auth.TokenAccess); err != nil {
		t.Fatalf("logout must not invalidate the token: %v", err)
	}
}
