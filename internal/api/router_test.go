package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/wisdombase/wisdombase-api/internal/core/auth"
	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
	"github.com/wisdombase/wisdombase-api/internal/core/service"
)

// memIdentities is a minimal in-memory ports.IdentityRepository.
type memIdentities struct {
	mu    sync.Mutex
	users map[int64]*domain.Identity
	next  int64
}

func (m *memIdentities) Create(_ context.Context, u *domain.Identity) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return nil, domain.ErrUserExists
		}
	}
	m.next++
	c := *u
	c.ID = m.next
	m.users[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memIdentities) find(match func(*domain.Identity) bool) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memIdentities) FindByID(_ context.Context, id int64) (*domain.Identity, error) {
	return m.find(func(u *domain.Identity) bool { return u.ID == id })
}

func (m *memIdentities) FindByUsername(_ context.Context, name string) (*domain.Identity, error) {
	return m.find(func(u *domain.Identity) bool { return u.Username == name })
}

func (m *memIdentities) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	return m.find(func(u *domain.Identity) bool { return u.Email == email })
}

func (m *memIdentities) List(_ context.Context, skip, limit int) ([]*domain.Identity, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Identity{}
	for id := int64(1); id <= m.next; id++ {
		if u, ok := m.users[id]; ok {
			c := *u
			out = append(out, &c)
		}
	}
	total := int64(len(out))
	if skip > len(out) {
		skip = len(out)
	}
	out = out[skip:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *memIdentities) Update(_ context.Context, id int64, changes ports.IdentityChanges) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	changes.Apply(u)
	c := *u
	return &c, nil
}

func (m *memIdentities) UpdateLastLogin(_ context.Context, id int64, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].LastLogin = &ts
	return nil
}

func (m *memIdentities) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()
	table := domain.DefaultRolePermissions()
	repo := &memIdentities{users: make(map[int64]*domain.Identity)}
	if _, err := service.NewSeeder(repo, table, log).InitDefaultIdentities(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}

	reg := prometheus.NewRegistry()
	return NewRouter(RouterConfig{
		AppName:    "WisdomBase API",
		AppVersion: "1.0.0",
		APIPrefix:  "/api/v1",
	}, Dependencies{
		Guard:      auth.NewGuard(tokens, repo),
		Auth:       service.NewAuthService(repo, tokens, nil, nil, log),
		Users:      service.NewUserService(repo, nil, table, nil, log),
		Logs:       service.NewOperationLogService(nil, repo),
		Documents:  service.NewDocumentService(nil, nil, log),
		Registerer: reg,
		Gatherer:   reg,
		Log:        log,
	})
}

func do(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type loginPayload struct {
	Success bool `json:"success"`
	Data    struct {
		Username     string   `json:"username"`
		Roles        []string `json:"roles"`
		Permissions  []string `json:"permissions"`
		AccessToken  string   `json:"accessToken"`
		RefreshToken string   `json:"refreshToken"`
		Expires      string   `json:"expires"`
	} `json:"data"`
}

func login(t *testing.T, e *echo.Echo, username, password string) loginPayload {
	t.Helper()
	rec := do(e, http.MethodPost, "/api/v1/auth/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, rec.Code, rec.Body.String())
	}
	var p loginPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return p
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body.Message
}

func TestRouter_AdminLoginScenario(t *testing.T) {
	e := newTestServer(t)

	p := login(t, e, "admin", "admin123")
	if !p.Success || !slices.Equal(p.Data.Roles, []string{"admin"}) {
		t.Fatalf("unexpected roles: %+v", p.Data)
	}
	if !slices.Contains(p.Data.Permissions, "*:*:*") {
		t.Fatalf("admin must hold the wildcard: %v", p.Data.Permissions)
	}
	if _, err := time.Parse("2006/01/02 15:04:05", p.Data.Expires); err != nil {
		t.Fatalf("bad expires %q", p.Data.Expires)
	}

	rec := do(e, http.MethodGet, "/api/v1/auth/me", p.Data.AccessToken, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"username":"admin"`) {
		t.Fatalf("me: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/api/v1/users", p.Data.AccessToken, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"total":3`) {
		t.Fatalf("users: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/api/v1/routes/async", p.Data.AccessToken, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Fatalf("routes: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_Unauthenticated(t *testing.T) {
	e := newTestServer(t)

	for _, header := range []string{"", "Bearertoken123", "Basic abc", "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", header, rec.Code)
		}
		if rec.Header().Get(echo.HeaderWWWAuthenticate) != "Bearer" {
			t.Fatalf("%q: missing Bearer challenge", header)
		}
	}

	rec := do(e, http.MethodPost, "/api/v1/auth/login", "", `{"username":"admin","password":"wrong-password"}`)
	if rec.Code != http.StatusUnauthorized || message(t, rec) != "Invalid credentials" {
		t.Fatalf("bad password: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_ViewerIsForbidden(t *testing.T) {
	e := newTestServer(t)
	viewer := login(t, e, "viewer", "viewer123")

	rec := do(e, http.MethodGet, "/api/v1/users", viewer.Data.AccessToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("users: expected 403, got %d", rec.Code)
	}
	rec = do(e, http.MethodGet, "/api/v1/logs", viewer.Data.AccessToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("logs: expected 403, got %d", rec.Code)
	}
	rec = do(e, http.MethodPost, "/api/v1/documents", viewer.Data.AccessToken, `{"title":"x"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("documents: expected 403, got %d", rec.Code)
	}
}

func TestRouter_DeactivationRevokesAccess(t *testing.T) {
	e := newTestServer(t)
	admin := login(t, e, "admin", "admin123")
	viewer := login(t, e, "viewer", "viewer123")

	rec := do(e, http.MethodPut, "/api/v1/users/1/status", admin.Data.AccessToken, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self toggle: expected 400, got %d", rec.Code)
	}

	rec = do(e, http.MethodPut, "/api/v1/users/3/status", admin.Data.AccessToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle viewer: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/api/v1/auth/me", viewer.Data.AccessToken, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("deactivated token: expected 401, got %d", rec.Code)
	}
	rec = do(e, http.MethodPost, "/api/v1/auth/refresh-token", "", `{"refreshToken":"`+viewer.Data.RefreshToken+`"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("deactivated refresh: expected 401, got %d", rec.Code)
	}
	rec = do(e, http.MethodPost, "/api/v1/auth/login", "", `{"username":"viewer","password":"viewer123"}`)
	if rec.Code != http.StatusForbidden || message(t, rec) != "User is inactive" {
		t.Fatalf("inactive login: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_RefreshFlow(t *testing.T) {
	e := newTestServer(t)
	editor := login(t, e, "editor", "editor123")

	rec := do(e, http.MethodPost, "/api/v1/auth/refresh-token", "", `{"refreshToken":"`+editor.Data.RefreshToken+`"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), editor.Data.RefreshToken) {
		t.Fatalf("refresh: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodPost, "/api/v1/auth/refresh-token", "", `{"refreshToken":"`+editor.Data.AccessToken+`"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("access token as refresh: expected 401, got %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/api/v1/auth/me", editor.Data.RefreshToken, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token as access: expected 401, got %d", rec.Code)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	e := newTestServer(t)

	for _, path := range []string{"/", "/health", "/health/ready", "/metrics"} {
		rec := do(e, http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
