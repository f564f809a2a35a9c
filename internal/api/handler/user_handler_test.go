package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/wisdombase/wisdombase-api/internal/api/middleware"
	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

type stubUserService struct {
	ports.UserService

	listFn   func(skip, limit int) (*ports.UserList, error)
	createFn func(actor ports.Actor, in ports.CreateUserInput) (*domain.Identity, error)
	updateFn func(actor ports.Actor, id int64, in ports.UpdateUserInput) (*domain.Identity, error)
	deleteFn func(actor ports.Actor, id int64) (*domain.Identity, error)
	toggleFn func(actor ports.Actor, id int64) (*domain.Identity, error)
}

func (s *stubUserService) List(_ context.Context, skip, limit int) (*ports.UserList, error) {
	return s.listFn(skip, limit)
}

func (s *stubUserService) Create(_ context.Context, actor ports.Actor, in ports.CreateUserInput) (*domain.Identity, error) {
	return s.createFn(actor, in)
}

func (s *stubUserService) Update(_ context.Context, actor ports.Actor, id int64, in ports.UpdateUserInput) (*domain.Identity, error) {
	return s.updateFn(actor, id, in)
}

func (s *stubUserService) Delete(_ context.Context, actor ports.Actor, id int64) (*domain.Identity, error) {
	return s.deleteFn(actor, id)
}

func (s *stubUserService) ToggleStatus(_ context.Context, actor ports.Actor, id int64) (*domain.Identity, error) {
	return s.toggleFn(actor, id)
}

var testAdmin = &domain.Identity{ID: 1, Username: "admin", IsActive: true, Roles: []string{"admin"}}

func adminContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := e.NewContext(req, rec)
	c.Set(middleware.IdentityKey, testAdmin)
	return c
}

func TestUserHandler_List_Pagination(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{
		listFn: func(skip, limit int) (*ports.UserList, error) {
			if skip != 5 || limit != 2 {
				t.Fatalf("unexpected page %d/%d", skip, limit)
			}
			return &ports.UserList{Total: 7, Items: []*domain.Identity{{ID: 6, Username: "u6"}}}, nil
		},
	})

	rec := httptest.NewRecorder()
	if err := h.List(adminContext(e, httptest.NewRequest(http.MethodGet, "/users?skip=5&limit=2", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["total"] != float64(7) || len(data["items"].([]any)) != 1 {
		t.Fatalf("unexpected payload: %v", data)
	}

	for _, q := range []string{"limit=0", "limit=101", "skip=-1", "limit=abc"} {
		err := h.List(adminContext(e, httptest.NewRequest(http.MethodGet, "/users?"+q, nil), httptest.NewRecorder()))
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected 422, got %v", q, err)
		}
	}
}

func TestUserHandler_Create(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{
		createFn: func(actor ports.Actor, in ports.CreateUserInput) (*domain.Identity, error) {
			if actor.ID != testAdmin.ID {
				t.Fatalf("actor not taken from the identity: %+v", actor)
			}
			if in.Username != "alice" || len(in.Roles) != 0 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Identity{ID: 10, Username: "alice", Roles: []string{"viewer"}, IsActive: true}, nil
		},
	})

	rec := httptest.NewRecorder()
	body := `{"username":"alice","password":"secret1","email":"alice@example.com","nickname":"Alice"}`
	if err := h.Create(adminContext(e, jsonRequest(http.MethodPost, "/users", body), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	bad := `{"username":"alice","password":"secret1","email":"not-an-email","nickname":"Alice"}`
	err := h.Create(adminContext(e, jsonRequest(http.MethodPost, "/users", bad), httptest.NewRecorder()))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad email, got %v", err)
	}
}

func TestUserHandler_Update_PassesOptionalFields(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{
		updateFn: func(_ ports.Actor, id int64, in ports.UpdateUserInput) (*domain.Identity, error) {
			if id != 3 || in.Email != nil || in.Nickname == nil || *in.Nickname != "Neo" {
				t.Fatalf("unexpected update: id=%d %+v", id, in)
			}
			return &domain.Identity{ID: 3, Nickname: "Neo"}, nil
		},
	})

	req := jsonRequest(http.MethodPut, "/users/3", `{"nickname":"Neo"}`)
	rec := httptest.NewRecorder()
	c := adminContext(e, req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestUserHandler_DeleteAndToggle(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{
		deleteFn: func(actor ports.Actor, id int64) (*domain.Identity, error) {
			if id == actor.ID {
				return nil, domain.ErrInvalidInput
			}
			return &domain.Identity{ID: id, Username: "editor"}, nil
		},
		toggleFn: func(_ ports.Actor, id int64) (*domain.Identity, error) {
			return &domain.Identity{ID: id, IsActive: false}, nil
		},
	})

	withID := func(method, id string) (echo.Context, *httptest.ResponseRecorder) {
		rec := httptest.NewRecorder()
		c := adminContext(e, httptest.NewRequest(method, "/users/"+id, nil), rec)
		c.SetParamNames("id")
		c.SetParamValues(id)
		return c, rec
	}

	c, rec := withID(http.MethodDelete, "2")
	if err := h.Delete(c); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if msg := decodeEnvelope(t, rec)["message"]; msg != "User editor deleted successfully" {
		t.Fatalf("unexpected message %v", msg)
	}

	c, _ = withID(http.MethodDelete, "1")
	if err := h.Delete(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	c, _ = withID(http.MethodDelete, "abc")
	var he *echo.HTTPError
	if err := h.Delete(c); !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for a bad id, got %v", err)
	}

	c, rec = withID(http.MethodPut, "2")
	if err := h.ToggleStatus(c); err != nil {
		t.Fatalf("toggle error: %v", err)
	}
	resp := decodeEnvelope(t, rec)
	if resp["message"] != "User status changed to inactive" || resp["data"].(map[string]any)["is_active"] != false {
		t.Fatalf("unexpected toggle payload: %v", resp)
	}
}
