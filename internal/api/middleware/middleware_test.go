package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/botlab/robot-access/internal/core/domain"
)

type stubResolver struct {
	fn func(ctx context.Context, token string) (*domain.Account, error)
}

func (s *stubResolver) CurrentIdentity(ctx context.Context, token string) (*domain.Account, error) {
	return s.fn(ctx, token)
}

func newContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func mustNotCall(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	resolver := &stubResolver{fn: func(_ context.Context, token string) (*domain.Account, error) {
		if token != "tok" {
			t.Fatalf("unexpected token %q", token)
		}
		return &domain.Account{Username: "alice", Role: domain.RoleStandard}, nil
	}}
	c, rec := newContext("Bearer tok")

	called := false
	handler := Auth(resolver)(func(c echo.Context) error {
		called = true
		if acc := Account(c); acc == nil || acc.Username != "alice" {
			t.Fatalf("account not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected next to run, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	resolver := &stubResolver{fn: func(context.Context, string) (*domain.Account, error) {
		return nil, domain.ErrSessionSuperseded
	}}

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"missing_header", "", domain.ErrInvalidToken},
		{"wrong_scheme", "Token abc", domain.ErrInvalidToken},
		{"superseded", "Bearer stale", domain.ErrSessionSuperseded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(tt.header)
			err := Auth(resolver)(mustNotCall(t))(c)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRequireManager(t *testing.T) {
	c, _ := newContext("")
	c.Set(AccountKey, &domain.Account{Username: "admin", Role: domain.RoleAdmin})
	called := false
	if err := RequireManager()(func(echo.Context) error { called = true; return nil })(c); err != nil || !called {
		t.Fatalf("manager should pass: %v", err)
	}

	c, _ = newContext("")
	c.Set(AccountKey, &domain.Account{Username: "alice", Role: domain.RoleStandard})
	if err := RequireManager()(mustNotCall(t))(c); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	c, _ = newContext("")
	if err := RequireManager()(mustNotCall(t))(c); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("anonymous caller must be refused, got %v", err)
	}
}

func TestRequireResource(t *testing.T) {
	start := time.Date(2026, time.April, 6, 10, 0, 0, 0, time.UTC)
	alice := &domain.Account{
		Username:      "alice",
		Role:          domain.RoleStandard,
		BoundResource: domain.ResourceROS,
		Window:        domain.Window{Start: start, End: start.Add(30 * time.Minute)},
	}

	tests := []struct {
		name     string
		param    string
		at       time.Time
		wantErr  error
		wantNext bool
	}{
		{"inside_window", "ros", start.Add(15 * time.Minute), nil, true},
		{"outside_window", "ros", start.Add(45 * time.Minute), domain.ErrOutsideWindow, false},
		{"wrong_resource", "iot", start.Add(15 * time.Minute), domain.ErrWrongResource, false},
		{"unknown_resource", "arm", start.Add(15 * time.Minute), domain.ErrInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext("")
			c.SetParamNames("resource")
			c.SetParamValues(tt.param)
			c.Set(AccountKey, alice)

			called := false
			mw := RequireResource(func() time.Time { return tt.at })
			err := mw(func(c echo.Context) error {
				called = true
				if c.Get(ResourceKey) != domain.Resource(tt.param) {
					t.Fatalf("resource not set")
				}
				return nil
			})(c)

			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if called != tt.wantNext {
				t.Fatalf("next called = %v", called)
			}
		})
	}
}

func TestDeviceKey(t *testing.T) {
	open := DeviceKey("")
	c, _ := newContext("")
	if err := open(func(echo.Context) error { return nil })(c); err != nil {
		t.Fatalf("empty key must disable the check: %v", err)
	}

	guarded := DeviceKey("k3y")
	c, _ = newContext("")
	c.Request().Header.Set(DeviceKeyHeader, "nope")
	if err := guarded(mustNotCall(t))(c); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	c, _ = newContext("")
	c.Request().Header.Set(DeviceKeyHeader, "k3y")
	called := false
	if err := guarded(func(echo.Context) error { called = true; return nil })(c); err != nil || !called {
		t.Fatalf("matching key should pass: %v", err)
	}
}
