package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallapi/internal/auth"
	"wallapi/internal/model"
	"wallapi/internal/service"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString(GetRequestID(c))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader, buf.String())
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, existingID, buf.String())
	})

	t.Run("should replace oversized request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("a", 200))

		resp, _ := app.Test(req)
		assert.Len(t, resp.Header.Get(RequestIDHeader), 36)
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	loc := time.UTC

	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, loc))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	req := httptest.NewRequest("GET", "/test?q=1", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var logData map[string]any
	err := json.Unmarshal(buf.Bytes(), &logData)
	require.NoError(t, err)

	assert.Equal(t, "http_request", logData["msg"])
	assert.Equal(t, "info", logData["level"])
	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.NotNil(t, logData["latency"])
	assert.NotEmpty(t, logData["ts"])
}

func TestLogger_ErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(LoggerWithWriter(&buf, time.UTC))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.ErrServiceUnavailable
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/boom", nil))
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, "error", logData["level"])
	assert.Equal(t, float64(fiber.StatusServiceUnavailable), logData["status"])
}

func newTokens(t *testing.T) *auth.Manager {
	t.Helper()
	m, err := auth.NewManager("middleware-secret")
	require.NoError(t, err)
	return m
}

func bearer(t *testing.T, tokens *auth.Manager, role string) string {
	t.Helper()
	sess, err := tokens.Issue(&model.User{ID: "u-1", Email: "a@example.com", Role: role}, time.Hour)
	require.NoError(t, err)
	return "Bearer " + sess.Token
}

func TestAuth(t *testing.T) {
	tokens := newTokens(t)
	app := fiber.New()
	app.Get("/me", Auth(tokens), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})
	app.Get("/admin", Auth(tokens), RequireRoles(model.RoleAdmin, model.RoleEditor), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/maybe", OptionalAuth(tokens), func(c *fiber.Ctx) error {
		return c.SendString("user=" + UserID(c))
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
		body   string
	}{
		{name: "missing token", path: "/me", want: fiber.StatusUnauthorized},
		{name: "malformed header", path: "/me", header: "Token abc", want: fiber.StatusUnauthorized},
		{name: "garbage token", path: "/me", header: "Bearer abc.def.ghi", want: fiber.StatusUnauthorized},
		{name: "valid token", path: "/me", header: bearer(t, tokens, model.RoleCustomer), want: fiber.StatusOK, body: "u-1"},
		{name: "customer on admin route", path: "/admin", header: bearer(t, tokens, model.RoleCustomer), want: fiber.StatusForbidden},
		{name: "editor on admin route", path: "/admin", header: bearer(t, tokens, model.RoleEditor), want: fiber.StatusNoContent},
		{name: "anonymous optional", path: "/maybe", want: fiber.StatusOK, body: "user="},
		{name: "signed-in optional", path: "/maybe", header: bearer(t, tokens, model.RoleCustomer), want: fiber.StatusOK, body: "user=u-1"},
		{name: "bad token optional", path: "/maybe", header: "Bearer nope", want: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.body != "" {
				buf := new(bytes.Buffer)
				buf.ReadFrom(resp.Body)
				assert.Equal(t, tt.body, buf.String())
			}
		})
	}
}

type lookupFunc func(ctx context.Context, id string) (*model.User, error)

func (f lookupFunc) Get(ctx context.Context, id string) (*model.User, error) { return f(ctx, id) }

func TestCurrentAccount(t *testing.T) {
	tokens := newTokens(t)

	tests := []struct {
		name   string
		stored *model.User
		err    error
		want   int
	}{
		{name: "unchanged editor", stored: &model.User{Role: model.RoleEditor, IsActive: true}, want: fiber.StatusOK},
		{name: "demoted to customer", stored: &model.User{Role: model.RoleCustomer, IsActive: true}, want: fiber.StatusForbidden},
		{name: "deactivated", stored: &model.User{Role: model.RoleEditor}, want: fiber.StatusUnauthorized},
		{name: "deleted", err: service.ErrNotFound, want: fiber.StatusUnauthorized},
		{name: "lookup failure", err: errors.New("db down"), want: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			users := lookupFunc(func(_ context.Context, id string) (*model.User, error) {
				gotID = id
				return tt.stored, tt.err
			})
			app := fiber.New()
			app.Get("/panel", Auth(tokens), CurrentAccount(users), RequireRoles(model.RoleAdmin, model.RoleEditor),
				func(c *fiber.Ctx) error { return c.SendString(Claims(c).Role) })

			req := httptest.NewRequest("GET", "/panel", nil)
			req.Header.Set(fiber.HeaderAuthorization, bearer(t, tokens, model.RoleEditor))
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Equal(t, "u-1", gotID)
		})
	}
}

func TestLanguage(t *testing.T) {
	app := fiber.New()
	app.Use(Language())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(Lang(c))
	})

	tests := []struct {
		query  string
		header string
		want   string
	}{
		{want: "tr"},
		{header: "en-US,en;q=0.9", want: "en"},
		{header: "de-DE", want: "tr"},
		{header: "en", query: "tr", want: "tr"},
		{query: "en", want: "en"},
	}
	for _, tt := range tests {
		url := "/"
		if tt.query != "" {
			url += "?lang=" + tt.query
		}
		req := httptest.NewRequest("GET", url, nil)
		if tt.header != "" {
			req.Header.Set(fiber.HeaderAcceptLanguage, tt.header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, tt.want, buf.String(), "%+v", tt)
		assert.Equal(t, tt.want, resp.Header.Get(fiber.HeaderContentLanguage))
	}
}
