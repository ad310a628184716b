package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"wallapi/internal/auth"
	"wallapi/internal/model"
	"wallapi/internal/service"
)

// ClaimsLocalKey stores the verified *auth.Claims in Fiber's context locals.
const ClaimsLocalKey = "claims"

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Auth rejects requests without a valid bearer token with 401.
func Auth(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := parseBearer(c, tokens)
		if err != nil || claims == nil {
			return fiber.ErrUnauthorized
		}
		c.Locals(ClaimsLocalKey, claims)
		return c.Next()
	}
}

// OptionalAuth stores the claims of a valid bearer token and lets anonymous
// requests through. An invalid token is still a 401 so clients can sign in again.
func OptionalAuth(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := parseBearer(c, tokens)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		if claims != nil {
			c.Locals(ClaimsLocalKey, claims)
		}
		return c.Next()
	}
}

// UserLookup loads the stored state of an account.
type UserLookup interface {
	Get(ctx context.Context, id string) (*model.User, error)
}

// CurrentAccount reloads the signed-in account so role changes and
// deactivation apply before the session expires. Deleted or inactive
// accounts get 401; the token's role is replaced by the stored one.
// It must run after Auth.
func CurrentAccount(users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil {
			return fiber.ErrUnauthorized
		}
		u, err := users.Get(c.UserContext(), claims.UserID)
		if errors.Is(err, service.ErrNotFound) {
			return fiber.ErrUnauthorized
		}
		if err != nil {
			return err
		}
		if !u.IsActive {
			return fiber.ErrUnauthorized
		}
		fresh := *claims
		fresh.Role = u.Role
		c.Locals(ClaimsLocalKey, &fresh)
		return c.Next()
	}
}

// RequireRoles allows only the listed roles. It must run after Auth.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil {
			return fiber.ErrUnauthorized
		}
		for _, r := range roles {
			if claims.Role == r {
				return c.Next()
			}
		}
		return fiber.ErrForbidden
	}
}

// Claims returns the verified claims or nil for anonymous requests.
func Claims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(ClaimsLocalKey).(*auth.Claims)
	return claims
}

// UserID returns the signed-in user's id or "".
func UserID(c *fiber.Ctx) string {
	if claims := Claims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// parseBearer returns nil claims and no error when no token is sent.
func parseBearer(c *fiber.Ctx, tokens TokenParser) (*auth.Claims, error) {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if h == "" {
		return nil, nil
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, auth.ErrInvalidToken
	}
	return tokens.Parse(strings.TrimSpace(token))
}
