package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"zxyspace/internal/auth"
	"zxyspace/internal/models"
	"zxyspace/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// principalLocal is the Fiber locals key under which the authenticated
// principal is stored for the remainder of request processing.
const principalLocal = "principal"

const bearerPrefix = "Bearer "

// Authenticate returns middleware that resolves the bearer token on each
// request. It never aborts the pipeline: any failure degrades to anonymous
// access and the route-level gate decides whether that is acceptable.
func Authenticate(tokens *auth.TokenService, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return c.Next()
		}
		raw := header[len(bearerPrefix):]

		if err := tokens.ValidateFormat(raw); err != nil {
			logTokenRejection(c, err)
			return c.Next()
		}

		// Format and signature are good; now bind the claimed subject to a
		// known principal before trusting the identity.
		subject, err := tokens.Subject(raw)
		if err != nil {
			logTokenRejection(c, err)
			return c.Next()
		}

		user, err := users.GetByUsername(c.Context(), subject)
		if err != nil || user == nil {
			return c.Next()
		}

		if !tokens.Validate(raw, user.Username) {
			return c.Next()
		}

		c.Locals(principalLocal, auth.Principal{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		})
		ctx := context.WithValue(c.UserContext(), UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// PrincipalFrom returns the authenticated principal for the request, if any.
func PrincipalFrom(c *fiber.Ctx) (auth.Principal, bool) {
	p, ok := c.Locals(principalLocal).(auth.Principal)
	return p, ok
}

// RequireAuth rejects anonymous requests with a 401 structured body. It must
// run after Authenticate.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFrom(c); !ok {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("unauthorized access"))
		}
		return c.Next()
	}
}

// RequireAdmin rejects requests whose principal does not hold the admin role.
// It must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("unauthorized access"))
		}
		if !p.IsAdmin() {
			return models.RespondWithError(c,
				models.NewForbiddenError("admin access required"))
		}
		return c.Next()
	}
}

func logTokenRejection(c *fiber.Ctx, err error) {
	reason := "invalid token"
	switch {
	case errors.Is(err, auth.ErrEmptyToken):
		reason = "empty token"
	case errors.Is(err, auth.ErrBadSignature):
		reason = "bad signature"
	case errors.Is(err, auth.ErrExpired):
		reason = "expired token"
	case errors.Is(err, auth.ErrUnsupported):
		reason = "unsupported token type"
	case errors.Is(err, auth.ErrMalformed):
		reason = "malformed token"
	}
	Logger.WarnContext(c.UserContext(), "rejected bearer token",
		slog.String("reason", reason),
		slog.String("path", c.Path()),
	)
}
