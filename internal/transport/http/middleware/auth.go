package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"github.com/taskboard/backend/internal/transport/http/dto"
)

const callerKey = "caller"

// TokenParser turns a bearer token into the identity it was issued for.
type TokenParser interface {
	Parse(token string) (domain.Caller, error)
}

func bearerToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller in the request locals.
func Authenticate(tokens TokenParser, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "missing bearer token",
			})
		}

		caller, err := tokens.Parse(token)
		if err != nil {
			log.Warnw("auth_token_rejected", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "invalid or expired token",
			})
		}

		c.Locals(callerKey, caller)
		return c.Next()
	}
}

// RequireRole must run after Authenticate.
func RequireRole(role domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := CallerFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "unauthorized",
			})
		}
		if caller.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: "forbidden",
			})
		}
		return c.Next()
	}
}

func CallerFrom(c *fiber.Ctx) (domain.Caller, bool) {
	caller, ok := c.Locals(callerKey).(domain.Caller)
	return caller, ok
}
