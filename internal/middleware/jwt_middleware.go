package middleware

import (
	"errors"
	"strings"

	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type localsKey int

const (
	userIDKey localsKey = iota
	usernameKey
)

const (
	msgMissingAuthHeader = "Authorization header is required"
	msgAuthScheme        = "Authorization header format must be 'Bearer <token>'"
)

var errAnonymousToken = errors.New("token does not name a user")

// AuthRequired rejects requests without a valid bearer token. The token's
// user is exposed to later handlers through UserID and Username, and to
// services through the request's user context.
func AuthRequired(authService *services.AuthService, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, problem := bearerToken(c.Get(fiber.HeaderAuthorization))
		if problem != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": problem,
			})
		}

		claims, err := authService.ValidateToken(token)
		if err == nil && claimString(claims, "username") == "" {
			err = errAnonymousToken
		}
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Path()).Msg("JWT validation failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		username := claimString(claims, "username")
		c.Locals(userIDKey, claimString(claims, "user_id"))
		c.Locals(usernameKey, username)
		c.SetUserContext(services.WithActor(c.UserContext(), username))
		return c.Next()
	}
}

// UserID returns the id of the authenticated user, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

// Username returns the name of the authenticated user, or "" on public routes.
func Username(c *fiber.Ctx) string {
	name, _ := c.Locals(usernameKey).(string)
	return name
}

// bearerToken extracts the token from an Authorization header. problem is
// the client-facing reason when there is none.
func bearerToken(header string) (token, problem string) {
	if header == "" {
		return "", msgMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", msgAuthScheme
	}
	return token, ""
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}
