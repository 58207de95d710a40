package middleware

import (
	"log"
	"strings"

	"flashcards/internal/models"
	"flashcards/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie carrying the session token. The cookie stores
// the raw token; the "Bearer " prefix belongs to the Authorization header
// framing only.
const SessionCookie = "access_token"

// userLocalKey is the fiber.Ctx locals key the resolved user is stored under.
const userLocalKey = "current_user"

// extractToken pulls the session token out of a request, preferring the
// Authorization header over the cookie. Returns "" when no token is present.
func extractToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	cookie := c.Cookies(SessionCookie)
	// Older clients stored the cookie with the header framing included;
	// strip it so they are not locked out.
	return strings.TrimPrefix(cookie, "Bearer ")
}

// AuthRequired is a Fiber middleware that resolves the session token to an
// active user. A missing token and an invalid one both end in 401, but with
// distinct messages so the client knows whether to prompt for login or to
// refresh an expired session. The WWW-Authenticate hint is set either way.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}

		user, err := authService.CurrentUser(tokenString)
		if err != nil {
			log.Printf("Session resolution failed: %v", err)
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired session",
			})
		}

		// Store the resolved user in the Fiber context for subsequent handlers
		c.Locals(userLocalKey, user)
		c.Locals("user_id", user.ID)
		c.Locals("username", user.Username)

		return c.Next()
	}
}

// AdminRequired gates a route behind the admin flag. It must be composed
// after AuthRequired; a valid non-admin identity gets 403, never 401.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		if !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin privileges required",
			})
		}
		return c.Next()
	}
}

// OptionalUser resolves the session if one is present but never rejects the
// request. Handlers that only need a presence check read CurrentUser and
// treat nil as "no session".
func OptionalUser(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString := extractToken(c); tokenString != "" {
			if user, err := authService.CurrentUser(tokenString); err == nil {
				c.Locals(userLocalKey, user)
			}
		}
		return c.Next()
	}
}

// CurrentUser returns the user resolved by AuthRequired or OptionalUser, or
// nil if the request carries no valid session.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalKey).(*models.User)
	return user
}
