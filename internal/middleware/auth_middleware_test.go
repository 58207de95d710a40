package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"flashcards/internal/middleware"
	"flashcards/internal/models"
	"flashcards/internal/repositories"
	"flashcards/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// guardEnv wires the auth middleware against an in-memory user repository
// with two probe routes behind the guards.
type guardEnv struct {
	app      *fiber.App
	userRepo *repositories.MockUserRepository
	auth     *services.AuthService
}

func setupGuards(t *testing.T) *guardEnv {
	t.Helper()

	userRepo := repositories.NewMockUserRepository()
	authService := services.NewAuthService(userRepo, nil, "test_jwt_secret", 0)

	app := fiber.New()
	app.Get("/greeting", middleware.OptionalUser(authService), func(c *fiber.Ctx) error {
		if user := middleware.CurrentUser(c); user != nil {
			return c.JSON(fiber.Map{"greeting": "hello " + user.Username})
		}
		return c.JSON(fiber.Map{"greeting": "hello stranger"})
	})
	protected := app.Group("", middleware.AuthRequired(authService))
	protected.Get("/whoami", func(c *fiber.Ctx) error {
		user := middleware.CurrentUser(c)
		return c.JSON(fiber.Map{"username": user.Username})
	})
	admin := protected.Group("", middleware.AdminRequired())
	admin.Get("/admin-only", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return &guardEnv{app: app, userRepo: userRepo, auth: authService}
}

// loginAs creates an account and returns a token for it.
func (e *guardEnv) loginAs(t *testing.T, username string, admin bool) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, e.userRepo.Create(&models.User{
		Username: username,
		Password: string(hash),
		IsActive: true,
		IsAdmin:  admin,
	}))
	token, err := e.auth.LoginUser(username, "password123")
	require.NoError(t, err)
	return token
}

func TestAuthRequired(t *testing.T) {
	env := setupGuards(t)
	token := env.loginAs(t, "alice", false)

	// No token at all
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get(fiber.HeaderWWWAuthenticate))
	resp.Body.Close()

	// Malformed token
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// A bare Authorization header without the Bearer scheme is not a token
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", token)
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Valid bearer token
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Valid session cookie
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Cookie", middleware.SessionCookie+"="+token)
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAuthRequiredRejectsDeactivatedUser(t *testing.T) {
	env := setupGuards(t)
	token := env.loginAs(t, "alice", false)

	user, err := env.userRepo.GetByUsername("alice")
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, env.userRepo.Update(user))

	// The token is still cryptographically valid, but the account is gone
	// from the session resolver's point of view
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestOptionalUser(t *testing.T) {
	env := setupGuards(t)
	token := env.loginAs(t, "alice", false)

	readGreeting := func(req *http.Request) string {
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer resp.Body.Close()
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body["greeting"]
	}

	// Anonymous and invalid sessions pass through as "no user"
	req := httptest.NewRequest(http.MethodGet, "/greeting", nil)
	assert.Equal(t, "hello stranger", readGreeting(req))

	req = httptest.NewRequest(http.MethodGet, "/greeting", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	assert.Equal(t, "hello stranger", readGreeting(req))

	// A valid session is resolved without being required
	req = httptest.NewRequest(http.MethodGet, "/greeting", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, "hello alice", readGreeting(req))
}

func TestAdminRequired(t *testing.T) {
	env := setupGuards(t)
	userToken := env.loginAs(t, "alice", false)
	adminToken := env.loginAs(t, "root", true)

	// A recognized non-admin gets 403, not 401
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
