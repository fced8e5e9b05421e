package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"zxyspace/internal/auth"
	"zxyspace/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUserRepo is an in-memory repository.UserRepository for middleware tests.
type stubUserRepo struct {
	users map[string]*models.User
}

func (r *stubUserRepo) Create(ctx context.Context, user *models.User) error { return nil }
func (r *stubUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}
func (r *stubUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.users[username], nil
}
func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}
func (r *stubUserRepo) List(ctx context.Context) ([]models.User, error)       { return nil, nil }
func (r *stubUserRepo) Update(ctx context.Context, user *models.User) error   { return nil }
func (r *stubUserRepo) Delete(ctx context.Context, id uint) error             { return nil }
func (r *stubUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, ok := r.users[username]
	return ok, nil
}
func (r *stubUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func setupAuthApp(t *testing.T) (*fiber.App, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService("middleware-test-secret", time.Hour)
	repo := &stubUserRepo{users: map[string]*models.User{
		"alice": {ID: 1, Username: "alice", Role: models.RoleUser},
		"root":  {ID: 2, Username: "root", Role: models.RoleAdmin},
	}}

	app := fiber.New()
	app.Use(Authenticate(tokens, repo))
	app.Get("/public", func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		return c.JSON(fiber.Map{"authenticated": ok, "username": p.Username})
	})
	app.Get("/private", RequireAuth(), func(c *fiber.Ctx) error {
		p, _ := PrincipalFrom(c)
		return c.JSON(fiber.Map{"username": p.Username})
	})
	app.Get("/admin", RequireAuth(), RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app, tokens
}

func doGet(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAuthenticate_ValidToken(t *testing.T) {
	app, tokens := setupAuthApp(t)
	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	resp := doGet(t, app, "/public", token)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "alice", body["username"])
}

func TestAuthenticate_BadTokenDegradesToAnonymous(t *testing.T) {
	app, tokens := setupAuthApp(t)

	other := auth.NewTokenService("some-other-secret", time.Hour)
	forged, err := other.Issue("alice")
	require.NoError(t, err)

	stale := auth.NewTokenService("middleware-test-secret", -time.Minute)
	expired, err := stale.Issue("alice")
	require.NoError(t, err)

	unknown, err := tokens.Issue("ghost")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "garbage",
		"forged":       forged,
		"expired":      expired,
		"unknown user": unknown,
	} {
		t.Run(name, func(t *testing.T) {
			resp := doGet(t, app, "/public", token)
			defer func() { _ = resp.Body.Close() }()
			require.Equal(t, http.StatusOK, resp.StatusCode, "public routes never reject on bad tokens")

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, false, body["authenticated"])
		})
	}
}

func TestRequireAuth_RejectsAnonymous(t *testing.T) {
	app, _ := setupAuthApp(t)

	resp := doGet(t, app, "/private", "")
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var details models.ErrorDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&details))
	assert.Equal(t, "unauthorized access", details.Message)
	assert.Equal(t, models.CodeUnauthorized, details.ErrorCode)
	assert.Equal(t, "/private", details.Path)
	assert.False(t, details.Timestamp.IsZero())
}

func TestRequireAuth_PassesAuthenticated(t *testing.T) {
	app, tokens := setupAuthApp(t)
	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	resp := doGet(t, app, "/private", token)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireAdmin(t *testing.T) {
	app, tokens := setupAuthApp(t)

	userToken, err := tokens.Issue("alice")
	require.NoError(t, err)
	adminToken, err := tokens.Issue("root")
	require.NoError(t, err)

	resp := doGet(t, app, "/admin", userToken)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var details models.ErrorDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&details))
	assert.Equal(t, models.CodeForbidden, details.ErrorCode)
	assert.Equal(t, "admin access required", details.Message)

	ok := doGet(t, app, "/admin", adminToken)
	defer func() { _ = ok.Body.Close() }()
	assert.Equal(t, http.StatusOK, ok.StatusCode)
}
