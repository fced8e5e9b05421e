package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"zxyspace/internal/config"
	"zxyspace/internal/database"
	"zxyspace/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApp(t *testing.T) *fiber.App {
	app, _ := setupAppWithDB(t)
	return app
}

func setupAppWithDB(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Port:            "8080",
		Env:             "test",
		JWTSecret:       "server-test-secret",
		JWTExpirationMS: 3600000,
	}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, raw
}

func registerAndLogin(t *testing.T, app *fiber.App, username string) (string, uint) {
	t.Helper()

	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var token models.TokenResponse
	require.NoError(t, json.Unmarshal(raw, &token))
	require.NotEmpty(t, token.Token)
	return token.Token, token.ID
}

func TestAuthFlow(t *testing.T) {
	app := setupApp(t)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, string(raw), "User registered successfully")

	// duplicate username
	resp, raw = doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "alice2@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var details models.ErrorDetails
	require.NoError(t, json.Unmarshal(raw, &details))
	assert.Equal(t, "Error: Username is already taken!", details.Message)

	// bad credentials
	resp, raw = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &details))
	assert.Equal(t, models.CodeUnauthorized, details.ErrorCode)

	// good credentials
	resp, raw = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var token models.TokenResponse
	require.NoError(t, json.Unmarshal(raw, &token))
	assert.Equal(t, "Bearer", token.Type)
	assert.Equal(t, "alice", token.Username)
	assert.Equal(t, "USER", token.Role)
}

func TestPostLifecycle(t *testing.T) {
	app := setupApp(t)
	token, userID := registerAndLogin(t, app, "alice")

	createURL := fmt.Sprintf("/api/posts/author/%d", userID)

	// anonymous create is rejected with the structured 401 body
	resp, raw := doJSON(t, app, http.MethodPost, createURL, "", map[string]any{
		"title": "Hello", "content": "World",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var details models.ErrorDetails
	require.NoError(t, json.Unmarshal(raw, &details))
	assert.Equal(t, "unauthorized access", details.Message)
	assert.Equal(t, models.CodeUnauthorized, details.ErrorCode)
	assert.Equal(t, createURL, details.Path)

	// authenticated create
	resp, raw = doJSON(t, app, http.MethodPost, createURL, token, map[string]any{
		"title":   "Hello Go",
		"excerpt": "short version",
		"content": "long form content",
		"tags":    []string{"go", "web"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.PostDTO
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, "alice", created.Author.Username)
	assert.Len(t, created.Tags, 2)
	assert.Equal(t, 0, created.Views)

	// detail read counts the view
	resp, raw = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", created.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail models.PostDTO
	require.NoError(t, json.Unmarshal(raw, &detail))
	assert.Equal(t, 1, detail.Views)

	// listing envelope
	resp, raw = doJSON(t, app, http.MethodGet, "/api/posts?page=0&size=10", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page models.PageResponse[models.PostSummaryDTO]
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, 1, page.TotalPages)
	assert.True(t, page.Last)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Hello Go", page.Content[0].Title)

	// like and unlike
	resp, raw = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", created.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &detail))
	assert.Equal(t, 1, detail.Likes)

	resp, raw = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/unlike", created.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &detail))
	assert.Equal(t, 0, detail.Likes)

	// partial update leaves everything else intact
	resp, raw = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/posts/%d", created.ID), token, map[string]any{
		"title": "Hello Go, Again",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &detail))
	assert.Equal(t, "Hello Go, Again", detail.Title)
	assert.Equal(t, "long form content", detail.Content)
	assert.Len(t, detail.Tags, 2)

	// delete
	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/posts/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", created.ID), "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &details))
	assert.Equal(t, models.CodeNotFound, details.ErrorCode)
}

func TestCommentEndpoints(t *testing.T) {
	app := setupApp(t)
	aliceToken, aliceID := registerAndLogin(t, app, "alice")
	bobToken, bobID := registerAndLogin(t, app, "bob")

	_, raw := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/author/%d", aliceID), aliceToken, map[string]any{
		"title": "Discussed", "content": "body",
	})
	var post models.PostDTO
	require.NoError(t, json.Unmarshal(raw, &post))

	// bob comments as himself
	resp, raw := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/comments/post/%d/user/%d", post.ID, bobID), bobToken,
		map[string]string{"content": "great post"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment models.CommentDTO
	require.NoError(t, json.Unmarshal(raw, &comment))
	assert.Equal(t, "bob", comment.User.Username)

	// bob cannot comment as alice
	resp, raw = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/comments/post/%d/user/%d", post.ID, aliceID), bobToken,
		map[string]string{"content": "spoofed"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	var details models.ErrorDetails
	require.NoError(t, json.Unmarshal(raw, &details))
	assert.Equal(t, models.CodeForbidden, details.ErrorCode)

	// listing and count
	resp, raw = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/comments/post/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var comments []models.CommentDTO
	require.NoError(t, json.Unmarshal(raw, &comments))
	assert.Len(t, comments, 1)

	resp, raw = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/comments/count/post/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var count map[string]int64
	require.NoError(t, json.Unmarshal(raw, &count))
	assert.Equal(t, int64(1), count["count"])

	// alice cannot edit bob's comment, but can't be stopped from reading it
	resp, _ = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/comments/%d", comment.ID), aliceToken,
		map[string]string{"content": "rewritten"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/comments/%d", comment.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTaxonomyEndpoints(t *testing.T) {
	app := setupApp(t)
	token, _ := registerAndLogin(t, app, "alice")

	resp, raw := doJSON(t, app, http.MethodPost, "/api/categories/", token, map[string]string{
		"name": "Technology", "description": "All things tech",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var category models.CategoryDTO
	require.NoError(t, json.Unmarshal(raw, &category))

	resp, raw = doJSON(t, app, http.MethodPost, "/api/categories/", token, map[string]string{
		"name": "Technology",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var details models.ErrorDetails
	require.NoError(t, json.Unmarshal(raw, &details))
	assert.Equal(t, models.CodeAlreadyExists, details.ErrorCode)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/categories/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []models.CategoryDTO
	require.NoError(t, json.Unmarshal(raw, &categories))
	assert.Len(t, categories, 1)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/categories/name/Technology", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &category))
	assert.Equal(t, "Technology", category.Name)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/categories/name/Nope", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/tags/", token, map[string]string{"name": "go"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/tags/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tags []models.TagDTO
	require.NoError(t, json.Unmarshal(raw, &tags))
	assert.Len(t, tags, 1)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/tags/name/go", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tag models.TagDTO
	require.NoError(t, json.Unmarshal(raw, &tag))
	assert.Equal(t, "go", tag.Name)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/tags/", token, map[string]string{"name": "testing"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// batch lookups skip unknown values
	resp, raw = doJSON(t, app, http.MethodGet, "/api/tags/names?names=go,testing,missing", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &tags))
	assert.Len(t, tags, 2)

	resp, raw = doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/tags/ids?ids=%d,%d", tags[0].ID, tags[1].ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &tags))
	assert.Len(t, tags, 2)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/tags/ids?ids=abc", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchAndFeeds(t *testing.T) {
	app := setupApp(t)
	token, userID := registerAndLogin(t, app, "alice")

	for _, title := range []string{"Go Concurrency", "Gardening Tips", "More Go Tricks"} {
		resp, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/author/%d", userID), token, map[string]any{
			"title": title, "content": "content about " + title,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, raw := doJSON(t, app, http.MethodGet, "/api/posts/search?keyword=go", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page models.PageResponse[models.PostSummaryDTO]
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.Equal(t, int64(3), page.TotalElements, "matches in title or content, case-insensitive")

	resp, raw = doJSON(t, app, http.MethodGet, "/api/posts/search?keyword=concurrency", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.Equal(t, int64(1), page.TotalElements)

	// missing keyword is a validation error
	resp, raw = doJSON(t, app, http.MethodGet, "/api/posts/search", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var details models.ErrorDetails
	require.NoError(t, json.Unmarshal(raw, &details))
	assert.Equal(t, models.CodeValidation, details.ErrorCode)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/posts/recent?limit=2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var feed []models.PostSummaryDTO
	require.NoError(t, json.Unmarshal(raw, &feed))
	require.Len(t, feed, 2)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/posts/popular", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &feed))
	assert.Len(t, feed, 3)
}

func TestUserEndpoints(t *testing.T) {
	app, db := setupAppWithDB(t)
	aliceToken, aliceID := registerAndLogin(t, app, "alice")
	_, bobID := registerAndLogin(t, app, "bob")

	// availability checks are public
	resp, raw := doJSON(t, app, http.MethodGet, "/api/users/check/username/alice", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var check map[string]bool
	require.NoError(t, json.Unmarshal(raw, &check))
	assert.False(t, check["available"])

	resp, raw = doJSON(t, app, http.MethodGet, "/api/users/check/username/carol", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &check))
	assert.True(t, check["available"])

	resp, raw = doJSON(t, app, http.MethodGet, "/api/users/check/email/alice@example.com", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &check))
	assert.False(t, check["available"])

	// profile lookup requires auth
	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d", bobID), "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, raw = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d", bobID), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user models.UserDTO
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.Equal(t, "bob", user.Username)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/users/email/bob@example.com", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.Equal(t, bobID, user.ID)

	// profile update is owner-only
	resp, _ = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d", bobID), aliceToken, map[string]string{
		"bio": "not yours",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d", aliceID), aliceToken, map[string]string{
		"bio": "gopher",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.Equal(t, "gopher", user.Bio)

	// deleting accounts is admin-only
	resp, raw = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d", bobID), aliceToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	var details models.ErrorDetails
	require.NoError(t, json.Unmarshal(raw, &details))
	assert.Equal(t, models.CodeForbidden, details.ErrorCode)

	// creating accounts is admin-only too
	payload := map[string]string{
		"username": "carol", "email": "carol@example.com", "password": "secret1", "role": "ADMIN",
	}
	resp, _ = doJSON(t, app, http.MethodPost, "/api/users/", aliceToken, payload)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", aliceID).
		Update("role", models.RoleAdmin).Error)

	resp, raw = doJSON(t, app, http.MethodPost, "/api/users/", aliceToken, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.Equal(t, "carol", user.Username)
	assert.Equal(t, "ADMIN", user.Role)
}

func TestHealthEndpoints(t *testing.T) {
	app := setupApp(t)

	resp, raw := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"status":"up"`)

	resp, raw = doJSON(t, app, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Status string `json:"status"`
		Checks struct {
			Database string `json:"database"`
			Redis    string `json:"redis"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks.Database)
	assert.Equal(t, "unavailable", body.Checks.Redis)
}

func TestInvalidIDsRejected(t *testing.T) {
	app := setupApp(t)

	for _, path := range []string{
		"/api/posts/abc",
		"/api/posts/0",
		"/api/comments/-1",
		"/api/categories/xyz",
	} {
		resp, raw := doJSON(t, app, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		var details models.ErrorDetails
		require.NoError(t, json.Unmarshal(raw, &details))
		assert.Equal(t, models.CodeValidation, details.ErrorCode)
	}
}
