package service

import (
	"context"
	"testing"

	"zxyspace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterAndLogin(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	err := env.users.Register(ctx, RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	token, err := env.users.Login(ctx, LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, "Bearer", token.Type)
	assert.Equal(t, "alice", token.Username)
	assert.Equal(t, string(models.RoleUser), token.Role)
}

func TestUserService_RegisterDuplicates(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	require.NoError(t, env.users.Register(ctx, RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "secret1",
	}))

	err := env.users.Register(ctx, RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "secret1",
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, "Error: Username is already taken!", appErr.Message)

	err = env.users.Register(ctx, RegisterRequest{
		Username: "alice2", Email: "alice@example.com", Password: "secret1",
	})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Error: Email is already in use!", appErr.Message)
}

func TestUserService_Create(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created, err := env.users.Create(ctx, CreateUserRequest{
		Username: "carol", Email: "carol@example.com", Password: "secret1", Role: "ADMIN",
	})
	require.NoError(t, err)
	assert.Equal(t, "carol", created.Username)
	assert.Equal(t, "ADMIN", created.Role)

	// empty role defaults to USER
	created, err = env.users.Create(ctx, CreateUserRequest{
		Username: "dave", Email: "dave@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "USER", created.Role)

	_, err = env.users.Create(ctx, CreateUserRequest{
		Username: "erin", Email: "erin@example.com", Password: "secret1", Role: "ROOT",
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "role")

	_, err = env.users.Create(ctx, CreateUserRequest{
		Username: "carol", Email: "again@example.com", Password: "secret1",
	})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Error: Username is already taken!", appErr.Message)
}

func TestUserService_RegisterValidation(t *testing.T) {
	env := setupEnv(t)

	err := env.users.Register(context.Background(), RegisterRequest{
		Username: "a!",
		Email:    "nope",
		Password: "x",
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "username")
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "password")
}

func TestUserService_LoginFailures(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice", models.RoleUser)

	var appErr *models.AppError

	_, err := env.users.Login(ctx, LoginRequest{Username: "alice", Password: "wrong-pass"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeUnauthorized, appErr.Code)

	_, err = env.users.Login(ctx, LoginRequest{Username: "ghost", Password: "secret1"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeUnauthorized, appErr.Code)
	assert.Equal(t, "Invalid username or password", appErr.Message)
}

func TestUserService_UpdateOwnership(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", models.RoleUser)
	bob := env.createUser(t, "bob", models.RoleUser)
	admin := env.createUser(t, "root", models.RoleAdmin)

	bio := "Writing about Go"
	_, err := env.users.Update(ctx, principalFor(bob), alice.ID, UpdateUserRequest{Bio: &bio})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeForbidden, appErr.Code)

	updated, err := env.users.Update(ctx, principalFor(alice), alice.ID, UpdateUserRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)

	first := "Alice"
	updated, err = env.users.Update(ctx, principalFor(admin), alice.ID, UpdateUserRequest{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, first, updated.FirstName)
	assert.Equal(t, bio, updated.Bio, "fields not in the request stay untouched")
}

func TestUserService_Availability(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice", models.RoleUser)

	free, err := env.users.UsernameAvailable(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = env.users.UsernameAvailable(ctx, "carol")
	require.NoError(t, err)
	assert.True(t, free)

	free, err = env.users.EmailAvailable(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, free)
}
