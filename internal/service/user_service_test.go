package service

import (
	"context"
	"testing"

	"tourdesk-backend/internal/repository"
	"tourdesk-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) UserService {
	t.Helper()
	env := newTestEnv(t)
	return NewUserService(repository.NewUserRepository(env.db))
}

func createTestUser(t *testing.T, users UserService) *UserResponse {
	t.Helper()
	user, err := users.CreateUser(context.Background(), CreateUserRequest{
		Username: "jordan",
		Email:    "jordan@example.com",
		Password: "secret123",
		Role:     "staff",
	})
	require.NoError(t, err)
	return user
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	users := newUserService(t)
	ctx := context.Background()
	createTestUser(t, users)

	_, err := users.CreateUser(ctx, CreateUserRequest{
		Username: "jordan",
		Email:    "other@example.com",
		Password: "secret123",
		Role:     "staff",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	_, err = users.CreateUser(ctx, CreateUserRequest{
		Username: "other",
		Email:    "jordan@example.com",
		Password: "secret123",
		Role:     "staff",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	users := newUserService(t)

	_, err := users.CreateUser(context.Background(), CreateUserRequest{
		Username: "jordan",
		Email:    "jordan@example.com",
		Password: "secret123",
		Role:     "superuser",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestLoginIssuesBothTokens(t *testing.T) {
	users := newUserService(t)
	ctx := context.Background()
	createTestUser(t, users)

	tokens, err := users.Login(ctx, LoginUserRequest{
		Email:    "jordan@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.Token)
	assert.NotEmpty(t, tokens.RefreshToken)

	_, err = users.Login(ctx, LoginUserRequest{
		Email:    "jordan@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestRefreshRotatesTheToken(t *testing.T) {
	users := newUserService(t)
	ctx := context.Background()
	createTestUser(t, users)

	tokens, err := users.Login(ctx, LoginUserRequest{
		Email:    "jordan@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	rotated, err := users.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.RefreshToken)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The old token is single-use.
	_, err = users.Refresh(ctx, tokens.RefreshToken)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestLogoutRevokesTheRefreshToken(t *testing.T) {
	users := newUserService(t)
	ctx := context.Background()
	createTestUser(t, users)

	tokens, err := users.Login(ctx, LoginUserRequest{
		Email:    "jordan@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, users.Logout(ctx, tokens.RefreshToken))

	_, err = users.Refresh(ctx, tokens.RefreshToken)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}
