package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/server/auth"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store/db/sqlite"
)

const testSecret = "test-secret"

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	driver, err := sqlite.NewDriver(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })
	require.NoError(t, driver.Migrate(ctx))
	return store.New(driver)
}

func createTestUser(t *testing.T, s *store.Store) *store.User {
	t.Helper()
	hash, err := auth.HashPassword("hunter2secret")
	require.NoError(t, err)
	user, err := s.CreateUser(context.Background(), &store.User{
		UID:          "test-uid",
		Email:        "student@unai.ac.th",
		PasswordHash: hash,
	})
	require.NoError(t, err)
	return user
}

func TestAuthenticateToUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("accepts a bearer token", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		user := createTestUser(t, s)
		token, err := auth.GenerateAccessToken(user, testSecret)
		require.NoError(t, err)

		a := auth.NewAuthenticator(s, testSecret)
		got, err := a.AuthenticateToUser(ctx, "Bearer "+token, "")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("accepts the access token cookie", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		user := createTestUser(t, s)
		token, err := auth.GenerateAccessToken(user, testSecret)
		require.NoError(t, err)

		a := auth.NewAuthenticator(s, testSecret)
		got, err := a.AuthenticateToUser(ctx, "", auth.AccessTokenCookieName+"="+token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("rejects a missing token", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		a := auth.NewAuthenticator(s, testSecret)
		_, err := a.AuthenticateToUser(ctx, "", "")
		require.Error(t, err)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		user := createTestUser(t, s)
		token, err := auth.GenerateAccessToken(user, "other-secret")
		require.NoError(t, err)

		a := auth.NewAuthenticator(s, testSecret)
		_, err = a.AuthenticateToUser(ctx, "Bearer "+token, "")
		require.Error(t, err)
	})

	t.Run("rejects a token for a deleted user", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		user := createTestUser(t, s)
		token, err := auth.GenerateAccessToken(&store.User{ID: user.ID + 1, Email: "ghost@unai.ac.th"}, testSecret)
		require.NoError(t, err)

		a := auth.NewAuthenticator(s, testSecret)
		_, err = a.AuthenticateToUser(ctx, "Bearer "+token, "")
		require.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()
	hash, err := auth.HashPassword("hunter2secret")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2secret", hash)
	assert.True(t, auth.CheckPassword(hash, "hunter2secret"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
}
