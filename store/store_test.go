package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	mysqlcontainer "github.com/testcontainers/testcontainers-go/modules/mysql"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/store"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store/db/mysql"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store/db/postgres"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store/db/sqlite"
)

func TestStoreSQLite(t *testing.T) {
	t.Parallel()
	driver, err := sqlite.NewDriver(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })
	testStore(t, store.New(driver))
}

func TestStoreMySQL(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	t.Parallel()
	ctx := context.Background()

	ctr, err := mysqlcontainer.Run(ctx, "mysql:8.4",
		mysqlcontainer.WithDatabase("unai"),
		mysqlcontainer.WithUsername("unai"),
		mysqlcontainer.WithPassword("unai"),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	driver, err := mysql.NewDriver(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })
	testStore(t, store.New(driver))
}

func TestStorePostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	t.Parallel()
	ctx := context.Background()

	ctr, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("unai"),
		postgrescontainer.WithUsername("unai"),
		postgrescontainer.WithPassword("unai"),
		postgrescontainer.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	driver, err := postgres.NewDriver(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })
	testStore(t, store.New(driver))
}

// testStore is the dialect conformance suite: every driver must present the
// same behavior through the facade.
func testStore(t *testing.T, s *store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))
	// Idempotent re-migration.
	require.NoError(t, s.Migrate(ctx))

	user := createUser(t, s, "student@unai.ac.th")

	t.Run("users", func(t *testing.T) {
		assert.Greater(t, user.ID, int32(0))

		found, err := s.GetUser(ctx, &store.FindUser{Email: &user.Email})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, "uid-student@unai.ac.th", found.UID)

		missing := "nobody@unai.ac.th"
		found, err = s.GetUser(ctx, &store.FindUser{Email: &missing})
		require.NoError(t, err)
		assert.Nil(t, found)

		_, err = s.CreateUser(ctx, &store.User{UID: "other-uid", Email: user.Email, PasswordHash: "x"})
		assert.Error(t, err, "duplicate email must be rejected")
	})

	t.Run("session upsert and listing order", func(t *testing.T) {
		for i, id := range []string{"s-old", "s-mid", "s-new"} {
			require.NoError(t, s.UpsertChatSession(ctx, &store.UpsertChatSession{
				Session: &store.ChatSession{
					ID:        id,
					UserID:    user.ID,
					Title:     "New Chat",
					CreatedTs: int64(1700000000 + i),
				},
			}))
		}

		sessions, err := s.ListChatSessions(ctx, &store.FindChatSession{UserID: &user.ID})
		require.NoError(t, err)
		require.Len(t, sessions, 3)
		assert.Equal(t, "s-new", sessions[0].ID)
		assert.Equal(t, "s-old", sessions[2].ID)

		// Ties on created_ts fall back to id, descending.
		require.NoError(t, s.UpsertChatSession(ctx, &store.UpsertChatSession{
			Session: &store.ChatSession{ID: "s-tie", UserID: user.ID, Title: "tie", CreatedTs: 1700000002},
		}))
		sessions, err = s.ListChatSessions(ctx, &store.FindChatSession{UserID: &user.ID})
		require.NoError(t, err)
		assert.Equal(t, "s-tie", sessions[0].ID)
		assert.Equal(t, "s-new", sessions[1].ID)
	})

	t.Run("upsert updates in place", func(t *testing.T) {
		require.NoError(t, s.UpsertChatSession(ctx, &store.UpsertChatSession{
			Session: &store.ChatSession{
				ID: "s-new", UserID: user.ID, Title: "renamed", ThreadID: "t-1", CreatedTs: 1700000002,
			},
		}))
		got, err := s.GetChatSession(ctx, &store.FindChatSession{ID: strPtr("s-new")})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "renamed", got.Title)
		assert.Equal(t, "t-1", got.ThreadID)
	})

	t.Run("empty thread id round-trips as empty", func(t *testing.T) {
		got, err := s.GetChatSession(ctx, &store.FindChatSession{ID: strPtr("s-old")})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got.ThreadID)
	})

	t.Run("messages are replaced wholesale and kept in order", func(t *testing.T) {
		upsert := &store.UpsertChatSession{
			Session: &store.ChatSession{ID: "s-new", UserID: user.ID, Title: "renamed", ThreadID: "t-1", CreatedTs: 1700000002},
			Messages: []*store.ChatMessage{
				{SessionID: "s-new", Role: "user", Content: "first"},
				{SessionID: "s-new", Role: "assistant", Content: "second"},
			},
		}
		require.NoError(t, s.UpsertChatSession(ctx, upsert))
		// Saving again with a longer transcript must not duplicate rows.
		upsert.Messages = append(upsert.Messages,
			&store.ChatMessage{SessionID: "s-new", Role: "user", Content: "third"},
		)
		require.NoError(t, s.UpsertChatSession(ctx, upsert))

		msgs, err := s.ListChatMessages(ctx, &store.FindChatMessage{SessionID: "s-new"})
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, []string{"first", "second", "third"},
			[]string{msgs[0].Content, msgs[1].Content, msgs[2].Content})
	})

	t.Run("delete removes the session and its messages", func(t *testing.T) {
		require.NoError(t, s.DeleteChatSession(ctx, "s-new"))

		got, err := s.GetChatSession(ctx, &store.FindChatSession{ID: strPtr("s-new")})
		require.NoError(t, err)
		assert.Nil(t, got)

		msgs, err := s.ListChatMessages(ctx, &store.FindChatMessage{SessionID: "s-new"})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("sessions are scoped to their user", func(t *testing.T) {
		other := createUser(t, s, "other@unai.ac.th")
		sessions, err := s.ListChatSessions(ctx, &store.FindChatSession{UserID: &other.ID})
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})
}

func createUser(t *testing.T, s *store.Store, email string) *store.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), &store.User{
		UID:          fmt.Sprintf("uid-%s", email),
		Email:        email,
		PasswordHash: "bcrypt-hash",
	})
	require.NoError(t, err)
	return user
}

func strPtr(s string) *string {
	return &s
}
