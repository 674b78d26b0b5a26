package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/chat"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store/db/sqlite"
)

func newSQLStore(t *testing.T) *chat.SQLStore {
	t.Helper()
	ctx := context.Background()
	driver, err := sqlite.NewDriver(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })
	require.NoError(t, driver.Migrate(ctx))
	return chat.NewSQLStore(store.New(driver))
}

func TestSQLStore_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newSQLStore(t)

	sess := &chat.Session{
		ID:        "sess-1",
		Title:     "What is UNAI?",
		ThreadID:  "t-123",
		CreatedAt: time.Unix(1700000000, 0),
		Messages: []chat.Message{
			{Role: chat.RoleUser, Content: "What is UNAI?"},
			{Role: chat.RoleAssistant, Content: "A university program."},
		},
	}
	require.NoError(t, s.Save(ctx, 1, sess))

	loaded, err := s.LoadAll(ctx, 1)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	got := loaded["sess-1"]
	require.NotNil(t, got)
	assert.Equal(t, "What is UNAI?", got.Title)
	assert.Equal(t, "t-123", got.ThreadID)
	assert.Equal(t, int64(1700000000), got.CreatedAt.Unix())
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chat.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "A university program.", got.Messages[1].Content)
}

func TestSQLStore_SaveReplacesMessages(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newSQLStore(t)

	sess := &chat.Session{ID: "sess-1", Title: "New Chat", CreatedAt: time.Now()}
	sess.Append(chat.RoleUser, "first")
	sess.Append(chat.RoleAssistant, "reply one")
	require.NoError(t, s.Save(ctx, 1, sess))

	sess.Append(chat.RoleUser, "second")
	sess.Append(chat.RoleAssistant, "reply two")
	sess.Title = "first"
	require.NoError(t, s.Save(ctx, 1, sess))

	loaded, err := s.LoadAll(ctx, 1)
	require.NoError(t, err)
	got := loaded["sess-1"]
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Title)
	require.Len(t, got.Messages, 4, "save replaces, never duplicates")
	assert.Equal(t, "first", got.Messages[0].Content)
	assert.Equal(t, "reply two", got.Messages[3].Content)
}

func TestSQLStore_EmptyThreadLoadsEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newSQLStore(t)

	sess := &chat.Session{ID: "sess-1", Title: "New Chat", CreatedAt: time.Now()}
	require.NoError(t, s.Save(ctx, 1, sess))

	loaded, err := s.LoadAll(ctx, 1)
	require.NoError(t, err)
	got := loaded["sess-1"]
	require.NotNil(t, got)
	assert.Empty(t, got.ThreadID, "NULL thread_id round-trips as empty string")
	assert.Empty(t, got.Messages)
}

func TestSQLStore_ScopedByUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newSQLStore(t)

	require.NoError(t, s.Save(ctx, 1, &chat.Session{ID: "mine", Title: "mine", CreatedAt: time.Now()}))
	require.NoError(t, s.Save(ctx, 2, &chat.Session{ID: "theirs", Title: "theirs", CreatedAt: time.Now()}))

	loaded, err := s.LoadAll(ctx, 1)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Contains(t, loaded, "mine")
}

func TestSQLStore_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newSQLStore(t)

	sess := &chat.Session{ID: "sess-1", Title: "New Chat", CreatedAt: time.Now()}
	sess.Append(chat.RoleUser, "hello")
	sess.Append(chat.RoleAssistant, "hi")
	require.NoError(t, s.Save(ctx, 1, sess))
	require.NoError(t, s.Delete(ctx, "sess-1"))

	loaded, err := s.LoadAll(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
