package chat

import (
	"context"
	"time"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/store"
)

// SQLStore adapts the persistence facade to the manager's Store interface.
type SQLStore struct {
	store *store.Store
}

// NewSQLStore wraps the given store.
func NewSQLStore(s *store.Store) *SQLStore {
	return &SQLStore{store: s}
}

// LoadAll fetches every session owned by the user, with messages in
// insertion order.
func (s *SQLStore) LoadAll(ctx context.Context, userID int32) (map[string]*Session, error) {
	rows, err := s.store.ListChatSessions(ctx, &store.FindChatSession{UserID: &userID})
	if err != nil {
		return nil, err
	}
	sessions := make(map[string]*Session, len(rows))
	for _, row := range rows {
		sess := &Session{
			ID:        row.ID,
			Title:     row.Title,
			ThreadID:  row.ThreadID,
			CreatedAt: time.Unix(row.CreatedTs, 0),
		}
		msgs, err := s.store.ListChatMessages(ctx, &store.FindChatMessage{SessionID: row.ID})
		if err != nil {
			return nil, err
		}
		for _, m := range msgs {
			sess.Messages = append(sess.Messages, Message{Role: Role(m.Role), Content: m.Content})
		}
		sessions[sess.ID] = sess
	}
	return sessions, nil
}

// Save upserts the session row and replaces its messages wholesale.
func (s *SQLStore) Save(ctx context.Context, userID int32, sess *Session) error {
	upsert := &store.UpsertChatSession{
		Session: &store.ChatSession{
			ID:        sess.ID,
			UserID:    userID,
			Title:     sess.Title,
			ThreadID:  sess.ThreadID,
			CreatedTs: sess.CreatedAt.Unix(),
		},
	}
	for _, m := range sess.Messages {
		upsert.Messages = append(upsert.Messages, &store.ChatMessage{
			SessionID: sess.ID,
			Role:      string(m.Role),
			Content:   m.Content,
		})
	}
	return s.store.UpsertChatSession(ctx, upsert)
}

// Delete removes the session and, through the store, its messages.
func (s *SQLStore) Delete(ctx context.Context, sessionID string) error {
	return s.store.DeleteChatSession(ctx, sessionID)
}
