package store

import "context"

// UpsertChatSession writes a session's metadata and replaces its messages
// wholesale. The replace-all strategy trades write efficiency for the
// guarantee that the store never diverges from the in-memory message order.
func (s *Store) UpsertChatSession(ctx context.Context, upsert *UpsertChatSession) error {
	return s.driver.UpsertChatSession(ctx, upsert)
}

// ListChatSessions lists sessions matching the given filter, newest first.
func (s *Store) ListChatSessions(ctx context.Context, find *FindChatSession) ([]*ChatSession, error) {
	return s.driver.ListChatSessions(ctx, find)
}

// GetChatSession returns the first session matching the given filter.
func (s *Store) GetChatSession(ctx context.Context, find *FindChatSession) (*ChatSession, error) {
	list, err := s.driver.ListChatSessions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListChatMessages returns all messages for a session in insertion order.
func (s *Store) ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error) {
	return s.driver.ListChatMessages(ctx, find)
}

// DeleteChatSession deletes a session and all its messages.
func (s *Store) DeleteChatSession(ctx context.Context, sessionID string) error {
	return s.driver.DeleteChatSession(ctx, sessionID)
}
