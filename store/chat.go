package store

// ChatSession is one persisted conversation's metadata row.
type ChatSession struct {
	ID        string
	UserID    int32
	Title     string
	ThreadID  string // empty means no external thread bound yet (NULL in the store)
	CreatedTs int64
}

// ChatMessage is a single message row within a session. ID is the insertion
// sequence and the only ordering key.
type ChatMessage struct {
	ID        int64
	SessionID string
	Role      string // "user" | "assistant"
	Content   string
	CreatedTs int64
}

// FindChatSession filters for ListChatSessions.
type FindChatSession struct {
	ID     *string
	UserID *int32
}

// FindChatMessage filters for ListChatMessages.
type FindChatMessage struct {
	SessionID string
}

// UpsertChatSession is the payload for UpsertChatSession: the session row to
// insert-or-update plus the full message list, which replaces whatever the
// store holds for the session.
type UpsertChatSession struct {
	Session  *ChatSession
	Messages []*ChatMessage
}
