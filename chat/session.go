package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/i18n"
)

// Role identifies who authored a message. The model knows only the two
// conversational roles; system/tool turns never reach the transcript.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn half within a session. Content is stored and
// returned verbatim.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is one logical conversation: an ordered transcript plus the
// external provider's thread handle, once one has been bound.
type Session struct {
	// ID is generated client-side and immutable once created.
	ID    string `json:"id"`
	Title string `json:"title"`
	// CreatedAt is the sole sort key for session listing and is never mutated.
	CreatedAt time.Time `json:"createdAt"`
	// ThreadID is empty until the first successful provider call, then fixed
	// for the session's lifetime.
	ThreadID string    `json:"threadId,omitempty"`
	Messages []Message `json:"messages"`
}

// NewSession returns a fresh, empty session with the localized default title.
func NewSession(locale string) *Session {
	return &Session{
		ID:        uuid.New().String(),
		Title:     i18n.T(locale, "new_chat"),
		CreatedAt: time.Now(),
	}
}

// Append adds a message to the transcript. The transcript is append-only
// during normal operation; insertion order is the persistence ordering key.
func (s *Session) Append(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}
