// Package chat implements the session reconciliation core: an in-memory
// mapping of chat sessions kept consistent with a persistent store and with
// the external conversation provider's per-session threads.
package chat

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/i18n"
)

// providerTimeout bounds every provider call; expiry follows the
// provider-error path and never blocks the manager.
const providerTimeout = 30 * time.Second

// titleTokens is how many leading whitespace-delimited tokens of the first
// prompt become the auto-generated session title.
const titleTokens = 5

// Store is the persistence capability the manager needs. Implementations
// must return sessions newest-first-agnostic (the manager sorts) and must
// preserve message insertion order across Save/LoadAll round-trips.
type Store interface {
	LoadAll(ctx context.Context, userID int32) (map[string]*Session, error)
	Save(ctx context.Context, userID int32, s *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// Provider is the external conversation endpoint. Chat returns the reply
// and, when the call created a new thread, its identifier.
type Provider interface {
	Chat(ctx context.Context, prompt, threadID string) (reply, newThreadID string, err error)
	CreateThread(ctx context.Context) (string, error)
}

// Turn is the outcome of one prompt submission: exactly one user message and
// exactly one assistant message (error text counts as a valid reply).
type Turn struct {
	User      Message  `json:"user"`
	Assistant Message  `json:"assistant"`
	Session   *Session `json:"session"`
}

// Manager reconciles one user's sessions between memory, the store and the
// provider. All operations serialize on an internal mutex; the store and
// provider are injected so tests can substitute doubles. Returned sessions
// are snapshots taken under the lock, safe to read while other requests for
// the same user mutate the live state.
type Manager struct {
	mu        sync.Mutex
	userID    int32
	locale    string
	store     Store
	provider  Provider
	sessions  map[string]*Session
	currentID string
}

// NewManager creates a manager for one user. Call Load before use.
func NewManager(store Store, provider Provider, userID int32, locale string) *Manager {
	return &Manager{
		userID:   userID,
		locale:   locale,
		store:    store,
		provider: provider,
		sessions: make(map[string]*Session),
	}
}

// Load replaces the in-memory mapping with the store's contents and fixes up
// the current-session pointer: newest session if any exist, otherwise a
// fresh persisted one. A store failure degrades to an empty mapping plus a
// returned error; the manager stays usable either way.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var loadErr *Error
	sessions, err := m.store.LoadAll(ctx, m.userID)
	if err != nil {
		loadErr = storeError("load sessions", err)
		sessions = nil
	}
	if sessions == nil {
		sessions = make(map[string]*Session)
	}
	m.sessions = sessions
	m.currentID = ""

	if len(m.sessions) > 0 {
		m.currentID = m.newestLocked().ID
	} else if _, cerr := m.createSessionLocked(ctx); cerr != nil && loadErr == nil {
		loadErr = cerr
	}
	if loadErr != nil {
		return loadErr
	}
	return nil
}

// NewSession creates a fresh session, makes it current and persists it.
// Thread creation is attempted eagerly but is best-effort: on provider
// failure the session starts unbound and binds lazily on the first prompt.
func (m *Manager) NewSession(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, cerr := m.createSessionLocked(ctx)
	if cerr != nil {
		return snapshot(s), cerr
	}
	return snapshot(s), nil
}

// Current returns the session the presentation layer should display,
// repairing the pointer with a fresh session if it dangles.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, cerr := m.ensureCurrentLocked(ctx)
	if cerr != nil {
		return snapshot(s), cerr
	}
	return snapshot(s), nil
}

// Select makes the given session current. An unknown id is treated as a
// dangling pointer and repaired, never surfaced as an error.
func (m *Manager) Select(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		m.currentID = id
		return snapshot(s), nil
	}
	s, cerr := m.createSessionLocked(ctx)
	if cerr != nil {
		return snapshot(s), cerr
	}
	return snapshot(s), nil
}

// Get returns a session by id, or nil when the manager does not hold it.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	return snapshot(s)
}

// List returns sessions newest-first by creation time. A non-empty search
// term keeps only titles containing it, case-insensitively; filtering never
// mutates the underlying mapping.
func (m *Manager) List(search string) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(search)
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if needle != "" && !strings.Contains(strings.ToLower(s.Title), needle) {
			continue
		}
		out = append(out, snapshot(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// Rename sets a session's title and persists it.
func (m *Manager) Rename(ctx context.Context, id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return &Error{Kind: KindNotFound, Detail: "session " + id}
	}
	s.Title = title
	if err := m.store.Save(ctx, m.userID, s); err != nil {
		return storeError("save session", err)
	}
	return nil
}

// Delete removes a session from the store and the mapping, then repairs the
// current pointer: any remaining session, or a fresh one when none remain.
// The in-memory removal happens even when the store delete fails.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return &Error{Kind: KindNotFound, Detail: "session " + id}
	}

	var delErr *Error
	if err := m.store.Delete(ctx, id); err != nil {
		delErr = storeError("delete session", err)
	}
	delete(m.sessions, id)

	if m.currentID == id {
		m.currentID = ""
		for sid := range m.sessions {
			m.currentID = sid
			break
		}
		if m.currentID == "" {
			if _, cerr := m.createSessionLocked(ctx); cerr != nil && delErr == nil {
				delErr = cerr
			}
		}
	}
	if delErr != nil {
		return delErr
	}
	return nil
}

// SubmitPrompt runs one full turn against the current session: append the
// user message, call the provider (binding a newly minted thread id when one
// comes back), append the reply, apply the one-shot auto-rename, persist.
// Provider failures become the assistant message's text; the returned error
// is only ever a store error, and the Turn is always non-nil.
func (m *Manager) SubmitPrompt(ctx context.Context, prompt string) (*Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, _ := m.ensureCurrentLocked(ctx)
	sess.Append(RoleUser, prompt)

	reply := m.askProviderLocked(ctx, sess, prompt)
	sess.Append(RoleAssistant, reply)

	m.autoRenameLocked(sess, prompt)

	turn := &Turn{
		User:      sess.Messages[len(sess.Messages)-2],
		Assistant: sess.Messages[len(sess.Messages)-1],
		Session:   snapshot(sess),
	}
	if err := m.store.Save(ctx, m.userID, sess); err != nil {
		return turn, storeError("save session", err)
	}
	return turn, nil
}

// askProviderLocked performs the provider call for one turn and returns the
// reply text, which is an error string when the call fails.
func (m *Manager) askProviderLocked(ctx context.Context, sess *Session, prompt string) string {
	tctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	reply, newThreadID, err := m.provider.Chat(tctx, prompt, sess.ThreadID)
	if err != nil {
		return "Error: " + providerError(err).Detail
	}
	if sess.ThreadID == "" && newThreadID != "" {
		sess.ThreadID = newThreadID
		// The end-of-turn save repeats this; persisting at bind time keeps the
		// handle even if the rest of the turn is lost.
		if serr := m.store.Save(ctx, m.userID, sess); serr != nil {
			slog.Warn("failed to persist thread binding", "session", sess.ID, "err", serr)
		}
	}
	return reply
}

// autoRenameLocked replaces the default title with the first tokens of the
// user's first prompt, exactly once per session. The message-count check is
// authoritative: the transcript is append-only, so the count passes through
// two only once and a later manual rename back to the default string cannot
// re-trigger it.
func (m *Manager) autoRenameLocked(sess *Session, prompt string) {
	if len(sess.Messages) != 2 || sess.Title != i18n.T(m.locale, "new_chat") {
		return
	}
	fields := strings.Fields(prompt)
	if len(fields) == 0 {
		return
	}
	if len(fields) > titleTokens {
		fields = fields[:titleTokens]
	}
	sess.Title = strings.Join(fields, " ")
}

// ensureCurrentLocked returns the current session, creating a replacement
// when the pointer does not reference an existing session.
func (m *Manager) ensureCurrentLocked(ctx context.Context) (*Session, *Error) {
	if s, ok := m.sessions[m.currentID]; ok {
		return s, nil
	}
	return m.createSessionLocked(ctx)
}

// createSessionLocked builds a fresh session, attempts eager thread
// creation, registers it as current and persists it. The session is always
// returned, even when persisting fails.
func (m *Manager) createSessionLocked(ctx context.Context) (*Session, *Error) {
	s := NewSession(m.locale)

	tctx, cancel := context.WithTimeout(ctx, providerTimeout)
	if tid, err := m.provider.CreateThread(tctx); err == nil {
		s.ThreadID = tid
	} else {
		slog.Debug("eager thread creation failed, will bind lazily", "session", s.ID, "err", err)
	}
	cancel()

	m.sessions[s.ID] = s
	m.currentID = s.ID

	if err := m.store.Save(ctx, m.userID, s); err != nil {
		return s, storeError("save session", err)
	}
	return s, nil
}

// snapshot copies a session so callers can read it after the manager's lock
// is released. The live session and its message slice stay private.
func snapshot(s *Session) *Session {
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	return &c
}

// newestLocked returns the session with the latest creation time.
func (m *Manager) newestLocked() *Session {
	var newest *Session
	for _, s := range m.sessions {
		if newest == nil || s.CreatedAt.After(newest.CreatedAt) ||
			(s.CreatedAt.Equal(newest.CreatedAt) && s.ID > newest.ID) {
			newest = s
		}
	}
	return newest
}
