// Package v1 serves the REST API: authentication plus the chat session
// operations, one reconciliation manager per signed-in user.
package v1

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/labstack/echo/v5"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/chat"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/i18n"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/plugin/assistant"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/server/auth"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/server/profile"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store"
)

// APIV1Service holds the dependencies of the /api/v1 handlers.
type APIV1Service struct {
	Secret    string
	Profile   *profile.Profile
	Store     *store.Store
	Assistant *assistant.Client

	mu       sync.Mutex
	managers map[int32]*chat.Manager
}

// NewAPIV1Service wires the service.
func NewAPIV1Service(secret string, prof *profile.Profile, st *store.Store, client *assistant.Client) *APIV1Service {
	return &APIV1Service{
		Secret:    secret,
		Profile:   prof,
		Store:     st,
		Assistant: client,
		managers:  make(map[int32]*chat.Manager),
	}
}

// Register mounts all /api/v1 routes.
func (s *APIV1Service) Register(e *echo.Echo) {
	s.registerAuthRoutes(e)
	s.registerChatRoutes(e)
}

// requireAuth resolves the request's credentials to a user or fails with 401.
func (s *APIV1Service) requireAuth(c *echo.Context) (*store.User, error) {
	authHeader := c.Request().Header.Get("Authorization")
	cookieHeader := c.Request().Header.Get("Cookie")
	user, err := auth.NewAuthenticator(s.Store, s.Secret).AuthenticateToUser(
		c.Request().Context(), authHeader, cookieHeader,
	)
	if err != nil || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return user, nil
}

// managerFor returns the user's session manager, loading it from the store
// on first touch. A failed load degrades to an empty, usable manager for
// this request but is not cached, so the next request retries the load and
// a transient store outage heals itself.
func (s *APIV1Service) managerFor(ctx context.Context, user *store.User, locale string) (*chat.Manager, error) {
	s.mu.Lock()
	if m, ok := s.managers[user.ID]; ok {
		s.mu.Unlock()
		return m, nil
	}
	s.mu.Unlock()

	m := chat.NewManager(chat.NewSQLStore(s.Store), s.Assistant, user.ID, locale)
	if err := m.Load(ctx); err != nil {
		slog.Warn("failed to load sessions, continuing with empty state", "user", user.ID, "err", err)
		return m, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent request may have loaded its own manager first; keep that
	// one so both requests see the same state.
	if existing, ok := s.managers[user.ID]; ok {
		return existing, nil
	}
	s.managers[user.ID] = m
	return m, nil
}

// requestLocale picks the UI locale for a request: the Accept-Language
// header when present, the server default otherwise. Only the first request
// that builds a user's manager decides its locale.
func (s *APIV1Service) requestLocale(c *echo.Context) string {
	if al := c.Request().Header.Get("Accept-Language"); al != "" {
		return i18n.Match(al)
	}
	return s.Profile.Locale
}

// dropManager evicts a user's manager, e.g. on signout.
func (s *APIV1Service) dropManager(userID int32) {
	s.mu.Lock()
	delete(s.managers, userID)
	s.mu.Unlock()
}
