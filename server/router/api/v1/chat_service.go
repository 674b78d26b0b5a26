package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/chat"
)

type promptRequest struct {
	Content string `json:"content"`
}

type renameRequest struct {
	Title string `json:"title"`
}

type sessionResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThreadID     string `json:"threadId,omitempty"`
	CreatedTs    int64  `json:"createdTs"`
	MessageCount int    `json:"messageCount"`
}

type messageResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type sessionListResponse struct {
	Sessions  []sessionResponse `json:"sessions"`
	CurrentID string            `json:"currentId"`
	Warning   string            `json:"warning,omitempty"`
}

type turnResponse struct {
	User      messageResponse `json:"user"`
	Assistant messageResponse `json:"assistant"`
	Session   sessionResponse `json:"session"`
	Warning   string          `json:"warning,omitempty"`
}

func (s *APIV1Service) registerChatRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/chat")
	g.GET("/sessions", s.listChatSessions)
	g.POST("/sessions", s.createChatSession)
	g.PATCH("/sessions/:id", s.renameChatSession)
	g.DELETE("/sessions/:id", s.deleteChatSession)
	g.POST("/sessions/:id/select", s.selectChatSession)
	g.GET("/sessions/:id/messages", s.listChatMessages)
	g.POST("/sessions/:id/chat", s.handleChat)
}

func (s *APIV1Service) listChatSessions(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	mgr, loadErr := s.managerFor(ctx, user, s.requestLocale(c))

	current, _ := mgr.Current(ctx)
	sessions := mgr.List(c.QueryParam("search"))

	resp := sessionListResponse{
		Sessions:  make([]sessionResponse, 0, len(sessions)),
		CurrentID: current.ID,
	}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(sess))
	}
	if loadErr != nil {
		resp.Warning = loadErr.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) createChatSession(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	mgr, _ := s.managerFor(ctx, user, s.requestLocale(c))

	sess, createErr := mgr.NewSession(ctx)
	resp := struct {
		Session sessionResponse `json:"session"`
		Warning string          `json:"warning,omitempty"`
	}{Session: toSessionResponse(sess)}
	// The session stays usable in memory even when persisting it failed.
	if createErr != nil {
		resp.Warning = createErr.Error()
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *APIV1Service) renameChatSession(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	var req renameRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title required")
	}
	ctx := c.Request().Context()
	mgr, _ := s.managerFor(ctx, user, s.requestLocale(c))

	id := c.Param("id")
	if err := mgr.Rename(ctx, id, strings.TrimSpace(req.Title)); err != nil {
		return chatErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(mgr.Get(id)))
}

func (s *APIV1Service) deleteChatSession(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	mgr, _ := s.managerFor(ctx, user, s.requestLocale(c))

	delErr := mgr.Delete(ctx, c.Param("id"))
	var cerr *chat.Error
	if chatErrorAs(delErr, &cerr) && cerr.Kind == chat.KindNotFound {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}

	current, _ := mgr.Current(ctx)
	resp := struct {
		CurrentID string `json:"currentId"`
		Warning   string `json:"warning,omitempty"`
	}{CurrentID: current.ID}
	// The in-memory delete and the current-pointer repair have already
	// happened; a store failure is reported but does not undo them.
	if delErr != nil {
		resp.Warning = delErr.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) selectChatSession(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	mgr, _ := s.managerFor(ctx, user, s.requestLocale(c))

	sess, selErr := mgr.Select(ctx, c.Param("id"))
	resp := struct {
		Session sessionResponse `json:"session"`
		Warning string          `json:"warning,omitempty"`
	}{Session: toSessionResponse(sess)}
	// An unknown id was repaired with a fresh session; only persisting that
	// repair can have failed.
	if selErr != nil {
		resp.Warning = selErr.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) listChatMessages(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	mgr, _ := s.managerFor(c.Request().Context(), user, s.requestLocale(c))

	sess := mgr.Get(c.Param("id"))
	if sess == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	resp := make([]messageResponse, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		resp = append(resp, messageResponse{Role: string(m.Role), Content: m.Content})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) handleChat(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	var req promptRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content required")
	}
	ctx := c.Request().Context()
	mgr, _ := s.managerFor(ctx, user, s.requestLocale(c))

	// Selecting repairs a dangling id, so the turn always has a session. A
	// failed save of that repair resurfaces through the end-of-turn save.
	_, _ = mgr.Select(ctx, c.Param("id"))
	turn, turnErr := mgr.SubmitPrompt(ctx, req.Content)

	resp := turnResponse{
		User:      messageResponse{Role: string(turn.User.Role), Content: turn.User.Content},
		Assistant: messageResponse{Role: string(turn.Assistant.Role), Content: turn.Assistant.Content},
		Session:   toSessionResponse(turn.Session),
	}
	// The turn completed in memory; only persisting it can have failed.
	if turnErr != nil {
		resp.Warning = turnErr.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

func toSessionResponse(sess *chat.Session) sessionResponse {
	return sessionResponse{
		ID:           sess.ID,
		Title:        sess.Title,
		ThreadID:     sess.ThreadID,
		CreatedTs:    sess.CreatedAt.Unix(),
		MessageCount: len(sess.Messages),
	}
}

// chatErrorAs unwraps err into a *chat.Error when possible.
func chatErrorAs(err error, target **chat.Error) bool {
	if err == nil {
		return false
	}
	e, ok := err.(*chat.Error)
	if !ok {
		return false
	}
	*target = e
	return true
}

// chatErrorToHTTP maps core errors onto HTTP statuses.
func chatErrorToHTTP(err error) error {
	var cerr *chat.Error
	if chatErrorAs(err, &cerr) {
		switch cerr.Kind {
		case chat.KindNotFound:
			return echo.NewHTTPError(http.StatusNotFound, cerr.Detail)
		case chat.KindStore:
			return echo.NewHTTPError(http.StatusInternalServerError, cerr.Detail)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
