// Package server bootstraps the HTTP front-end.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/pkg/errors"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/plugin/assistant"
	apiv1 "github.com/laksikaji/AI-Chatbot-for-UNAI/server/router/api/v1"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/server/profile"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store"
)

// Server owns the echo instance and its HTTP listener.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echo *echo.Echo
	http *http.Server
}

// NewServer wires the API service onto a fresh echo instance.
func NewServer(_ context.Context, prof *profile.Profile, st *store.Store, client *assistant.Client) (*Server, error) {
	e := echo.New()

	apiService := apiv1.NewAPIV1Service(prof.Secret, prof, st, client)
	apiService.Register(e)

	e.GET("/healthz", func(c *echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	s := &Server{
		Profile: prof,
		Store:   st,
		echo:    e,
		http: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", prof.Addr, prof.Port),
			Handler: e,
		},
	}
	return s, nil
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(_ context.Context) error {
	slog.Info("server started", "addr", s.http.Addr, "version", s.Profile.Version, "mode", s.Profile.Mode)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http listener")
	}
	return nil
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down http server", "err", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "err", err)
	}
	slog.Info("server shut down")
}
