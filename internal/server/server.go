// Package server exposes the scan engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flipintegrity/flipscan/internal/app"
)

// Server wraps the HTTP listener and its graceful shutdown.
type Server struct {
	httpServer *http.Server
}

// New builds the HTTP server over an initialized application. The
// browser pool is warmed before the listener opens, so the first
// request does not pay Chrome startup cost.
func New(ctx context.Context, application *app.Application, allowedOrigins []string) (*Server, error) {
	if err := application.EnsureBrowserPool(ctx); err != nil {
		// Degraded but functional: scans fall back to dedicated sessions.
		log.Warn().Err(err).Msg("Browser pool unavailable, scans will use dedicated sessions")
	}

	handler := NewHandler(
		application.Auditor,
		application.Cache,
		application.Config.CacheTTL,
		application.Uptime,
	)

	router := SetupRouter(handler, allowedOrigins, application.Config.LogLevel != "debug")

	return &Server{
		httpServer: &http.Server{
			Addr:              application.Config.ListenAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe blocks serving requests until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests until the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
