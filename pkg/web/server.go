// Package web serves the session WebSocket endpoint and the small REST
// surface around it.
package web

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-convai/pkg/session"
	"github.com/teslashibe/go-convai/pkg/tools"
)

// Server hosts the duplex client channel and the REST API.
type Server struct {
	app      *fiber.App
	port     string
	sessions *session.Manager
	table    *tools.Table
	logger   *slog.Logger
}

// NewServer creates the HTTP server over the given session manager and
// dispatch table.
func NewServer(port string, sessions *session.Manager, table *tools.Table, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		port:     port,
		sessions: sessions,
		table:    table,
		logger:   logger.With("component", "web.server"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "go-convai",
		DisableStartupMessage: true,
	})

	// CORS for browser clients during development.
	app.Use(cors.New())

	app.Get("/healthz", s.handleHealth)

	api := app.Group("/api")
	api.Get("/tools", s.handleListTools)
	api.Get("/sessions", s.handleSessionCount)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleSessionWS))

	s.app = app
	return s
}

// Start blocks serving on the configured port.
func (s *Server) Start() error {
	s.logger.Info("server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("server stopped", "error", err)
		}
	}()
}

// Shutdown closes all sessions and stops the server.
func (s *Server) Shutdown() error {
	s.sessions.Shutdown()
	return s.app.ShutdownWithTimeout(5 * time.Second)
}
