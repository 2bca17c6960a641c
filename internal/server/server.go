package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lalunarecs/audiomoth-server/internal/config"
	"github.com/lalunarecs/audiomoth-server/internal/errs"
	"github.com/lalunarecs/audiomoth-server/internal/logger"
	"github.com/lalunarecs/audiomoth-server/internal/middleware"
)

// Server serves the recordings directory over HTTP. The configuration and the
// routes are fixed at construction; nothing mutable is shared across requests.
type Server struct {
	cfg *config.Config
	app *fiber.App
}

// New creates a Server for the given configuration.
func New(cfg *config.Config) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	// Transport faults surface in fasthttp outside the handler chain; route
	// them through the classifier so peer disconnects stay silent there too.
	app.Server().Logger = transportLogger{}

	s := &Server{
		cfg: cfg,
		app: app,
	}
	s.setupRoutes()

	return s
}

type transportLogger struct{}

func (transportLogger) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if errs.IsBenignDisconnectMessage(msg) {
		return
	}
	logger.Get().Error().Msg(msg)
}

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())

	s.app.Use(middleware.NewHeaders(middleware.HeadersConfig{
		IsAudio:     s.cfg.IsAudioPath,
		CacheMaxAge: s.cfg.CacheMaxAge,
	}))

	s.app.Use(middleware.NewLogger(middleware.LoggerConfig{
		ShouldLog: s.cfg.IsLoggablePath,
	}))

	// No icon file configured: /favicon.ico answers 204 without a filesystem
	// lookup, so browser probes stay out of the serving path entirely.
	s.app.Use(favicon.New())

	s.app.Get("/healthz", s.handleHealth)

	// Everything else is the file tree.
	s.app.Get("/*", s.handleFile)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Listen blocks serving requests until Shutdown is called or the listener
// fails. A bind failure (port in use) surfaces here.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.ServerAddress())
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
