package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/papercomputeco/leadline/pkg/assistant"
)

// startKey is the fiber.Ctx local holding the request start time.
const startKey = "leadline.start"

// Server is the API server in front of the assistant Service.
type Server struct {
	config    Config
	assistant *assistant.Service
	logger    *slog.Logger
	app       *fiber.App
}

// NewServer creates a new API server.
// The assistant is injected so its handles are shared with other entrypoints.
func NewServer(config Config, svc *assistant.Service, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("assistant service is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		config:    config,
		assistant: svc,
		logger:    logger.With("component", "api"),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Use(func(c *fiber.Ctx) error {
		c.Locals(startKey, time.Now())
		return c.Next()
	})
	app.Use(fiberrecover.New())

	app.Get("/ping", s.handlePing)
	app.Post("/", s.handleChat)
	app.Post("/chat", s.handleChat)

	if config.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(config.Metrics.Handler()))
	}
	if config.MCP != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCP))
	}

	s.app = app
	return s, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
