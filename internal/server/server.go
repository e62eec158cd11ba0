package server

import (
    "context"
    "log/slog"
    "time"

    "github.com/gofiber/fiber/v2"

    "github.com/congo-pay/banco/internal/bank"
    "github.com/congo-pay/banco/internal/config"
    "github.com/congo-pay/banco/internal/infra"
    "github.com/congo-pay/banco/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
    app      *fiber.App
    cfg      config.Config
    backends *infra.Backends
    session  *bank.Session
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, backends *infra.Backends, logger *slog.Logger) (*Server, error) {
    app := fiber.New(fiber.Config{
        AppName:      cfg.AppName,
        ReadTimeout:  30 * time.Second,
        WriteTimeout: 30 * time.Second,
    })

    if backends == nil {
        backends = &infra.Backends{}
    }
    session, err := routes.Setup(app, routes.Deps{Cfg: cfg, DB: backends.DB, Cache: backends.Cache, Logger: logger})
    if err != nil {
        return nil, err
    }

    return &Server{app: app, cfg: cfg, backends: backends, session: session}, nil
}

// App exposes the underlying Fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
    return s.app
}

// Session returns the bank session served by this instance.
func (s *Server) Session() *bank.Session {
    return s.session
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
    return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
    return s.app.ShutdownWithContext(ctx)
}
