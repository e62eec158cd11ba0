package routes

import (
    "context"
    "fmt"
    "log/slog"
    "net/http"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/gofiber/fiber/v2/middleware/recover"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/redis/go-redis/v9"

    "github.com/congo-pay/banco/internal/audit"
    "github.com/congo-pay/banco/internal/bank"
    "github.com/congo-pay/banco/internal/config"
    "github.com/congo-pay/banco/internal/identity"
    "github.com/congo-pay/banco/internal/middleware"
    "github.com/congo-pay/banco/internal/notification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
    Cfg    config.Config
    DB     *pgxpool.Pool
    Cache  *redis.Client
    Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) (*bank.Session, error) {
    // Enforce DB/Redis presence outside of dev, even though config also checks.
    if !d.Cfg.IsDev() {
        if d.DB == nil {
            return nil, fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
        }
        if d.Cache == nil {
            return nil, fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
        }
    }
    // Middlewares
    app.Use(recover.New())
    app.Use(middleware.RequestID())
    app.Use(middleware.AccessLog(d.Logger))

    // Health
    RegisterHealthRoutes(app, d)

    // Services and handlers
    sink, err := auditSink(d)
    if err != nil {
        return nil, err
    }
    auditor := audit.New(sink, d.Logger)
    identitySvc := identity.NewService(identity.NewMemoryRepository())
    notifier := notification.NewLoggerNotifier(d.Logger)
    session := bank.NewSession(identitySvc, auditor, notifier, d.Logger, bank.Config{
        BranchCode:      d.Cfg.BranchCode,
        WithdrawalLimit: d.Cfg.WithdrawalLimit,
        MaxWithdrawals:  d.Cfg.MaxWithdrawals,
    })
    if d.Cfg.SeedDemo {
        acc, err := session.Seed(context.Background())
        if err != nil {
            return nil, fmt.Errorf("seed demo data: %w", err)
        }
        d.Logger.Info("demo account seeded", slog.String("account", acc.String()))
    }

    ownerHandler := identity.NewHandler(identitySvc)
    accountHandler := bank.NewHandler(session)

    // API routes
    api := app.Group("/api/v1")
    api.Get("/ping", func(c *fiber.Ctx) error {
        reqID, _ := c.Locals("X-Request-ID").(string)
        return c.Status(http.StatusOK).JSON(fiber.Map{
            "status": "ok",
            "request_id": reqID,
            "timestamp": time.Now().UTC().Format(time.RFC3339Nano),
        })
    })

    guards := []fiber.Handler{middleware.RateLimit(d.Cache, d.Cfg.RateLimitPerMinute, d.Logger)}
    if d.Cache != nil {
        guards = append(guards, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
    }

    RegisterOwnerRoutes(api, ownerHandler, accountHandler)
    RegisterAccountRoutes(api, accountHandler, guards...)

    return session, nil
}

// auditSink always writes the text log and mirrors it to Postgres when a
// database is configured.
func auditSink(d Deps) (audit.Sink, error) {
    file := audit.NewFileSink(d.Cfg.AuditLogPath)
    if d.DB == nil {
        return file, nil
    }
    pg := audit.NewPostgresSink(d.DB)
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := pg.EnsureSchema(ctx); err != nil {
        return nil, err
    }
    return audit.MultiSink{file, pg}, nil
}
