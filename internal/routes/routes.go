package routes

import (
    "fmt"
    "log/slog"
    "net/http"

    "github.com/gofiber/fiber/v2"
    "github.com/gofiber/fiber/v2/middleware/cors"
    "github.com/gofiber/fiber/v2/middleware/helmet"
    "github.com/gofiber/fiber/v2/middleware/recover"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/redis/go-redis/v9"

    "github.com/docuhero/docuhero-api/internal/auth"
    "github.com/docuhero/docuhero-api/internal/config"
    "github.com/docuhero/docuhero-api/internal/identity"
    "github.com/docuhero/docuhero-api/internal/infra"
    "github.com/docuhero/docuhero-api/internal/metrics"
    "github.com/docuhero/docuhero-api/internal/middleware"
    "github.com/docuhero/docuhero-api/internal/validate"
)

// Deps aggregates shared dependencies required to wire routes. Users, Tokens
// and Metrics are derived from the rest when left nil.
type Deps struct {
    Cfg     config.Config
    DB      *pgxpool.Pool
    Cache   *redis.Client
    Logger  *slog.Logger
    Users   identity.Repository
    Tokens  *auth.TokenService
    Metrics *metrics.Metrics
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
    if !d.Cfg.IsDev() && d.DB == nil && d.Users == nil {
        return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
    }
    if d.Tokens == nil {
        tokens, err := auth.NewTokenService(d.Cfg.JWTSecret)
        if err != nil {
            return err
        }
        d.Tokens = tokens
    }
    if d.Users == nil {
        if d.DB != nil {
            d.Users = identity.NewPostgresRepository(d.DB)
        } else {
            d.Logger.Warn("no database configured, using in-memory user store")
            d.Users = identity.NewMemoryRepository()
        }
    }
    if d.Metrics == nil {
        d.Metrics = metrics.New()
    }

    // Middlewares
    app.Use(recover.New())
    app.Use(middleware.RequestID())
    app.Use(middleware.Audit(d.Logger))
    app.Use(d.Metrics.Middleware())
    app.Use(helmet.New())
    app.Use(cors.New(cors.Config{
        AllowOrigins:     d.Cfg.FrontendURL,
        AllowCredentials: d.Cfg.FrontendURL != "*",
        AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
    }))

    RegisterHealthRoutes(app, d)
    app.Get("/metrics", d.Metrics.Handler())

    identitySvc := identity.NewService(d.Users, d.Cfg.StoreTimeout)
    authHandler := auth.NewHandler(identitySvc, d.Tokens, validate.New(), d.Metrics, d.Logger)
    RegisterAuthRoutes(app, authHandler, middleware.LoginRateLimit(d.Cache, d.Cfg.LoginLimitPerMin))

    var limiterStorage fiber.Storage
    if d.Cache != nil {
        limiterStorage = infra.NewRedisStorage(d.Cache, "docuhero:")
    }
    api := app.Group("/api", middleware.APIRateLimit(limiterStorage, d.Cfg.RateLimitMax, d.Cfg.RateLimitWindow))
    RegisterAPIRoutes(api, identitySvc, middleware.Authenticate(d.Tokens, d.Metrics), d.Metrics, d.Logger)

    app.Use(func(c *fiber.Ctx) error {
        return fiber.NewError(http.StatusNotFound, "Endpoint not found")
    })

    return nil
}
