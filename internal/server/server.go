package server

import (
	"catalog/internal/config"
	"catalog/internal/handlers"
	"catalog/internal/metrics"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Options carries the dependencies of the HTTP application.
type Options struct {
	Config   *config.Config
	DB       *gorm.DB // nil when products are kept in memory
	Products repositories.ProductRepository
	Users    repositories.UserRepository // required when auth is enabled
	Events   services.EventPublisher     // nil disables product events
	Logger   zerolog.Logger
}

// New assembles the Fiber application: middleware, health and metrics
// endpoints, the auth routes and the product routes under /api.
func New(opts Options) *fiber.App {
	cfg, logger := opts.Config, opts.Logger

	app := fiber.New(fiber.Config{
		AppName:               "catalog",
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler(logger),
	})

	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(logger))
	if cfg.MetricsEnabled {
		app.Use(middleware.Metrics())
		app.Get("/metrics", metrics.Handler())
	}
	app.Use(recover.New())

	handlers.NewHealthHandler(opts.DB).RegisterRoutes(app)

	validate := middleware.NewValidator()
	api := app.Group("/api")

	var guards []fiber.Handler
	if cfg.Auth.Enabled {
		authService := services.NewAuthService(opts.Users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		handlers.NewAuthHandler(authService, validate, logger).RegisterRoutes(api)
		guards = append(guards, middleware.AuthRequired(authService, logger))
	}

	productService := services.NewProductService(opts.Products, opts.Events, logger)
	handlers.NewProductHandler(productService, validate, logger).RegisterRoutes(api, guards...)

	return app
}
