package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/server"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"

	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.New(cfg.Log)
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	opts := server.Options{Config: cfg, Logger: log}

	// --- Product store ---
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn().Msg("Using the in-memory product store; data is lost on exit")
		opts.Products = repositories.NewMemoryProductRepository()
	} else {
		db, err := database.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			if err := database.Close(db); err != nil {
				log.Error().Err(err).Msg("Error closing database")
			}
		}()
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info().Str("driver", cfg.Database.Driver).Msg("Database connected and migrated")

		opts.DB = db
		opts.Products = repositories.NewGORMProductRepository(db)
		opts.Users = repositories.NewGORMUserRepository(db)
	}

	if cfg.SeedProducts {
		seedProducts(context.Background(), opts.Products, log)
	}

	// --- Product events ---
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue}, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing RabbitMQ client")
			}
		}()
		opts.Events = mqClient

		if cfg.RabbitMQ.Consume {
			if err := mqClient.ConsumeProductEvents(services.NewProductAuditor(log).Handle); err != nil {
				return err
			}
		}
	} else {
		log.Info().Msg("RABBITMQ_URL not set; product events are disabled")
	}

	app := server.New(opts)

	// --- Serve until a signal or a listener failure ---
	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("Starting server")
		listenErr <- app.Listen(cfg.AppPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down server")
	}

	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("Error during Fiber shutdown")
	}
	log.Info().Msg("Server gracefully stopped")
	return nil
}

// seedProducts inserts a few demo products into an empty store.
func seedProducts(ctx context.Context, repo repositories.ProductRepository, log zerolog.Logger) {
	existing, err := repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error checking products before seeding")
		return
	}
	if len(existing) > 0 {
		log.Info().Int("count", len(existing)).Msg("Products present; skipping seed")
		return
	}

	laptop, keyboard := "High performance laptop", "Mechanical keyboard"
	products := []models.Product{
		{Name: "Laptop", Description: &laptop, Price: 1200.00},
		{Name: "Keyboard", Description: &keyboard, Price: 75.00},
		{Name: "Mouse", Price: 25.00},
	}

	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			log.Error().Err(err).Str("name", products[i].Name).Msg("Error seeding product")
			continue
		}
		log.Info().Str("name", products[i].Name).Uint("id", products[i].ID).Msg("Seeded product")
	}
}
