package handlers

import (
	"context"
	"time"

	"catalog/internal/database"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports process and database health.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler creates a HealthHandler. db is nil when products live in memory.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// RegisterRoutes registers GET /health.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth answers 200 when the database responds, 503 otherwise.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	status, dbStatus := fiber.StatusOK, "disabled"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
		defer cancel()

		dbStatus = "up"
		if err := database.Ping(ctx, h.db); err != nil {
			status, dbStatus = fiber.StatusServiceUnavailable, "down"
		}
	}

	health := "healthy"
	if status != fiber.StatusOK {
		health = "unhealthy"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   health,
		"database": dbStatus,
		"time":     time.Now().Format(time.RFC3339),
	})
}
