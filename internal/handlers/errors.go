package handlers

import (
	"errors"

	"catalog/internal/middleware"
	"catalog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// respondError translates a service error into a JSON response. failure
// titles the 500 body; it is unused for the client error kinds.
func (h *ProductHandler) respondError(c *fiber.Ctx, err error, failure string) error {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErr.Fields,
		})
	case errors.Is(err, models.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Product not found",
		})
	default:
		h.logger.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("user", middleware.Username(c)).
			Msg(failure)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   failure,
			"message": err.Error(),
		})
	}
}

// ErrorHandler renders errors that escape the handlers, such as unknown
// routes or recovered panics, as JSON.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
		})
	}
}
