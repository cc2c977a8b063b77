package middleware

import (
	"strconv"
	"time"

	"catalog/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Metrics records request counts and latency per matched route.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		// Label values outlive the request, so they must not alias fasthttp buffers.
		method := utils.CopyString(c.Method())
		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(responseStatus(c, err))).Inc()
		metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
