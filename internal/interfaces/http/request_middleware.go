package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/infrastructure/metrics"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// RequestLogger registra cada petición con zerolog y, si m no es nil, la cuenta en Prometheus.
func RequestLogger(log *logger.Logger, m *metrics.HTTPMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		route := c.Route().Path
		if m != nil {
			m.Observe(c.Method(), route, status, elapsed)
		}

		ev := log.Info()
		if opErr, _ := c.Locals(LocalError).(error); opErr != nil {
			ev = log.Error().Err(opErr)
		} else if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Str("user_id", GetUserID(c)).
			Msg("http request")
		return nil
	}
}
