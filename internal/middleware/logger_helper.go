package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger returns the trace-aware logger stored by TraceLoggerMiddleware,
// or fallback when the request did not pass through it.
func RequestLogger(c *fiber.Ctx, fallback *zap.Logger) *zap.Logger {
	if logger, ok := c.Locals("logger").(*zap.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}
