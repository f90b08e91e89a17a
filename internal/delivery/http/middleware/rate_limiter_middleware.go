package middleware

import (
	"strings"
	"time"

	"github.com/ferdian3456/snapgram/internal/constant"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

func rateLimitResponse(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    constant.ERR_TOO_MANY_REQUESTS_CODE,
			"message": message,
		},
	})
}

// SetupRateLimiter configures rate limiting middleware for the application
func SetupRateLimiter(logger *zap.Logger) fiber.Handler {
	return limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			// Health checks, metrics scrapes and image previews are not limited
			switch c.Path() {
			case "/api/health", "/metrics":
				return true
			}
			return strings.HasPrefix(c.Path(), "/api/files/")
		},
		Max:        300,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			logger.Warn("Rate limit exceeded", zap.String("ip", c.IP()))
			return rateLimitResponse(c, "Rate limit exceeded, please try again later")
		},
	})
}

// SetupAuthRateLimiter configures a stricter rate limiting for authentication endpoints
func SetupAuthRateLimiter(logger *zap.Logger) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: 5 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			logger.Warn("Auth rate limit exceeded", zap.String("ip", c.IP()))
			return rateLimitResponse(c, "Too many authentication attempts, please try again later")
		},
	})
}
