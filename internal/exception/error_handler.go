package exception

import (
	"fmt"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Recovery turns a panic in any later handler into the generic 500 response
// and logs it with the request's trace.
func Recovery(log *zap.Logger) fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			panicErr, ok := recovered.(error)
			if !ok {
				panicErr = fmt.Errorf("%v", recovered)
			}

			observability.WithContext(ctx.UserContext(), log).Error("recovered from panic",
				zap.String("method", ctx.Method()),
				zap.String("path", ctx.Path()),
				zap.Error(panicErr),
				zap.StackSkip("stack", 2),
			)

			err = ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    constant.ERR_INTERNAL_SERVER_ERROR_CODE,
					"message": constant.ERR_INTENRAL_SERVER_ERROR_MESSAGE,
				},
			})
		}()

		return ctx.Next()
	}
}
