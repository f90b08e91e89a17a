package middleware

import (
	"github.com/ferdian3456/snapgram/internal/observability"
	"github.com/ferdian3456/snapgram/internal/usecase"
	"github.com/ferdian3456/snapgram/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	App         *fiber.App
	Log         *zap.Logger
	Config      *koanf.Koanf
	UserUsecase *usecase.UserUsecase
}

func NewAuthMiddleware(app *fiber.App, zap *zap.Logger, koanf *koanf.Koanf, userUsecase *usecase.UserUsecase) *AuthMiddleware {
	return &AuthMiddleware{
		App:         app,
		Log:         zap,
		Config:      koanf,
		UserUsecase: userUsecase,
	}
}

// ProtectedRoute accepts a bearer access token that is both validly signed and
// still the latest token issued to its user.
func (middleware *AuthMiddleware) ProtectedRoute() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		accessToken := ctx.Get(fiber.HeaderAuthorization)
		tokenString, userId, err := util.ValidateAccessToken(accessToken, middleware.Log, middleware.Config.String("JWT_SECRET_KEY"))
		if err != nil {
			return util.SendError(ctx, middleware.Log, err)
		}

		err = middleware.UserUsecase.GetAccessToken(ctx.UserContext(), userId, tokenString)
		if err != nil {
			return util.SendError(ctx, middleware.Log, err)
		}

		ctx.Locals("userId", userId)

		observability.WithContext(ctx.UserContext(), middleware.Log).Debug("request authenticated", zap.String("userId", userId.String()))

		return ctx.Next()
	}
}
