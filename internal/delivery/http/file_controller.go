package http

import (
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/ferdian3456/snapgram/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type FileController struct {
	FileUsecase *usecase.FileUsecase
	Log         *zap.Logger
}

func NewFileController(fileUsecase *usecase.FileUsecase, zap *zap.Logger) *FileController {
	return &FileController{
		FileUsecase: fileUsecase,
		Log:         zap,
	}
}

func (controller *FileController) GetFilePreview(ctx *fiber.Ctx) error {
	options := model.PreviewOptions{
		Width:   ctx.QueryInt("width", 0),
		Height:  ctx.QueryInt("height", 0),
		Gravity: ctx.Query("gravity"),
		Quality: ctx.QueryInt("quality", 0),
	}

	data, err := controller.FileUsecase.GetFilePreview(ctx.UserContext(), ctx.Params("fileId"), options)
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	ctx.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	ctx.Type("webp")
	return ctx.Send(data)
}

func (controller *FileController) GetInitialsAvatar(ctx *fiber.Ctx) error {
	data, err := controller.FileUsecase.GetInitialsAvatar(ctx.Query("name"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	ctx.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	ctx.Type("svg")
	return ctx.Send(data)
}
