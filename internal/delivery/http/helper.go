package http

import (
	"errors"
	"mime/multipart"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/middleware"
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/ferdian3456/snapgram/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type imageProcessor func(fileHeader *multipart.FileHeader, fieldName string) (model.ImageUpload, error)

// formImage reads an optional image field. A missing or empty field yields nil.
func formImage(ctx *fiber.Ctx, fieldName string, process imageProcessor) (*model.ImageUpload, error) {
	fileHeader, err := ctx.FormFile(fieldName)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, nil
		}
		return nil, err
	}

	if fileHeader.Size == 0 {
		return nil, nil
	}

	image, err := process(fileHeader, fieldName)
	if err != nil {
		return nil, err
	}

	return &image, nil
}

func invalidRequestBody() error {
	return &model.ValidationError{
		Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
		Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
	}
}

func currentUserId(ctx *fiber.Ctx) uuid.UUID {
	return ctx.Locals("userId").(uuid.UUID)
}

// sendError answers err through util.SendError with the request's trace-aware
// logger.
func sendError(ctx *fiber.Ctx, log *zap.Logger, err error) error {
	return util.SendError(ctx, middleware.RequestLogger(ctx, log), err)
}
