package util

import (
	"errors"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/model"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func ReadRequestBody(ctx *fiber.Ctx, result interface{}) error {
	err := ctx.BodyParser(result)
	if err != nil {
		return err
	}
	return nil
}

func SendSuccessResponseNoData(ctx *fiber.Ctx) error {
	err := ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "OK",
	})
	if err != nil {
		return err
	}
	return nil
}

func SendSuccessResponseWithData(ctx *fiber.Ctx, data interface{}) error {
	err := ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": data,
	})
	if err != nil {
		return err
	}

	return nil
}

func SendSuccessResponseWithPage(ctx *fiber.Ctx, data interface{}, page model.Page) error {
	err := ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": data,
		"page": page,
	})
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponse(ctx *fiber.Ctx, error error) error {
	err := ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": error,
	})
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponseNotFound(ctx *fiber.Ctx, error error) error {
	err := ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": error,
	})
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponseUnauthorized(ctx *fiber.Ctx, error error) error {
	err := ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": error,
	})
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponseForbidden(ctx *fiber.Ctx, error error) error {
	err := ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": error,
	})
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponseConflict(ctx *fiber.Ctx, error error) error {
	err := ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
		"error": error,
	})
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponseInternalServer(ctx *fiber.Ctx, log *zap.Logger, error error) error {
	log.Error("internal server error occured", zap.Error(error))
	err := ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    constant.ERR_INTERNAL_SERVER_ERROR_CODE,
			"message": constant.ERR_INTENRAL_SERVER_ERROR_MESSAGE,
		},
	})

	if err != nil {
		return err
	}

	return err
}

// SendError answers with the status that matches a ValidationError code, or
// logs err and answers 500 for anything else.
func SendError(ctx *fiber.Ctx, log *zap.Logger, err error) error {
	var validationErr *model.ValidationError
	if !errors.As(err, &validationErr) {
		return SendErrorResponseInternalServer(ctx, log, err)
	}

	switch validationErr.Code {
	case constant.ERR_NOT_FOUND_ERROR:
		return SendErrorResponseNotFound(ctx, validationErr)
	case constant.ERR_UNATHORIZED_ERROR:
		return SendErrorResponseUnauthorized(ctx, validationErr)
	case constant.ERR_FORBIDDEN_ERROR:
		return SendErrorResponseForbidden(ctx, validationErr)
	case constant.ERR_CONFLICT_ERROR:
		return SendErrorResponseConflict(ctx, validationErr)
	default:
		return SendErrorResponse(ctx, validationErr)
	}
}
