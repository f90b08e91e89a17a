package config

import (
	"errors"
	"time"

	"github.com/ferdian3456/snapgram/internal/constant"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

func NewFiber() *fiber.App {
	app := fiber.New(fiber.Config{
		//Prefork:               true,
		Prefork:               false,
		AppName:               "snapgram",
		BodyLimit:             12 * 1024 * 1024, // 12MB, images are capped at 10MB
		ReadBufferSize:        8192,
		WriteBufferSize:       4096,
		Concurrency:           256 * 1024,
		IdleTimeout:           30 * time.Second,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		DisableKeepalive:      false,
		DisableStartupMessage: true,
		ReduceMemoryUsage:     true,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          errorHandler,
	})

	return app
}

// errorHandler answers errors that escape handlers, such as unknown routes,
// with the same JSON shape as handled errors.
func errorHandler(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code != fiber.StatusInternalServerError {
		code := constant.ERR_VALIDATION_CODE
		if fiberErr.Code == fiber.StatusNotFound {
			code = constant.ERR_NOT_FOUND_ERROR
		}

		return ctx.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    code,
				"message": fiberErr.Message,
			},
		})
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    constant.ERR_INTERNAL_SERVER_ERROR_CODE,
			"message": constant.ERR_INTENRAL_SERVER_ERROR_MESSAGE,
		},
	})
}
