package http

import (
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/ferdian3456/snapgram/internal/usecase"
	"github.com/ferdian3456/snapgram/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type UserController struct {
	UserUsecase *usecase.UserUsecase
	PostUsecase *usecase.PostUsecase
	Log         *zap.Logger
	Config      *koanf.Koanf
}

func NewUserController(userUsecase *usecase.UserUsecase, postUsecase *usecase.PostUsecase, zap *zap.Logger, koanf *koanf.Koanf) *UserController {
	return &UserController{
		UserUsecase: userUsecase,
		PostUsecase: postUsecase,
		Log:         zap,
		Config:      koanf,
	}
}

func (controller UserController) SignUp(ctx *fiber.Ctx) error {
	var payload model.UserSignUpRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, invalidRequestBody())
	}

	response, err := controller.UserUsecase.SignUp(ctx.UserContext(), payload)
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller UserController) SignIn(ctx *fiber.Ctx) error {
	var payload model.UserSignInRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, invalidRequestBody())
	}

	response, err := controller.UserUsecase.SignIn(ctx.UserContext(), payload)
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller UserController) GetCurrentUser(ctx *fiber.Ctx) error {
	response, err := controller.UserUsecase.GetCurrentUser(ctx.UserContext(), currentUserId(ctx))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller UserController) SignOut(ctx *fiber.Ctx) error {
	err := controller.UserUsecase.SignOut(ctx.UserContext(), currentUserId(ctx))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller UserController) GetUsers(ctx *fiber.Ctx) error {
	response, err := controller.UserUsecase.GetUsers(ctx.UserContext(), ctx.QueryInt("limit", 0))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller UserController) GetUserById(ctx *fiber.Ctx) error {
	response, err := controller.UserUsecase.GetUserById(ctx.UserContext(), ctx.Params("userId"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller UserController) GetSavedPosts(ctx *fiber.Ctx) error {
	response, err := controller.PostUsecase.GetSavedPosts(ctx.UserContext(), currentUserId(ctx))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response.Data)
}

func (controller UserController) GetUserPosts(ctx *fiber.Ctx) error {
	response, err := controller.PostUsecase.GetUserPosts(ctx.UserContext(), ctx.Params("userId"), ctx.Query("cursor"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithPage(ctx, response.Data, response.Page)
}

// UpdateUser takes a multipart form with name, username, bio and an optional
// avatar file.
func (controller UserController) UpdateUser(ctx *fiber.Ctx) error {
	payload := model.UserUpdateRequest{
		Name:     ctx.FormValue("name"),
		Username: ctx.FormValue("username"),
	}

	if bio := ctx.FormValue("bio"); bio != "" {
		payload.Bio = &bio
	}

	avatar, err := formImage(ctx, "avatar", util.ProcessAvatarImage)
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	response, err := controller.UserUsecase.UpdateUser(ctx.UserContext(), currentUserId(ctx), ctx.Params("userId"), payload, avatar)
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}
