package http

import (
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/ferdian3456/snapgram/internal/usecase"
	"github.com/ferdian3456/snapgram/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type PostController struct {
	PostUsecase *usecase.PostUsecase
	Log         *zap.Logger
	Config      *koanf.Koanf
}

func NewPostController(postUsecase *usecase.PostUsecase, zap *zap.Logger, koanf *koanf.Koanf) *PostController {
	return &PostController{
		PostUsecase: postUsecase,
		Log:         zap,
		Config:      koanf,
	}
}

func (controller *PostController) CreatePost(ctx *fiber.Ctx) error {
	payload := model.PostCreateRequest{
		Caption:  ctx.FormValue("caption"),
		Location: ctx.FormValue("location"),
		Tags:     ctx.FormValue("tags"),
	}

	image, err := formImage(ctx, "image", util.ProcessPostImage)
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	response, err := controller.PostUsecase.CreatePost(ctx.UserContext(), currentUserId(ctx), payload, image)
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *PostController) UpdatePost(ctx *fiber.Ctx) error {
	payload := model.PostUpdateRequest{
		Caption:  ctx.FormValue("caption"),
		Location: ctx.FormValue("location"),
		Tags:     ctx.FormValue("tags"),
	}

	image, err := formImage(ctx, "image", util.ProcessPostImage)
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	response, err := controller.PostUsecase.UpdatePost(ctx.UserContext(), currentUserId(ctx), ctx.Params("postId"), payload, image)
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *PostController) DeletePost(ctx *fiber.Ctx) error {
	err := controller.PostUsecase.DeletePost(ctx.UserContext(), currentUserId(ctx), ctx.Params("postId"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller *PostController) GetRecentPosts(ctx *fiber.Ctx) error {
	response, err := controller.PostUsecase.GetRecentPosts(ctx.UserContext(), ctx.Query("cursor"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithPage(ctx, response.Data, response.Page)
}

func (controller *PostController) GetInfinitePosts(ctx *fiber.Ctx) error {
	response, err := controller.PostUsecase.GetInfinitePosts(ctx.UserContext(), ctx.Query("cursor"), ctx.QueryInt("limit", 0))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithPage(ctx, response.Data, response.Page)
}

func (controller *PostController) SearchPosts(ctx *fiber.Ctx) error {
	response, err := controller.PostUsecase.SearchPosts(ctx.UserContext(), ctx.Query("q"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithPage(ctx, response.Data, response.Page)
}

func (controller *PostController) GetPost(ctx *fiber.Ctx) error {
	response, err := controller.PostUsecase.GetPostById(ctx.UserContext(), ctx.Params("postId"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *PostController) LikePost(ctx *fiber.Ctx) error {
	response, err := controller.PostUsecase.LikePost(ctx.UserContext(), currentUserId(ctx), ctx.Params("postId"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *PostController) UnlikePost(ctx *fiber.Ctx) error {
	response, err := controller.PostUsecase.UnlikePost(ctx.UserContext(), currentUserId(ctx), ctx.Params("postId"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *PostController) SavePost(ctx *fiber.Ctx) error {
	response, err := controller.PostUsecase.SavePost(ctx.UserContext(), currentUserId(ctx), ctx.Params("postId"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *PostController) DeleteSave(ctx *fiber.Ctx) error {
	err := controller.PostUsecase.DeleteSave(ctx.UserContext(), currentUserId(ctx), ctx.Params("saveId"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}
