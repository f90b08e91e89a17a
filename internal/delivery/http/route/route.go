package route

import (
	"github.com/ferdian3456/snapgram/internal/delivery/http"
	"github.com/ferdian3456/snapgram/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type RouteConfig struct {
	App            *fiber.App
	Log            *zap.Logger
	AuthMiddleware *middleware.AuthMiddleware
	UserController *http.UserController
	PostController *http.PostController
	FileController *http.FileController
}

func (c *RouteConfig) SetupRoute() {
	api := c.App.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authGroup := api.Group("/auth")
	if c.Log != nil {
		authGroup.Use(middleware.SetupAuthRateLimiter(c.Log))
	}
	authGroup.Post("/signup", c.UserController.SignUp)
	authGroup.Post("/signin", c.UserController.SignIn)

	api.Get("/files/:fileId/preview", c.FileController.GetFilePreview)
	api.Get("/avatars/initials", c.FileController.GetInitialsAvatar)

	protected := c.AuthMiddleware.ProtectedRoute()

	userGroup := api.Group("/users", protected)
	userGroup.Get("/", c.UserController.GetUsers)
	userGroup.Get("/me", c.UserController.GetCurrentUser)
	userGroup.Get("/me/saves", c.UserController.GetSavedPosts)
	userGroup.Post("/logout", c.UserController.SignOut)
	userGroup.Get("/:userId", c.UserController.GetUserById)
	userGroup.Put("/:userId", c.UserController.UpdateUser)
	userGroup.Get("/:userId/posts", c.UserController.GetUserPosts)

	postGroup := api.Group("/posts", protected)
	postGroup.Get("/", c.PostController.GetInfinitePosts)
	postGroup.Post("/", c.PostController.CreatePost)
	postGroup.Get("/recent", c.PostController.GetRecentPosts)
	postGroup.Get("/search", c.PostController.SearchPosts)
	postGroup.Get("/:postId", c.PostController.GetPost)
	postGroup.Put("/:postId", c.PostController.UpdatePost)
	postGroup.Delete("/:postId", c.PostController.DeletePost)
	postGroup.Post("/:postId/likes", c.PostController.LikePost)
	postGroup.Delete("/:postId/likes", c.PostController.UnlikePost)
	postGroup.Post("/:postId/saves", c.PostController.SavePost)

	saveGroup := api.Group("/saves", protected)
	saveGroup.Delete("/:saveId", c.PostController.DeleteSave)
}
