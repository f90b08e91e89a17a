package config

import (
	"time"

	http "github.com/ferdian3456/snapgram/internal/delivery/http"
	"github.com/ferdian3456/snapgram/internal/delivery/http/middleware"
	"github.com/ferdian3456/snapgram/internal/delivery/http/route"
	"github.com/ferdian3456/snapgram/internal/querycache"
	"github.com/ferdian3456/snapgram/internal/repository"
	"github.com/ferdian3456/snapgram/internal/usecase"
	"github.com/ferdian3456/snapgram/internal/util"
	"github.com/minio/minio-go/v7"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultQueryCacheTTL = time.Minute

type ServerConfig struct {
	Router  *fiber.App
	DB      *pgxpool.Pool
	DBCache *redis.Client
	Log     *zap.Logger
	Config  *koanf.Koanf
	MinIO   *minio.Client
}

type Usecases struct {
	User *usecase.UserUsecase
	Post *usecase.PostUsecase
	File *usecase.FileUsecase
}

// NewUsecases wires repositories, the query cache and the mailer into the
// usecases. Mail is only sent when SMTP_HOST is set.
func NewUsecases(config *ServerConfig) *Usecases {
	ttl := config.Config.Duration("QUERY_CACHE_TTL")
	if ttl <= 0 {
		ttl = defaultQueryCacheTTL
	}
	cache := querycache.New(config.Log, config.DBCache, ttl)

	var mailer usecase.Mailer
	if config.Config.String("SMTP_HOST") != "" {
		mailer = util.NewMailer(config.Config)
	}

	userRepository := repository.NewUserRepository(config.Log, config.DB, config.DBCache)
	postRepository := repository.NewPostRepository(config.Log, config.DB)
	saveRepository := repository.NewSaveRepository(config.Log, config.DB)
	fileRepository := repository.NewFileRepository(config.Log, config.DB, config.DBCache, config.MinIO,
		config.Config.String("MINIO_BUCKET_NAME"), config.Config.String("PUBLIC_URL"))

	return &Usecases{
		User: usecase.NewUserUsecase(userRepository, saveRepository, fileRepository, mailer, cache, config.Log, config.Config),
		Post: usecase.NewPostUsecase(postRepository, saveRepository, fileRepository, cache, config.Log),
		File: usecase.NewFileUsecase(fileRepository, config.Log),
	}
}

// Server registers every route on config.Router and returns the usecases
// behind them.
func Server(config *ServerConfig) *Usecases {
	usecases := NewUsecases(config)

	userController := http.NewUserController(usecases.User, usecases.Post, config.Log, config.Config)
	postController := http.NewPostController(usecases.Post, config.Log, config.Config)
	fileController := http.NewFileController(usecases.File, config.Log)

	authMiddleware := middleware.NewAuthMiddleware(config.Router, config.Log, config.Config, usecases.User)

	routeConfig := route.RouteConfig{
		App:            config.Router,
		Log:            config.Log,
		UserController: userController,
		PostController: postController,
		FileController: fileController,
		AuthMiddleware: authMiddleware,
	}

	routeConfig.SetupRoute()

	return usecases
}
