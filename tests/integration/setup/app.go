package setup

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/ferdian3456/snapgram/internal/config"
	"github.com/ferdian3456/snapgram/internal/exception"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	TestBucketName = "snapgram-test"
	TestPublicUrl  = "http://localhost:8080"
)

type TestApp struct {
	App      *fiber.App
	DB       *pgxpool.Pool
	Redis    *redis.Client
	MinIO    *minio.Client
	Usecases *config.Usecases
}

func newTestConfig(infra *TestInfra) *koanf.Koanf {
	testConfig := koanf.New(".")
	_ = testConfig.Set("JWT_SECRET_KEY", "test-secret-key-for-jwt-token-generation")
	_ = testConfig.Set("MINIO_BUCKET_NAME", TestBucketName)
	_ = testConfig.Set("PUBLIC_URL", TestPublicUrl)
	_ = testConfig.Set("QUERY_CACHE_TTL", "1m")

	smtpHost, smtpPort, _ := strings.Cut(infra.MailhogSMTP, ":")
	port, _ := strconv.Atoi(smtpPort)
	_ = testConfig.Set("SMTP_HOST", smtpHost)
	_ = testConfig.Set("SMTP_PORT", port)
	_ = testConfig.Set("SENDER_NAME", "Snapgram Test <noreply@snapgram.test>")
	_ = testConfig.Set("SENDER_EMAIL", "noreply@snapgram.test")
	_ = testConfig.Set("SENDER_PASSWORD", "")

	return testConfig
}

// SetupTestApp connects to the running infrastructure and registers every
// route the way cmd/main.go does.
func SetupTestApp(t *testing.T, infra *TestInfra) *TestApp {
	t.Helper()
	ctx := context.Background()

	dbPool, err := pgxpool.New(ctx, infra.PgURL)
	if err != nil {
		t.Fatalf("failed to connect to test db: %v", err)
	}
	t.Cleanup(dbPool.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: infra.RedisURL})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Fatalf("failed to connect to test redis: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })

	minioClient, err := minio.New(infra.MinioURL, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Fatalf("failed to connect to minio: %v", err)
	}

	_, err = config.EnsureBucket(ctx, minioClient, TestBucketName, "")
	if err != nil {
		t.Fatalf("failed to prepare minio bucket: %v", err)
	}

	app := config.NewFiber()
	app.Use(exception.Recovery(zap.NewNop()))

	usecases := config.Server(&config.ServerConfig{
		Router:  app,
		DB:      dbPool,
		DBCache: redisClient,
		Log:     zap.NewNop(),
		Config:  newTestConfig(infra),
		MinIO:   minioClient,
	})

	return &TestApp{
		App:      app,
		DB:       dbPool,
		Redis:    redisClient,
		MinIO:    minioClient,
		Usecases: usecases,
	}
}
