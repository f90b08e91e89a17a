package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ferdian3456/snapgram/internal/config"
	"github.com/ferdian3456/snapgram/internal/delivery/http/middleware"
	"github.com/ferdian3456/snapgram/internal/exception"
	tracing "github.com/ferdian3456/snapgram/internal/middleware"
	"github.com/ferdian3456/snapgram/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2/middleware/compress"
	zapLog "go.uber.org/zap"
)

const (
	defaultSweepInterval = 10 * time.Minute
	orphanGracePeriod    = time.Hour
)

func main() {
	time.Local = time.UTC

	fiber := config.NewFiber()
	zap := config.NewZap()
	koanf := config.NewKoanf(zap)

	if koanf.Bool("AUTO_MIGRATE") {
		err := config.RunMigrations(koanf.String("POSTGRES_URL"))
		if err != nil {
			zap.Fatal("failed to run migrations", zapLog.Error(err))
		}
		zap.Info("database migrations applied")
	}

	var shutdownTracer func(context.Context) error
	if koanf.String("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		var err error
		shutdownTracer, err = observability.Init(context.Background(), config.LoadObservabilityConfig(koanf), zap)
		if err != nil {
			zap.Fatal("failed to initialize tracing", zapLog.Error(err))
		}
	}

	rds := config.NewRedisClient(koanf, zap)
	postgresql := config.NewPostgresqlPool(koanf, zap)
	minio := config.NewMinIO(koanf, zap)

	// Custom recovery middleware to handle panics with JSON response
	fiber.Use(exception.Recovery(zap))

	fiber.Use(otelfiber.Middleware())
	fiber.Use(tracing.TraceLoggerMiddleware(zap))

	prometheus := fiberprometheus.New("snapgram")
	prometheus.RegisterAt(fiber, "/metrics")
	fiber.Use(prometheus.Middleware)

	fiber.Use(middleware.SetupCORS(koanf.String("CORS_ALLOW_ORIGINS")))
	fiber.Use(middleware.SetupRateLimiter(zap))

	fiber.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	usecases := config.Server(&config.ServerConfig{
		Router:  fiber,
		DB:      postgresql,
		DBCache: rds,
		Log:     zap,
		Config:  koanf,
		MinIO:   minio,
	})

	sweepInterval := koanf.Duration("ORPHAN_SWEEP_INTERVAL")
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		usecases.File.RunOrphanSweeper(sweeperCtx, sweepInterval, orphanGracePeriod)
	}()

	GO_SERVER_PORT := koanf.String("GO_SERVER")

	zap.Info("Server is running on: " + GO_SERVER_PORT)

	go func() {
		err := fiber.Listen(GO_SERVER_PORT)
		if err != nil {
			zap.Fatal("error starting server", zapLog.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	zap.Info("got one of stop signals")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopSweeper()
	<-sweeperDone

	err := fiber.ShutdownWithContext(ctx)
	if err != nil {
		zap.Warn("timeout, forced kill!", zapLog.Error(err))
		_ = zap.Sync()
		os.Exit(1)
	}

	if shutdownTracer != nil {
		err = shutdownTracer(ctx)
		if err != nil {
			zap.Warn("failed to flush traces", zapLog.Error(err))
		}
	}

	postgresql.Close()
	_ = rds.Close()

	zap.Info("server has shut down gracefully")
	_ = zap.Sync()
}
