package config

import (
	"context"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// NewPostgresqlPool opens the traced connection pool. Pool bounds come from
// POSTGRES_MAX_CONNS and POSTGRES_MIN_CONNS.
func NewPostgresqlPool(config *koanf.Koanf, log *zap.Logger) *pgxpool.Pool {
	pgxConfig, err := pgxpool.ParseConfig(config.String("POSTGRES_URL"))
	if err != nil {
		log.Fatal("failed to parse postgresql config", zap.Error(err))
	}

	if maxConns := config.Int("POSTGRES_MAX_CONNS"); maxConns > 0 {
		pgxConfig.MaxConns = int32(maxConns)
	}
	if minConns := config.Int("POSTGRES_MIN_CONNS"); minConns > 0 && int32(minConns) <= pgxConfig.MaxConns {
		pgxConfig.MinConns = int32(minConns)
	}
	pgxConfig.MaxConnLifetime = 30 * time.Minute
	pgxConfig.MaxConnIdleTime = 5 * time.Minute
	pgxConfig.HealthCheckPeriod = time.Minute
	pgxConfig.ConnConfig.Tracer = otelpgx.NewTracer(otelpgx.WithTrimSQLInSpanName())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, pgxConfig)
	if err != nil {
		log.Fatal("failed to create pgx pool", zap.Error(err))
	}

	err = pool.Ping(ctx)
	if err != nil {
		log.Fatal("failed to ping postgresql database", zap.Error(err))
	}

	log.Info("postgresql pool ready", zap.Int32("maxConns", pgxConfig.MaxConns), zap.Int32("minConns", pgxConfig.MinConns))

	return pool
}
