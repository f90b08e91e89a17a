package config

import (
	"os"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// defaults apply when neither the env file nor the environment sets a key.
var defaults = map[string]interface{}{
	"GO_SERVER":             "localhost:8080",
	"PUBLIC_URL":            "http://localhost:8080",
	"MINIO_BUCKET_NAME":     "snapgram",
	"QUERY_CACHE_TTL":       "1m",
	"ORPHAN_SWEEP_INTERVAL": "10m",
	"POSTGRES_MAX_CONNS":    20,
	"POSTGRES_MIN_CONNS":    5,
	"SMTP_PORT":             587,
}

// NewKoanf loads configuration from defaults, then ENV_FILE (".env" when
// unset), then the process environment. Later sources win.
func NewKoanf(log *zap.Logger) *koanf.Koanf {
	k := koanf.New(".")

	err := k.Load(confmap.Provider(defaults, "."), nil)
	if err != nil {
		log.Fatal("failed to load default configuration", zap.Error(err))
	}

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}

	err = k.Load(file.Provider(envFile), dotenv.Parser())
	if err != nil {
		log.Debug("env file not loaded, using environment only", zap.String("file", envFile), zap.Error(err))
	}

	err = k.Load(env.Provider("", ".", nil), nil)
	if err != nil {
		log.Fatal("failed to load environment variables", zap.Error(err))
	}

	if k.String("JWT_SECRET_KEY") == "" {
		log.Warn("JWT_SECRET_KEY is empty, sign in and sign up will fail")
	}

	return k
}
