package setup

import (
	"context"
	"fmt"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestInfra is the set of containers one integration test runs against.
type TestInfra struct {
	containers []testcontainers.Container

	PgURL       string
	RedisURL    string
	MinioURL    string
	MailhogURL  string
	MailhogSMTP string
}

func endpoint(ctx context.Context, container testcontainers.Container, port string) (string, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}

	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s:%s", host, mapped.Port()), nil
}

func startGeneric(ctx context.Context, request testcontainers.ContainerRequest) (testcontainers.Container, error) {
	return testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: request,
		Started:          true,
	})
}

// StartInfra starts PostgreSQL, Redis, MinIO and MailHog. On failure every
// container started so far is terminated.
func StartInfra(ctx context.Context, t *testing.T) (infra *TestInfra, err error) {
	infra = &TestInfra{}
	defer func() {
		if err != nil {
			_ = infra.Terminate(ctx, t)
			infra = nil
		}
	}()

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("snapgram_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		return infra, fmt.Errorf("start postgres: %w", err)
	}
	infra.containers = append(infra.containers, pgContainer)

	infra.PgURL, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return infra, fmt.Errorf("postgres connection string: %w", err)
	}

	redisContainer, err := redis.Run(ctx, "redis:7-alpine")
	if err != nil {
		return infra, fmt.Errorf("start redis: %w", err)
	}
	infra.containers = append(infra.containers, redisContainer)

	infra.RedisURL, err = endpoint(ctx, redisContainer, "6379")
	if err != nil {
		return infra, fmt.Errorf("redis endpoint: %w", err)
	}

	minioContainer, err := startGeneric(ctx, testcontainers.ContainerRequest{
		Image: "minio/minio:latest",
		Cmd:   []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     "minioadmin",
			"MINIO_ROOT_PASSWORD": "minioadmin",
		},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
	})
	if err != nil {
		return infra, fmt.Errorf("start minio: %w", err)
	}
	infra.containers = append(infra.containers, minioContainer)

	infra.MinioURL, err = endpoint(ctx, minioContainer, "9000")
	if err != nil {
		return infra, fmt.Errorf("minio endpoint: %w", err)
	}

	mailhogContainer, err := startGeneric(ctx, testcontainers.ContainerRequest{
		Image:        "mailhog/mailhog:latest",
		ExposedPorts: []string{"1025/tcp", "8025/tcp"},
		WaitingFor:   wait.ForListeningPort("1025/tcp"),
	})
	if err != nil {
		return infra, fmt.Errorf("start mailhog: %w", err)
	}
	infra.containers = append(infra.containers, mailhogContainer)

	infra.MailhogSMTP, err = endpoint(ctx, mailhogContainer, "1025")
	if err != nil {
		return infra, fmt.Errorf("mailhog smtp endpoint: %w", err)
	}

	mailhogAPI, err := endpoint(ctx, mailhogContainer, "8025")
	if err != nil {
		return infra, fmt.Errorf("mailhog api endpoint: %w", err)
	}
	infra.MailhogURL = "http://" + mailhogAPI

	t.Logf("infra ready: postgres=%s redis=%s minio=%s mailhog=%s", infra.PgURL, infra.RedisURL, infra.MinioURL, infra.MailhogURL)

	return infra, nil
}

// Terminate stops every container in reverse start order.
func (infra *TestInfra) Terminate(ctx context.Context, t *testing.T) error {
	var firstErr error
	for i := len(infra.containers) - 1; i >= 0; i-- {
		err := infra.containers[i].Terminate(ctx)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	infra.containers = nil

	if firstErr != nil {
		t.Logf("failed to terminate test infrastructure: %v", firstErr)
	}
	return firstErr
}
