package config

import (
	"context"
	"fmt"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// NewMinIO connects to object storage and makes sure the image bucket exists.
func NewMinIO(config *koanf.Koanf, log *zap.Logger) *minio.Client {
	minioClient, err := minio.New(config.String("MINIO_URL"), &minio.Options{
		Creds:  credentials.NewStaticV4(config.String("MINIO_USER"), config.String("MINIO_PASSWORD"), ""),
		Secure: config.Bool("MINIO_USE_SSL"),
		Region: config.String("MINIO_LOCATION"),
	})
	if err != nil {
		log.Fatal("failed to initialize minio client", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bucketName := config.String("MINIO_BUCKET_NAME")
	created, err := EnsureBucket(ctx, minioClient, bucketName, config.String("MINIO_LOCATION"))
	if err != nil {
		log.Fatal("failed to prepare minio bucket", zap.String("bucket", bucketName), zap.Error(err))
	}

	log.Info("minio bucket ready", zap.String("bucket", bucketName), zap.Bool("created", created))

	return minioClient
}

// EnsureBucket creates bucketName unless it already exists and reports whether
// it was created.
func EnsureBucket(ctx context.Context, client *minio.Client, bucketName string, region string) (bool, error) {
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return false, fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return false, nil
	}

	err = client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: region})
	if err != nil {
		return false, fmt.Errorf("make bucket: %w", err)
	}

	return true, nil
}
