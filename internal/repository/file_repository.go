package repository

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pendingFilesKey = "files:pending"

type FileRepository struct {
	Log        *zap.Logger
	DB         *pgxpool.Pool
	DBCache    *redis.Client
	DBObject   *minio.Client
	BucketName string
	PublicUrl  string
}

func NewFileRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client, minio *minio.Client, bucketName string, publicUrl string) *FileRepository {
	return &FileRepository{
		Log:        zap,
		DB:         db,
		DBCache:    dbCache,
		DBObject:   minio,
		BucketName: bucketName,
		PublicUrl:  strings.TrimRight(publicUrl, "/"),
	}
}

func objectKey(fileId uuid.UUID) string {
	return fmt.Sprintf("files/%s", fileId)
}

func fileNotFound() error {
	return &model.ValidationError{
		Code:    constant.ERR_NOT_FOUND_ERROR,
		Message: "File not found",
		Param:   "fileId",
	}
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

// MinIO
func (repository *FileRepository) CreateFile(ctx context.Context, fileId uuid.UUID, upload model.ImageUpload) error {
	_, err := repository.DBObject.PutObject(ctx, repository.BucketName, objectKey(fileId), upload.Reader, upload.Size,
		minio.PutObjectOptions{
			ContentType:  upload.ContentType,
			CacheControl: "public, max-age=31536000, immutable",
		})
	if err != nil {
		return err
	}

	return nil
}

func (repository *FileRepository) DeleteFile(ctx context.Context, fileId uuid.UUID) error {
	err := repository.DBObject.RemoveObject(ctx, repository.BucketName, objectKey(fileId), minio.RemoveObjectOptions{})
	if err != nil {
		return err
	}

	return nil
}

func (repository *FileRepository) GetFile(ctx context.Context, fileId uuid.UUID) ([]byte, error) {
	object, err := repository.DBObject.GetObject(ctx, repository.BucketName, objectKey(fileId), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()

	_, err = object.Stat()
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fileNotFound()
		}
		return nil, err
	}

	return io.ReadAll(object)
}

// GetFilePreview returns the public preview URL of a stored file. It fails
// when the object does not exist.
func (repository *FileRepository) GetFilePreview(ctx context.Context, fileId uuid.UUID, options model.PreviewOptions) (string, error) {
	_, err := repository.DBObject.StatObject(ctx, repository.BucketName, objectKey(fileId), minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return "", fileNotFound()
		}
		return "", err
	}

	previewUrl := fmt.Sprintf("%s/api/files/%s/preview?width=%d&height=%d&gravity=%s&quality=%d",
		repository.PublicUrl, fileId, options.Width, options.Height, options.Gravity, options.Quality)

	return previewUrl, nil
}

// Redis - pending files
func (repository *FileRepository) MarkPending(ctx context.Context, fileId uuid.UUID, at time.Time) error {
	err := repository.DBCache.ZAdd(ctx, pendingFilesKey, redis.Z{
		Score:  float64(at.Unix()),
		Member: fileId.String(),
	}).Err()
	if err != nil {
		return err
	}

	return nil
}

func (repository *FileRepository) UnmarkPending(ctx context.Context, fileId uuid.UUID) error {
	err := repository.DBCache.ZRem(ctx, pendingFilesKey, fileId.String()).Err()
	if err != nil {
		return err
	}

	return nil
}

// ListPending returns files marked pending at or before the given time.
func (repository *FileRepository) ListPending(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	members, err := repository.DBCache.ZRangeByScore(ctx, pendingFilesKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(before.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, err
	}

	fileIds := make([]uuid.UUID, 0, len(members))
	for _, member := range members {
		fileId, err := uuid.Parse(member)
		if err != nil {
			repository.Log.Warn("dropping malformed pending file id", zap.String("member", member))
			_ = repository.DBCache.ZRem(ctx, pendingFilesKey, member).Err()
			continue
		}

		fileIds = append(fileIds, fileId)
	}

	return fileIds, nil
}

// Postgresql
func (repository *FileRepository) CountFileReferences(ctx context.Context, fileId uuid.UUID) (int, error) {
	query := "SELECT (SELECT COUNT(*) FROM posts WHERE image_id=$1) + (SELECT COUNT(*) FROM users WHERE image_id=$1)"

	var references int
	err := repository.DB.QueryRow(ctx, query, fileId).Scan(&references)
	if err != nil {
		return references, err
	}

	return references, nil
}
