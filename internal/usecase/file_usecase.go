package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/ferdian3456/snapgram/internal/observability"
	"github.com/ferdian3456/snapgram/internal/util"
	"github.com/google/uuid"

	"go.uber.org/zap"
)

const maxPreviewSide = 4000

var uploadPreviewOptions = model.PreviewOptions{
	Width:   constant.PREVIEW_WIDTH,
	Height:  constant.PREVIEW_HEIGHT,
	Gravity: constant.PREVIEW_GRAVITY,
	Quality: constant.PREVIEW_QUALITY,
}

type FileUsecase struct {
	FileRepository FileStore
	Log            *zap.Logger
}

func NewFileUsecase(fileRepository FileStore, zap *zap.Logger) *FileUsecase {
	return &FileUsecase{
		FileRepository: fileRepository,
		Log:            zap,
	}
}

func (usecase *FileUsecase) GetFilePreview(ctx context.Context, fileIdParam string, options model.PreviewOptions) ([]byte, error) {
	fileId, err := uuid.Parse(fileIdParam)
	if err != nil {
		return nil, &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "File not found",
			Param:   "fileId",
		}
	}

	if options.Gravity == "" {
		options.Gravity = "center"
	}

	switch {
	case options.Width < 0 || options.Width > maxPreviewSide:
		return nil, previewParamError("width", "Width must be between 0 and 4000")
	case options.Height < 0 || options.Height > maxPreviewSide:
		return nil, previewParamError("height", "Height must be between 0 and 4000")
	case options.Quality < 0 || options.Quality > 100:
		return nil, previewParamError("quality", "Quality must be between 0 and 100")
	case !util.ValidPreviewGravity(options.Gravity):
		return nil, previewParamError("gravity", "Gravity must be one of center, top, bottom, left, right")
	}

	data, err := usecase.FileRepository.GetFile(ctx, fileId)
	if err != nil {
		return nil, err
	}

	return util.RenderPreview(data, options)
}

func (usecase *FileUsecase) GetInitialsAvatar(name string) ([]byte, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Name is required to not be empty",
			Param:   "name",
		}
	}

	return util.RenderInitialsAvatar(name, 128)
}

// SweepOrphans deletes files that were marked pending before now-grace and
// are referenced by no post and no user. Referenced files are only unmarked.
func (usecase *FileUsecase) SweepOrphans(ctx context.Context, grace time.Duration) (int, error) {
	pending, err := usecase.FileRepository.ListPending(ctx, time.Now().Add(-grace))
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, fileId := range pending {
		references, err := usecase.FileRepository.CountFileReferences(ctx, fileId)
		if err != nil {
			return deleted, err
		}

		if references > 0 {
			err = usecase.FileRepository.UnmarkPending(ctx, fileId)
			if err != nil {
				return deleted, err
			}
			continue
		}

		err = usecase.FileRepository.DeleteFile(ctx, fileId)
		if err != nil {
			orphanSweepFailures.Inc()
			usecase.Log.Warn("failed to delete orphaned file", zap.String("fileId", fileId.String()), zap.Error(err))
			continue
		}

		err = usecase.FileRepository.UnmarkPending(ctx, fileId)
		if err != nil {
			return deleted, err
		}

		deleted++
		orphanFilesDeleted.Inc()
	}

	return deleted, nil
}

// RunOrphanSweeper sweeps every interval until ctx is cancelled.
func (usecase *FileUsecase) RunOrphanSweeper(ctx context.Context, interval time.Duration, grace time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := usecase.SweepOrphans(ctx, grace)
			if err != nil {
				usecase.Log.Error("orphan file sweep failed", zap.Error(err))
				continue
			}

			if deleted > 0 {
				usecase.Log.Info("orphan file sweep finished", zap.Int("deleted", deleted))
			}
		}
	}
}

func previewParamError(param string, message string) error {
	return &model.ValidationError{
		Code:    constant.ERR_VALIDATION_CODE,
		Message: message,
		Param:   param,
	}
}

// uploadImage stores image under a new file id and resolves its preview URL.
// The file stays marked pending until the caller has written the document that
// references it and calls keepFile. If the preview cannot be resolved the file
// is deleted again.
func uploadImage(ctx context.Context, files FileStore, log *zap.Logger, image model.ImageUpload) (uuid.UUID, string, error) {
	fileId := uuid.New()

	err := files.MarkPending(ctx, fileId, time.Now())
	if err != nil {
		return uuid.Nil, "", err
	}

	err = files.CreateFile(ctx, fileId, image)
	if err != nil {
		discardFile(ctx, files, log, fileId)
		return uuid.Nil, "", err
	}

	imageUrl, err := files.GetFilePreview(ctx, fileId, uploadPreviewOptions)
	if err != nil {
		discardFile(ctx, files, log, fileId)
		return uuid.Nil, "", err
	}

	return fileId, imageUrl, nil
}

// discardFile deletes a file that no document references. A failed delete
// leaves the file marked pending for the orphan sweeper.
func discardFile(ctx context.Context, files FileStore, log *zap.Logger, fileId uuid.UUID) {
	ctx = context.WithoutCancel(ctx)
	log = observability.WithContext(ctx, log)

	err := files.DeleteFile(ctx, fileId)
	if err != nil {
		log.Warn("failed to delete file, leaving it to the orphan sweeper", zap.String("fileId", fileId.String()), zap.Error(err))
		return
	}

	err = files.UnmarkPending(ctx, fileId)
	if err != nil {
		log.Warn("failed to unmark deleted file", zap.String("fileId", fileId.String()), zap.Error(err))
	}
}

func isConflict(err error) bool {
	var validationErr *model.ValidationError
	return errors.As(err, &validationErr) && validationErr.Code == constant.ERR_CONFLICT_ERROR
}

// keepFile unmarks a file that is now referenced by a document.
func keepFile(ctx context.Context, files FileStore, log *zap.Logger, fileId uuid.UUID) {
	err := files.UnmarkPending(context.WithoutCancel(ctx), fileId)
	if err != nil {
		observability.WithContext(ctx, log).Warn("failed to unmark stored file", zap.String("fileId", fileId.String()), zap.Error(err))
	}
}
