package repository

import (
	"context"
	"errors"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/google/uuid"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type SaveRepository struct {
	Log *zap.Logger
	DB  *pgxpool.Pool
}

func NewSaveRepository(zap *zap.Logger, db *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{
		Log: zap,
		DB:  db,
	}
}

// CreateSave stores the save, or returns the existing one when the user has
// already saved the post.
func (repository *SaveRepository) CreateSave(ctx context.Context, save model.Save) (model.Save, error) {
	query := `INSERT INTO saves (id,user_id,post_id,create_datetime) VALUES ($1,$2,$3,$4)
			ON CONFLICT (user_id,post_id) DO UPDATE SET post_id = EXCLUDED.post_id
			RETURNING id,user_id,post_id,create_datetime`

	stored := model.Save{}
	err := repository.DB.QueryRow(ctx, query, save.Id, save.UserId, save.PostId, save.CreateDatetime).Scan(&stored.Id, &stored.UserId, &stored.PostId, &stored.CreateDatetime)
	if err != nil {
		return stored, err
	}

	return stored, nil
}

func (repository *SaveRepository) GetSave(ctx context.Context, saveId uuid.UUID) (model.Save, error) {
	query := "SELECT id,user_id,post_id,create_datetime FROM saves WHERE id=$1"

	save := model.Save{}
	err := repository.DB.QueryRow(ctx, query, saveId).Scan(&save.Id, &save.UserId, &save.PostId, &save.CreateDatetime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return save, &model.ValidationError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Save not found",
				Param:   "saveId",
			}
		}
		return save, err
	}

	return save, nil
}

func (repository *SaveRepository) DeleteSave(ctx context.Context, saveId uuid.UUID) error {
	query := "DELETE FROM saves WHERE id=$1"

	_, err := repository.DB.Exec(ctx, query, saveId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *SaveRepository) ListUserSaves(ctx context.Context, userId uuid.UUID) ([]model.SaveResponse, error) {
	query := "SELECT id,post_id FROM saves WHERE user_id=$1 ORDER BY create_datetime DESC, id DESC"

	rows, err := repository.DB.Query(ctx, query, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	saves := []model.SaveResponse{}
	for rows.Next() {
		var save model.SaveResponse
		err = rows.Scan(&save.Id, &save.PostId)
		if err != nil {
			return nil, err
		}

		saves = append(saves, save)
	}

	return saves, rows.Err()
}
