package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/ferdian3456/snapgram/internal/util"
	"github.com/google/uuid"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type UserRepository struct {
	Log     *zap.Logger
	DB      *pgxpool.Pool
	DBCache *redis.Client
}

func NewUserRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client) *UserRepository {
	return &UserRepository{
		Log:     zap,
		DB:      db,
		DBCache: dbCache,
	}
}

// Postgresql
func (repository *UserRepository) CreateUser(ctx context.Context, user model.User) error {
	query := "INSERT INTO users (id,name,username,email,password,bio,image_url,image_id,create_datetime,update_datetime) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)"

	_, err := repository.DB.Exec(ctx, query, user.Id, user.Name, user.Username, user.Email, user.Password, user.Bio, user.ImageUrl, user.ImageId, user.CreateDatetime, user.UpdateDatetime)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) CheckUsernameOrEmailUnique(ctx context.Context, username string, email string) (string, string, error) {
	query := "SELECT username,email FROM users WHERE username=$1 OR email=$2 LIMIT 1"

	var existUsername string
	var existEmail string
	err := repository.DB.QueryRow(ctx, query, username, email).Scan(&existUsername, &existEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return existUsername, existEmail, nil
		}
		return existUsername, existEmail, err
	}

	return existUsername, existEmail, nil
}

func (repository *UserRepository) CheckUsernameUnique(ctx context.Context, username string, userId uuid.UUID) (int, error) {
	query := "SELECT 1 FROM users WHERE username=$1 AND id<>$2 LIMIT 1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, username, userId).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exists, nil
		}
		return exists, err
	}

	return exists, nil
}

func (repository *UserRepository) GetUserAuth(ctx context.Context, email string) (uuid.UUID, string, error) {
	query := "SELECT id,password FROM users WHERE email=$1 LIMIT 1"

	var id uuid.UUID
	var passwordHash string

	err := repository.DB.QueryRow(ctx, query, email).Scan(&id, &passwordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return id, passwordHash, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Email or password is incorrect",
				Param:   "email",
			}
		}
		return id, passwordHash, err
	}

	return id, passwordHash, nil
}

func (repository *UserRepository) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := "SELECT id,name,username,email,password,bio,image_url,image_id,create_datetime,update_datetime FROM users WHERE id=$1"

	user := model.User{}
	err := repository.DB.QueryRow(ctx, query, id).Scan(&user.Id, &user.Name, &user.Username, &user.Email, &user.Password, &user.Bio, &user.ImageUrl, &user.ImageId, &user.CreateDatetime, &user.UpdateDatetime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, &model.ValidationError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "User not found",
				Param:   "userId",
			}
		}
		return user, err
	}

	return user, nil
}

// ListUserPostIds returns the ids of every post the user created.
func (repository *UserRepository) ListUserPostIds(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error) {
	query := "SELECT id FROM posts WHERE creator_id=$1"

	rows, err := repository.DB.Query(ctx, query, userId)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

func (repository *UserRepository) ListUsers(ctx context.Context, limit int) ([]model.UserResponse, error) {
	query := `SELECT id,name,username,email,bio,image_url,create_datetime,update_datetime
			FROM users
			ORDER BY create_datetime DESC, id DESC
			LIMIT $1`

	rows, err := repository.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.UserResponse{}
	for rows.Next() {
		var user model.UserResponse
		err = rows.Scan(&user.Id, &user.Name, &user.Username, &user.Email, &user.Bio, &user.ImageUrl, &user.CreateDatetime, &user.UpdateDatetime)
		if err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	return users, rows.Err()
}

// UpdateUser writes user only while the stored avatar is still
// previousImageId (nil for the initials avatar).
func (repository *UserRepository) UpdateUser(ctx context.Context, user model.User, previousImageId *uuid.UUID) error {
	query := "UPDATE users SET name=$1,username=$2,bio=$3,image_url=$4,image_id=$5,update_datetime=$6 WHERE id=$7 AND image_id IS NOT DISTINCT FROM $8"

	tag, err := repository.DB.Exec(ctx, query, user.Name, user.Username, user.Bio, user.ImageUrl, user.ImageId, user.UpdateDatetime, user.Id, previousImageId)
	if err != nil {
		return err
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = repository.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id=$1)", user.Id).Scan(&exists)
	if err != nil {
		return err
	}

	if !exists {
		return &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "User not found",
			Param:   "userId",
		}
	}

	return &model.ValidationError{
		Code:    constant.ERR_CONFLICT_ERROR,
		Message: "Profile was changed by another request, please retry",
		Param:   "userId",
	}
}

// Redis - Cache
func (repository *UserRepository) SetAuthTokenInCache(ctx context.Context, accessToken string, refreshToken string, userId uuid.UUID) error {
	accessTokenKey := fmt.Sprintf("auth:accessToken:%s", userId)
	refreshTokenKey := fmt.Sprintf("auth:refreshToken:%s", userId)

	// Hash tokens before storing in Redis for security
	hashedAccessToken := util.HashToken(accessToken)
	hashedRefreshToken := util.HashToken(refreshToken)

	pipe := repository.DBCache.TxPipeline()
	pipe.Set(ctx, accessTokenKey, hashedAccessToken, util.AccessTokenDuration)
	pipe.Set(ctx, refreshTokenKey, hashedRefreshToken, util.RefreshTokenDuration)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) GetAccessTokenInCache(ctx context.Context, userId uuid.UUID) (string, error) {
	accessTokenKey := fmt.Sprintf("auth:accessToken:%s", userId)
	hashedToken, err := repository.DBCache.Get(ctx, accessTokenKey).Result()
	if err == redis.Nil {
		return hashedToken, &model.ValidationError{
			Code:    constant.ERR_UNATHORIZED_ERROR,
			Message: "Authorization token not found or expired",
			Param:   "accessToken",
		}
	} else if err != nil {
		return hashedToken, err
	}

	return hashedToken, nil
}

func (repository *UserRepository) RemoveAuthToken(ctx context.Context, userId uuid.UUID) error {
	accessTokenKey := fmt.Sprintf("auth:accessToken:%s", userId)
	refreshTokenKey := fmt.Sprintf("auth:refreshToken:%s", userId)

	err := repository.DBCache.Del(ctx, accessTokenKey, refreshTokenKey).Err()
	if err != nil {
		return err
	}

	return nil
}

