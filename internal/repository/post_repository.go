package repository

import (
	"context"
	"errors"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/ferdian3456/snapgram/internal/query"
	"github.com/google/uuid"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PostRepository struct {
	Log *zap.Logger
	DB  *pgxpool.Pool
}

func NewPostRepository(zap *zap.Logger, db *pgxpool.Pool) *PostRepository {
	return &PostRepository{
		Log: zap,
		DB:  db,
	}
}

// PostTable lists the post columns a listing query may filter or order on.
var PostTable = query.Table{
	Name:   "posts",
	Alias:  "p",
	Fields: []string{"id", "creator_id", "caption", "location", "create_datetime"},
}

const postResponseColumns = `p.id, p.caption, p.location, p.tags, p.image_url, p.image_id, p.create_datetime, p.update_datetime,
	u.id, u.name, u.username, u.image_url,
	ARRAY(SELECT l.user_id FROM post_likes l WHERE l.post_id = p.id ORDER BY l.create_datetime, l.user_id)`

const postResponseFrom = " FROM posts p INNER JOIN users u ON u.id = p.creator_id"

func scanPostResponse(row pgx.Row) (model.PostResponse, error) {
	var post model.PostResponse
	err := row.Scan(&post.Id, &post.Caption, &post.Location, &post.Tags, &post.ImageUrl, &post.ImageId, &post.CreateDatetime, &post.UpdateDatetime,
		&post.Creator.Id, &post.Creator.Name, &post.Creator.Username, &post.Creator.ImageUrl,
		&post.Likes)
	if err != nil {
		return post, err
	}

	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Likes == nil {
		post.Likes = []uuid.UUID{}
	}

	return post, nil
}

func postNotFound() error {
	return &model.ValidationError{
		Code:    constant.ERR_NOT_FOUND_ERROR,
		Message: "Post not found",
		Param:   "postId",
	}
}

// Postgresql
func (repository *PostRepository) CreatePost(ctx context.Context, post model.Post) error {
	query := "INSERT INTO posts (id,creator_id,caption,location,tags,image_url,image_id,create_datetime,update_datetime) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)"

	_, err := repository.DB.Exec(ctx, query, post.Id, post.CreatorId, post.Caption, post.Location, post.Tags, post.ImageUrl, post.ImageId, post.CreateDatetime, post.UpdateDatetime)
	if err != nil {
		return err
	}

	return nil
}

// UpdatePost writes post only while the stored image is still
// previousImageId. A post whose image was swapped meanwhile yields a conflict.
func (repository *PostRepository) UpdatePost(ctx context.Context, post model.Post, previousImageId uuid.UUID) error {
	query := "UPDATE posts SET caption=$1,location=$2,tags=$3,image_url=$4,image_id=$5,update_datetime=$6 WHERE id=$7 AND image_id=$8"

	tag, err := repository.DB.Exec(ctx, query, post.Caption, post.Location, post.Tags, post.ImageUrl, post.ImageId, post.UpdateDatetime, post.Id, previousImageId)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return repository.missingOrConflict(ctx, post.Id)
	}

	return nil
}

func (repository *PostRepository) missingOrConflict(ctx context.Context, postId uuid.UUID) error {
	query := "SELECT EXISTS (SELECT 1 FROM posts WHERE id=$1)"

	var exists bool
	err := repository.DB.QueryRow(ctx, query, postId).Scan(&exists)
	if err != nil {
		return err
	}

	if !exists {
		return postNotFound()
	}

	return &model.ValidationError{
		Code:    constant.ERR_CONFLICT_ERROR,
		Message: "Post was changed by another request, please retry",
		Param:   "postId",
	}
}

func (repository *PostRepository) DeletePost(ctx context.Context, postId uuid.UUID) error {
	query := "DELETE FROM posts WHERE id=$1"

	tag, err := repository.DB.Exec(ctx, query, postId)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return postNotFound()
	}

	return nil
}

// GetPostRecord returns the stored post without its creator or likes.
func (repository *PostRepository) GetPostRecord(ctx context.Context, postId uuid.UUID) (model.Post, error) {
	query := "SELECT id,creator_id,caption,location,tags,image_url,image_id,create_datetime,update_datetime FROM posts WHERE id=$1"

	post := model.Post{}
	err := repository.DB.QueryRow(ctx, query, postId).Scan(&post.Id, &post.CreatorId, &post.Caption, &post.Location, &post.Tags, &post.ImageUrl, &post.ImageId, &post.CreateDatetime, &post.UpdateDatetime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post, postNotFound()
		}
		return post, err
	}

	return post, nil
}

func (repository *PostRepository) GetPost(ctx context.Context, postId uuid.UUID) (model.PostResponse, error) {
	query := "SELECT " + postResponseColumns + postResponseFrom + " WHERE p.id = $1"

	post, err := scanPostResponse(repository.DB.QueryRow(ctx, query, postId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post, postNotFound()
		}
		return post, err
	}

	return post, nil
}

// ListPosts runs a listing query over posts joined with their creators.
func (repository *PostRepository) ListPosts(ctx context.Context, q query.Query) ([]model.PostResponse, error) {
	clause, args, err := q.Clause(PostTable, 0)
	if err != nil {
		return nil, err
	}

	rows, err := repository.DB.Query(ctx, "SELECT "+postResponseColumns+postResponseFrom+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.PostResponse{}
	for rows.Next() {
		post, err := scanPostResponse(rows)
		if err != nil {
			return nil, err
		}

		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// ListSavedPosts returns the posts saved by userId, most recently saved first.
func (repository *PostRepository) ListSavedPosts(ctx context.Context, userId uuid.UUID) ([]model.PostResponse, error) {
	query := "SELECT " + postResponseColumns + postResponseFrom +
		" INNER JOIN saves s ON s.post_id = p.id WHERE s.user_id = $1 ORDER BY s.create_datetime DESC, s.id DESC"

	rows, err := repository.DB.Query(ctx, query, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.PostResponse{}
	for rows.Next() {
		post, err := scanPostResponse(rows)
		if err != nil {
			return nil, err
		}

		posts = append(posts, post)
	}

	return posts, rows.Err()
}

func (repository *PostRepository) AddLike(ctx context.Context, postId uuid.UUID, userId uuid.UUID) error {
	query := "INSERT INTO post_likes (post_id,user_id,create_datetime) VALUES ($1,$2,NOW()) ON CONFLICT (post_id,user_id) DO NOTHING"

	_, err := repository.DB.Exec(ctx, query, postId, userId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *PostRepository) RemoveLike(ctx context.Context, postId uuid.UUID, userId uuid.UUID) error {
	query := "DELETE FROM post_likes WHERE post_id=$1 AND user_id=$2"

	_, err := repository.DB.Exec(ctx, query, postId, userId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *PostRepository) GetLikes(ctx context.Context, postId uuid.UUID) ([]uuid.UUID, error) {
	query := "SELECT user_id FROM post_likes WHERE post_id=$1 ORDER BY create_datetime, user_id"

	rows, err := repository.DB.Query(ctx, query, postId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := []uuid.UUID{}
	for rows.Next() {
		var userId uuid.UUID
		err = rows.Scan(&userId)
		if err != nil {
			return nil, err
		}

		likes = append(likes, userId)
	}

	return likes, rows.Err()
}
