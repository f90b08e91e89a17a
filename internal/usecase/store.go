package usecase

import (
	"context"
	"time"

	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/ferdian3456/snapgram/internal/query"
	"github.com/google/uuid"
)

type UserStore interface {
	CreateUser(ctx context.Context, user model.User) error
	CheckUsernameOrEmailUnique(ctx context.Context, username string, email string) (string, string, error)
	CheckUsernameUnique(ctx context.Context, username string, userId uuid.UUID) (int, error)
	GetUserAuth(ctx context.Context, email string) (uuid.UUID, string, error)
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	ListUsers(ctx context.Context, limit int) ([]model.UserResponse, error)
	UpdateUser(ctx context.Context, user model.User, previousImageId *uuid.UUID) error
	ListUserPostIds(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error)
	SetAuthTokenInCache(ctx context.Context, accessToken string, refreshToken string, userId uuid.UUID) error
	GetAccessTokenInCache(ctx context.Context, userId uuid.UUID) (string, error)
	RemoveAuthToken(ctx context.Context, userId uuid.UUID) error
}

type PostStore interface {
	CreatePost(ctx context.Context, post model.Post) error
	UpdatePost(ctx context.Context, post model.Post, previousImageId uuid.UUID) error
	DeletePost(ctx context.Context, postId uuid.UUID) error
	GetPostRecord(ctx context.Context, postId uuid.UUID) (model.Post, error)
	GetPost(ctx context.Context, postId uuid.UUID) (model.PostResponse, error)
	ListPosts(ctx context.Context, q query.Query) ([]model.PostResponse, error)
	ListSavedPosts(ctx context.Context, userId uuid.UUID) ([]model.PostResponse, error)
	AddLike(ctx context.Context, postId uuid.UUID, userId uuid.UUID) error
	RemoveLike(ctx context.Context, postId uuid.UUID, userId uuid.UUID) error
	GetLikes(ctx context.Context, postId uuid.UUID) ([]uuid.UUID, error)
}

type SaveStore interface {
	CreateSave(ctx context.Context, save model.Save) (model.Save, error)
	GetSave(ctx context.Context, saveId uuid.UUID) (model.Save, error)
	DeleteSave(ctx context.Context, saveId uuid.UUID) error
	ListUserSaves(ctx context.Context, userId uuid.UUID) ([]model.SaveResponse, error)
}

type FileStore interface {
	CreateFile(ctx context.Context, fileId uuid.UUID, upload model.ImageUpload) error
	DeleteFile(ctx context.Context, fileId uuid.UUID) error
	GetFile(ctx context.Context, fileId uuid.UUID) ([]byte, error)
	GetFilePreview(ctx context.Context, fileId uuid.UUID, options model.PreviewOptions) (string, error)
	MarkPending(ctx context.Context, fileId uuid.UUID, at time.Time) error
	UnmarkPending(ctx context.Context, fileId uuid.UUID) error
	ListPending(ctx context.Context, before time.Time) ([]uuid.UUID, error)
	CountFileReferences(ctx context.Context, fileId uuid.UUID) (int, error)
}

type Mailer interface {
	Send(receiverEmail string, subject string, body string) error
}
