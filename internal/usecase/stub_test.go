package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/ferdian3456/snapgram/internal/query"
	"github.com/google/uuid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createPostFn     func(context.Context, model.Post) error
	updatePostFn     func(context.Context, model.Post, uuid.UUID) error
	deletePostFn     func(context.Context, uuid.UUID) error
	getPostRecordFn  func(context.Context, uuid.UUID) (model.Post, error)
	getPostFn        func(context.Context, uuid.UUID) (model.PostResponse, error)
	listPostsFn      func(context.Context, query.Query) ([]model.PostResponse, error)
	listSavedPostsFn func(context.Context, uuid.UUID) ([]model.PostResponse, error)
	addLikeFn        func(context.Context, uuid.UUID, uuid.UUID) error
	removeLikeFn     func(context.Context, uuid.UUID, uuid.UUID) error
	getLikesFn       func(context.Context, uuid.UUID) ([]uuid.UUID, error)
}

func (s *postRepoStub) CreatePost(ctx context.Context, post model.Post) error {
	return s.createPostFn(ctx, post)
}
func (s *postRepoStub) UpdatePost(ctx context.Context, post model.Post, previousImageId uuid.UUID) error {
	return s.updatePostFn(ctx, post, previousImageId)
}
func (s *postRepoStub) DeletePost(ctx context.Context, postId uuid.UUID) error {
	return s.deletePostFn(ctx, postId)
}
func (s *postRepoStub) GetPostRecord(ctx context.Context, postId uuid.UUID) (model.Post, error) {
	return s.getPostRecordFn(ctx, postId)
}
func (s *postRepoStub) GetPost(ctx context.Context, postId uuid.UUID) (model.PostResponse, error) {
	return s.getPostFn(ctx, postId)
}
func (s *postRepoStub) ListPosts(ctx context.Context, q query.Query) ([]model.PostResponse, error) {
	return s.listPostsFn(ctx, q)
}
func (s *postRepoStub) ListSavedPosts(ctx context.Context, userId uuid.UUID) ([]model.PostResponse, error) {
	return s.listSavedPostsFn(ctx, userId)
}
func (s *postRepoStub) AddLike(ctx context.Context, postId uuid.UUID, userId uuid.UUID) error {
	return s.addLikeFn(ctx, postId, userId)
}
func (s *postRepoStub) RemoveLike(ctx context.Context, postId uuid.UUID, userId uuid.UUID) error {
	return s.removeLikeFn(ctx, postId, userId)
}
func (s *postRepoStub) GetLikes(ctx context.Context, postId uuid.UUID) ([]uuid.UUID, error) {
	return s.getLikesFn(ctx, postId)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createPostFn: func(_ context.Context, _ model.Post) error { return nil },
		updatePostFn: func(_ context.Context, _ model.Post, _ uuid.UUID) error { return nil },
		deletePostFn: func(_ context.Context, _ uuid.UUID) error { return nil },
		getPostRecordFn: func(_ context.Context, id uuid.UUID) (model.Post, error) {
			return model.Post{Id: id}, nil
		},
		getPostFn: func(_ context.Context, id uuid.UUID) (model.PostResponse, error) {
			return model.PostResponse{Id: id}, nil
		},
		listPostsFn:      func(_ context.Context, _ query.Query) ([]model.PostResponse, error) { return []model.PostResponse{}, nil },
		listSavedPostsFn: func(_ context.Context, _ uuid.UUID) ([]model.PostResponse, error) { return []model.PostResponse{}, nil },
		addLikeFn:        func(_ context.Context, _, _ uuid.UUID) error { return nil },
		removeLikeFn:     func(_ context.Context, _, _ uuid.UUID) error { return nil },
		getLikesFn:       func(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) { return []uuid.UUID{}, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createUserFn                 func(context.Context, model.User) error
	checkUsernameOrEmailUniqueFn func(context.Context, string, string) (string, string, error)
	checkUsernameUniqueFn        func(context.Context, string, uuid.UUID) (int, error)
	getUserAuthFn                func(context.Context, string) (uuid.UUID, string, error)
	getUserFn                    func(context.Context, uuid.UUID) (model.User, error)
	listUsersFn                  func(context.Context, int) ([]model.UserResponse, error)
	updateUserFn                 func(context.Context, model.User, *uuid.UUID) error
	listUserPostIdsFn            func(context.Context, uuid.UUID) ([]uuid.UUID, error)
	setAuthTokenInCacheFn        func(context.Context, string, string, uuid.UUID) error
	getAccessTokenInCacheFn      func(context.Context, uuid.UUID) (string, error)
	removeAuthTokenFn            func(context.Context, uuid.UUID) error
}

func (s *userRepoStub) CreateUser(ctx context.Context, user model.User) error {
	return s.createUserFn(ctx, user)
}
func (s *userRepoStub) CheckUsernameOrEmailUnique(ctx context.Context, username string, email string) (string, string, error) {
	return s.checkUsernameOrEmailUniqueFn(ctx, username, email)
}
func (s *userRepoStub) CheckUsernameUnique(ctx context.Context, username string, userId uuid.UUID) (int, error) {
	return s.checkUsernameUniqueFn(ctx, username, userId)
}
func (s *userRepoStub) GetUserAuth(ctx context.Context, email string) (uuid.UUID, string, error) {
	return s.getUserAuthFn(ctx, email)
}
func (s *userRepoStub) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	return s.getUserFn(ctx, id)
}
func (s *userRepoStub) ListUsers(ctx context.Context, limit int) ([]model.UserResponse, error) {
	return s.listUsersFn(ctx, limit)
}
func (s *userRepoStub) UpdateUser(ctx context.Context, user model.User, previousImageId *uuid.UUID) error {
	return s.updateUserFn(ctx, user, previousImageId)
}
func (s *userRepoStub) ListUserPostIds(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error) {
	return s.listUserPostIdsFn(ctx, userId)
}
func (s *userRepoStub) SetAuthTokenInCache(ctx context.Context, accessToken string, refreshToken string, userId uuid.UUID) error {
	return s.setAuthTokenInCacheFn(ctx, accessToken, refreshToken, userId)
}
func (s *userRepoStub) GetAccessTokenInCache(ctx context.Context, userId uuid.UUID) (string, error) {
	return s.getAccessTokenInCacheFn(ctx, userId)
}
func (s *userRepoStub) RemoveAuthToken(ctx context.Context, userId uuid.UUID) error {
	return s.removeAuthTokenFn(ctx, userId)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createUserFn: func(_ context.Context, _ model.User) error { return nil },
		checkUsernameOrEmailUniqueFn: func(_ context.Context, _, _ string) (string, string, error) {
			return "", "", nil
		},
		checkUsernameUniqueFn: func(_ context.Context, _ string, _ uuid.UUID) (int, error) { return 0, nil },
		getUserAuthFn: func(_ context.Context, _ string) (uuid.UUID, string, error) {
			return uuid.Nil, "", errors.New("not configured")
		},
		getUserFn: func(_ context.Context, id uuid.UUID) (model.User, error) {
			return model.User{Id: id, Name: "Jane Doe", Username: "jane"}, nil
		},
		listUsersFn:             func(_ context.Context, _ int) ([]model.UserResponse, error) { return []model.UserResponse{}, nil },
		updateUserFn:            func(_ context.Context, _ model.User, _ *uuid.UUID) error { return nil },
		listUserPostIdsFn:       func(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) { return []uuid.UUID{}, nil },
		setAuthTokenInCacheFn:   func(_ context.Context, _, _ string, _ uuid.UUID) error { return nil },
		getAccessTokenInCacheFn: func(_ context.Context, _ uuid.UUID) (string, error) { return "", nil },
		removeAuthTokenFn:       func(_ context.Context, _ uuid.UUID) error { return nil },
	}
}

// saveStoreFake keeps saves in memory with the same uniqueness rule as the
// saves table.
type saveStoreFake struct {
	saves map[uuid.UUID]model.Save
}

func newSaveStoreFake() *saveStoreFake {
	return &saveStoreFake{saves: map[uuid.UUID]model.Save{}}
}

func (s *saveStoreFake) CreateSave(_ context.Context, save model.Save) (model.Save, error) {
	for _, existing := range s.saves {
		if existing.UserId == save.UserId && existing.PostId == save.PostId {
			return existing, nil
		}
	}
	s.saves[save.Id] = save
	return save, nil
}
func (s *saveStoreFake) GetSave(_ context.Context, saveId uuid.UUID) (model.Save, error) {
	save, ok := s.saves[saveId]
	if !ok {
		return save, &model.ValidationError{Code: constant.ERR_NOT_FOUND_ERROR, Message: "Save not found", Param: "saveId"}
	}
	return save, nil
}
func (s *saveStoreFake) DeleteSave(_ context.Context, saveId uuid.UUID) error {
	delete(s.saves, saveId)
	return nil
}
func (s *saveStoreFake) ListUserSaves(_ context.Context, userId uuid.UUID) ([]model.SaveResponse, error) {
	saves := []model.SaveResponse{}
	for _, save := range s.saves {
		if save.UserId == userId {
			saves = append(saves, model.SaveResponse{Id: save.Id, PostId: save.PostId})
		}
	}
	return saves, nil
}

// fileStoreFake keeps files and the pending set in memory. The error fields
// inject failures into the matching operation.
type fileStoreFake struct {
	files      map[uuid.UUID][]byte
	pending    map[uuid.UUID]time.Time
	references map[uuid.UUID]int
	createErr  error
	previewErr error
	deleteErr  error
}

func newFileStoreFake() *fileStoreFake {
	return &fileStoreFake{
		files:      map[uuid.UUID][]byte{},
		pending:    map[uuid.UUID]time.Time{},
		references: map[uuid.UUID]int{},
	}
}

func (s *fileStoreFake) CreateFile(_ context.Context, fileId uuid.UUID, upload model.ImageUpload) error {
	if s.createErr != nil {
		return s.createErr
	}
	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return err
	}
	s.files[fileId] = data
	return nil
}
func (s *fileStoreFake) DeleteFile(_ context.Context, fileId uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.files, fileId)
	return nil
}
func (s *fileStoreFake) GetFile(_ context.Context, fileId uuid.UUID) ([]byte, error) {
	data, ok := s.files[fileId]
	if !ok {
		return nil, &model.ValidationError{Code: constant.ERR_NOT_FOUND_ERROR, Message: "File not found", Param: "fileId"}
	}
	return data, nil
}
func (s *fileStoreFake) GetFilePreview(_ context.Context, fileId uuid.UUID, _ model.PreviewOptions) (string, error) {
	if s.previewErr != nil {
		return "", s.previewErr
	}
	if _, ok := s.files[fileId]; !ok {
		return "", &model.ValidationError{Code: constant.ERR_NOT_FOUND_ERROR, Message: "File not found", Param: "fileId"}
	}
	return "http://localhost:8080/api/files/" + fileId.String() + "/preview", nil
}
func (s *fileStoreFake) MarkPending(_ context.Context, fileId uuid.UUID, at time.Time) error {
	s.pending[fileId] = at
	return nil
}
func (s *fileStoreFake) UnmarkPending(_ context.Context, fileId uuid.UUID) error {
	delete(s.pending, fileId)
	return nil
}
func (s *fileStoreFake) ListPending(_ context.Context, before time.Time) ([]uuid.UUID, error) {
	fileIds := []uuid.UUID{}
	for fileId, at := range s.pending {
		if !at.After(before) {
			fileIds = append(fileIds, fileId)
		}
	}
	return fileIds, nil
}
func (s *fileStoreFake) CountFileReferences(_ context.Context, fileId uuid.UUID) (int, error) {
	return s.references[fileId], nil
}

// mailerStub records sent mail.
type mailerStub struct {
	sent []string
	err  error
}

func (s *mailerStub) Send(receiverEmail string, _ string, _ string) error {
	s.sent = append(s.sent, receiverEmail)
	return s.err
}

func testImage() *model.ImageUpload {
	data := []byte("webp-bytes")
	return &model.ImageUpload{Reader: bytes.NewReader(data), Size: int64(len(data)), ContentType: "image/webp"}
}

func assertValidationCode(t *testing.T, err error, code string) *model.ValidationError {
	t.Helper()
	require.Error(t, err)
	var validationErr *model.ValidationError
	require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %T: %v", err, err)
	assert.Equal(t, code, validationErr.Code)
	return validationErr
}
