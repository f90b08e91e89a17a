package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/ferdian3456/snapgram/internal/query"
	"github.com/google/uuid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPostUsecase(posts *postRepoStub, saves SaveStore, files *fileStoreFake) *PostUsecase {
	return NewPostUsecase(posts, saves, files, nil, zap.NewNop())
}

func validCreateRequest() model.PostCreateRequest {
	return model.PostCreateRequest{Caption: "Sunset at the beach", Location: "Bali", Tags: "sunset, beach , travel"}
}

func TestCreatePost_StoresImageAndDocument(t *testing.T) {
	posts := noopPostRepo()
	files := newFileStoreFake()
	userId := uuid.New()

	var created model.Post
	posts.createPostFn = func(_ context.Context, post model.Post) error {
		created = post
		return nil
	}

	_, err := newPostUsecase(posts, newSaveStoreFake(), files).CreatePost(context.Background(), userId, validCreateRequest(), testImage())
	require.NoError(t, err)

	require.Len(t, files.files, 1)
	assert.Empty(t, files.pending)
	assert.Equal(t, userId, created.CreatorId)
	assert.Equal(t, []string{"sunset", "beach", "travel"}, created.Tags)
	assert.Contains(t, files.files, created.ImageId)
	assert.Contains(t, created.ImageUrl, created.ImageId.String())
}

func TestCreatePost_PreviewFailureDeletesImage(t *testing.T) {
	posts := noopPostRepo()
	files := newFileStoreFake()
	files.previewErr = errors.New("preview unavailable")

	createCalled := false
	posts.createPostFn = func(_ context.Context, _ model.Post) error {
		createCalled = true
		return nil
	}

	_, err := newPostUsecase(posts, newSaveStoreFake(), files).CreatePost(context.Background(), uuid.New(), validCreateRequest(), testImage())
	require.Error(t, err)

	assert.False(t, createCalled, "no document may be created without a preview")
	assert.Empty(t, files.files)
	assert.Empty(t, files.pending)
}

func TestCreatePost_DocumentFailureDeletesImage(t *testing.T) {
	posts := noopPostRepo()
	files := newFileStoreFake()
	posts.createPostFn = func(_ context.Context, _ model.Post) error { return errors.New("insert failed") }

	_, err := newPostUsecase(posts, newSaveStoreFake(), files).CreatePost(context.Background(), uuid.New(), validCreateRequest(), testImage())
	require.Error(t, err)

	assert.Empty(t, files.files)
	assert.Empty(t, files.pending)
}

func TestCreatePost_FailedCleanupStaysPending(t *testing.T) {
	posts := noopPostRepo()
	files := newFileStoreFake()
	posts.createPostFn = func(_ context.Context, _ model.Post) error { return errors.New("insert failed") }
	files.deleteErr = errors.New("object store down")

	_, err := newPostUsecase(posts, newSaveStoreFake(), files).CreatePost(context.Background(), uuid.New(), validCreateRequest(), testImage())
	require.Error(t, err)

	require.Len(t, files.files, 1)
	for fileId := range files.files {
		assert.Contains(t, files.pending, fileId, "undeleted file must be left to the sweeper")
	}
}

func TestCreatePost_Validation(t *testing.T) {
	files := newFileStoreFake()
	usecase := newPostUsecase(noopPostRepo(), newSaveStoreFake(), files)

	_, err := usecase.CreatePost(context.Background(), uuid.New(), validCreateRequest(), nil)
	validationErr := assertValidationCode(t, err, constant.ERR_VALIDATION_CODE)
	assert.Equal(t, "image", validationErr.Param)

	request := validCreateRequest()
	request.Caption = "hey"
	_, err = usecase.CreatePost(context.Background(), uuid.New(), request, testImage())
	validationErr = assertValidationCode(t, err, constant.ERR_VALIDATION_CODE)
	assert.Equal(t, "caption", validationErr.Param)

	request = validCreateRequest()
	request.Location = "NY"
	_, err = usecase.CreatePost(context.Background(), uuid.New(), request, testImage())
	validationErr = assertValidationCode(t, err, constant.ERR_VALIDATION_CODE)
	assert.Equal(t, "location", validationErr.Param)

	assert.Empty(t, files.files)
}

// postWithImage seeds a post whose image exists in files.
func postWithImage(files *fileStoreFake, creatorId uuid.UUID) model.Post {
	imageId := uuid.New()
	files.files[imageId] = []byte("old")
	return model.Post{Id: uuid.New(), CreatorId: creatorId, Caption: "Old caption", Location: "Old town", ImageId: imageId, ImageUrl: "old-url"}
}

func TestUpdatePost_ImageSwapLeavesOnlyNewImage(t *testing.T) {
	posts := noopPostRepo()
	files := newFileStoreFake()
	userId := uuid.New()
	existing := postWithImage(files, userId)

	var updated model.Post
	posts.getPostRecordFn = func(_ context.Context, _ uuid.UUID) (model.Post, error) { return existing, nil }
	posts.updatePostFn = func(_ context.Context, post model.Post, _ uuid.UUID) error {
		updated = post
		return nil
	}

	request := model.PostUpdateRequest{Caption: "New caption", Location: "New town", Tags: "a,b"}
	_, err := newPostUsecase(posts, newSaveStoreFake(), files).UpdatePost(context.Background(), userId, existing.Id.String(), request, testImage())
	require.NoError(t, err)

	require.Len(t, files.files, 1)
	assert.NotContains(t, files.files, existing.ImageId)
	assert.Contains(t, files.files, updated.ImageId)
	assert.NotEqual(t, existing.ImageId, updated.ImageId)
	assert.Empty(t, files.pending)
	assert.Equal(t, []string{"a", "b"}, updated.Tags)
}

func TestUpdatePost_DocumentFailureDeletesOnlyNewImage(t *testing.T) {
	posts := noopPostRepo()
	files := newFileStoreFake()
	userId := uuid.New()
	existing := postWithImage(files, userId)

	posts.getPostRecordFn = func(_ context.Context, _ uuid.UUID) (model.Post, error) { return existing, nil }
	posts.updatePostFn = func(_ context.Context, _ model.Post, _ uuid.UUID) error { return errors.New("update failed") }

	request := model.PostUpdateRequest{Caption: "New caption", Location: "New town"}
	_, err := newPostUsecase(posts, newSaveStoreFake(), files).UpdatePost(context.Background(), userId, existing.Id.String(), request, testImage())
	require.Error(t, err)

	require.Len(t, files.files, 1)
	assert.Contains(t, files.files, existing.ImageId)
	assert.Empty(t, files.pending)
}

// imageSwapStore stores one post and applies updates only while the stored
// image matches the caller's previous image, like the posts table does.
func imageSwapStore(posts *postRepoStub, stored *model.Post) {
	read := *stored
	posts.getPostRecordFn = func(_ context.Context, _ uuid.UUID) (model.Post, error) { return read, nil }
	posts.updatePostFn = func(_ context.Context, post model.Post, previousImageId uuid.UUID) error {
		if stored.ImageId != previousImageId {
			return &model.ValidationError{Code: constant.ERR_CONFLICT_ERROR, Message: "Post was changed by another request, please retry", Param: "postId"}
		}
		*stored = post
		return nil
	}
}

func TestUpdatePost_ConcurrentImageSwapLeavesOneImage(t *testing.T) {
	posts := noopPostRepo()
	files := newFileStoreFake()
	userId := uuid.New()
	stored := postWithImage(files, userId)
	original := stored.ImageId

	// Both requests read the post before either writes it.
	imageSwapStore(posts, &stored)
	usecase := newPostUsecase(posts, newSaveStoreFake(), files)
	request := model.PostUpdateRequest{Caption: "New caption", Location: "New town"}

	_, err := usecase.UpdatePost(context.Background(), userId, stored.Id.String(), request, testImage())
	require.NoError(t, err)
	winner := stored.ImageId

	_, err = usecase.UpdatePost(context.Background(), userId, stored.Id.String(), request, testImage())
	assertValidationCode(t, err, constant.ERR_CONFLICT_ERROR)
	assert.Equal(t, winner, stored.ImageId)

	files.references[winner] = 1
	deleted, err := NewFileUsecase(files, zap.NewNop()).SweepOrphans(context.Background(), -time.Second)
	require.NoError(t, err)
	assert.LessOrEqual(t, deleted, 1)

	require.Len(t, files.files, 1)
	assert.Contains(t, files.files, winner)
	assert.NotContains(t, files.files, original)
	assert.Empty(t, files.pending)
}

func TestUpdatePost_TextEditCannotRevertSwappedImage(t *testing.T) {
	posts := noopPostRepo()
	files := newFileStoreFake()
	userId := uuid.New()
	stored := postWithImage(files, userId)

	imageSwapStore(posts, &stored)
	usecase := newPostUsecase(posts, newSaveStoreFake(), files)
	request := model.PostUpdateRequest{Caption: "New caption", Location: "New town"}

	_, err := usecase.UpdatePost(context.Background(), userId, stored.Id.String(), request, testImage())
	require.NoError(t, err)
	swapped := stored.ImageId

	_, err = usecase.UpdatePost(context.Background(), userId, stored.Id.String(), request, nil)
	assertValidationCode(t, err, constant.ERR_CONFLICT_ERROR)
	assert.Equal(t, swapped, stored.ImageId)
	assert.Contains(t, files.files, swapped)
}

func TestUpdatePost_WithoutImageKeepsImage(t *testing.T) {
	posts := noopPostRepo()
	files := newFileStoreFake()
	userId := uuid.New()
	existing := postWithImage(files, userId)

	var updated model.Post
	posts.getPostRecordFn = func(_ context.Context, _ uuid.UUID) (model.Post, error) { return existing, nil }
	posts.updatePostFn = func(_ context.Context, post model.Post, _ uuid.UUID) error {
		updated = post
		return nil
	}

	request := model.PostUpdateRequest{Caption: "New caption", Location: "New town"}
	_, err := newPostUsecase(posts, newSaveStoreFake(), files).UpdatePost(context.Background(), userId, existing.Id.String(), request, nil)
	require.NoError(t, err)

	assert.Equal(t, existing.ImageId, updated.ImageId)
	assert.Equal(t, "New caption", updated.Caption)
	assert.Contains(t, files.files, existing.ImageId)
}

func TestUpdatePost_OnlyCreator(t *testing.T) {
	posts := noopPostRepo()
	files := newFileStoreFake()
	existing := postWithImage(files, uuid.New())
	posts.getPostRecordFn = func(_ context.Context, _ uuid.UUID) (model.Post, error) { return existing, nil }

	request := model.PostUpdateRequest{Caption: "New caption", Location: "New town"}
	_, err := newPostUsecase(posts, newSaveStoreFake(), files).UpdatePost(context.Background(), uuid.New(), existing.Id.String(), request, testImage())
	assertValidationCode(t, err, constant.ERR_FORBIDDEN_ERROR)

	require.Len(t, files.files, 1)
}

func TestDeletePost_RemovesDocumentThenImage(t *testing.T) {
	posts := noopPostRepo()
	files := newFileStoreFake()
	userId := uuid.New()
	existing := postWithImage(files, userId)

	deleted := false
	posts.getPostRecordFn = func(_ context.Context, _ uuid.UUID) (model.Post, error) { return existing, nil }
	posts.deletePostFn = func(_ context.Context, _ uuid.UUID) error {
		deleted = true
		return nil
	}

	err := newPostUsecase(posts, newSaveStoreFake(), files).DeletePost(context.Background(), userId, existing.Id.String())
	require.NoError(t, err)

	assert.True(t, deleted)
	assert.Empty(t, files.files)
	assert.Empty(t, files.pending)
}

func TestDeletePost_DocumentFailureKeepsImage(t *testing.T) {
	posts := noopPostRepo()
	files := newFileStoreFake()
	userId := uuid.New()
	existing := postWithImage(files, userId)

	posts.getPostRecordFn = func(_ context.Context, _ uuid.UUID) (model.Post, error) { return existing, nil }
	posts.deletePostFn = func(_ context.Context, _ uuid.UUID) error { return errors.New("delete failed") }

	err := newPostUsecase(posts, newSaveStoreFake(), files).DeletePost(context.Background(), userId, existing.Id.String())
	require.Error(t, err)

	assert.Contains(t, files.files, existing.ImageId)
	assert.Empty(t, files.pending)
}

func TestLikePost_LikeSetHasNoDuplicates(t *testing.T) {
	posts := noopPostRepo()
	postId := uuid.New()
	userId := uuid.New()

	likes := map[uuid.UUID]bool{}
	posts.addLikeFn = func(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
		likes[id] = true
		return nil
	}
	posts.removeLikeFn = func(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
		delete(likes, id)
		return nil
	}
	posts.getLikesFn = func(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) {
		result := []uuid.UUID{}
		for id := range likes {
			result = append(result, id)
		}
		return result, nil
	}

	usecase := newPostUsecase(posts, newSaveStoreFake(), newFileStoreFake())

	response, err := usecase.LikePost(context.Background(), userId, postId.String())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{userId}, response.Likes)

	response, err = usecase.LikePost(context.Background(), userId, postId.String())
	require.NoError(t, err)
	assert.Len(t, response.Likes, 1)

	response, err = usecase.UnlikePost(context.Background(), userId, postId.String())
	require.NoError(t, err)
	assert.Empty(t, response.Likes)
}

func TestLikePost_UnknownPost(t *testing.T) {
	posts := noopPostRepo()
	posts.getPostRecordFn = func(_ context.Context, _ uuid.UUID) (model.Post, error) {
		return model.Post{}, &model.ValidationError{Code: constant.ERR_NOT_FOUND_ERROR, Message: "Post not found", Param: "postId"}
	}

	_, err := newPostUsecase(posts, newSaveStoreFake(), newFileStoreFake()).LikePost(context.Background(), uuid.New(), uuid.New().String())
	assertValidationCode(t, err, constant.ERR_NOT_FOUND_ERROR)

	_, err = newPostUsecase(posts, newSaveStoreFake(), newFileStoreFake()).LikePost(context.Background(), uuid.New(), "not-a-uuid")
	assertValidationCode(t, err, constant.ERR_NOT_FOUND_ERROR)
}

func TestSaveThenUnsaveLeavesNoSave(t *testing.T) {
	saves := newSaveStoreFake()
	usecase := newPostUsecase(noopPostRepo(), saves, newFileStoreFake())
	userId := uuid.New()
	postId := uuid.New()

	first, err := usecase.SavePost(context.Background(), userId, postId.String())
	require.NoError(t, err)
	second, err := usecase.SavePost(context.Background(), userId, postId.String())
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.Len(t, saves.saves, 1)

	err = usecase.DeleteSave(context.Background(), userId, first.Id.String())
	require.NoError(t, err)

	remaining, err := saves.ListUserSaves(context.Background(), userId)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDeleteSave_OnlyOwner(t *testing.T) {
	saves := newSaveStoreFake()
	usecase := newPostUsecase(noopPostRepo(), saves, newFileStoreFake())

	save, err := usecase.SavePost(context.Background(), uuid.New(), uuid.New().String())
	require.NoError(t, err)

	err = usecase.DeleteSave(context.Background(), uuid.New(), save.Id.String())
	assertValidationCode(t, err, constant.ERR_FORBIDDEN_ERROR)
	assert.Len(t, saves.saves, 1)
}

func pageOf(n int) []model.PostResponse {
	posts := make([]model.PostResponse, n)
	for i := range posts {
		posts[i] = model.PostResponse{Id: uuid.New()}
	}
	return posts
}

func TestGetRecentPosts_NextCursorIsLastId(t *testing.T) {
	posts := noopPostRepo()
	var received query.Query
	page := pageOf(constant.FEED_LIMIT)
	posts.listPostsFn = func(_ context.Context, q query.Query) ([]model.PostResponse, error) {
		received = q
		return page, nil
	}

	usecase := newPostUsecase(posts, newSaveStoreFake(), newFileStoreFake())

	response, err := usecase.GetRecentPosts(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, page[len(page)-1].Id.String(), response.Page.NextCursor)
	assert.Equal(t, constant.FEED_LIMIT, received.LimitCount)
	assert.Equal(t, uuid.Nil, received.Cursor)

	_, err = usecase.GetRecentPosts(context.Background(), response.Page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, page[len(page)-1].Id, received.Cursor)
}

func TestGetInfinitePosts_ShortPageEndsPagination(t *testing.T) {
	posts := noopPostRepo()
	posts.listPostsFn = func(_ context.Context, _ query.Query) ([]model.PostResponse, error) {
		return pageOf(constant.EXPLORE_LIMIT - 1), nil
	}

	response, err := newPostUsecase(posts, newSaveStoreFake(), newFileStoreFake()).GetInfinitePosts(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, response.Data, constant.EXPLORE_LIMIT-1)
	assert.Empty(t, response.Page.NextCursor)
}

func TestGetInfinitePosts_DeletedCursorPostIsReported(t *testing.T) {
	posts := noopPostRepo()
	posts.listPostsFn = func(_ context.Context, _ query.Query) ([]model.PostResponse, error) {
		return []model.PostResponse{}, nil
	}
	posts.getPostRecordFn = func(_ context.Context, _ uuid.UUID) (model.Post, error) {
		return model.Post{}, &model.ValidationError{Code: constant.ERR_NOT_FOUND_ERROR, Message: "Post not found", Param: "postId"}
	}
	usecase := newPostUsecase(posts, newSaveStoreFake(), newFileStoreFake())

	_, err := usecase.GetInfinitePosts(context.Background(), uuid.NewString(), 0)
	validationErr := assertValidationCode(t, err, constant.ERR_NOT_FOUND_ERROR)
	assert.Equal(t, "cursor", validationErr.Param)

	_, err = usecase.GetUserPosts(context.Background(), uuid.NewString(), uuid.NewString())
	validationErr = assertValidationCode(t, err, constant.ERR_NOT_FOUND_ERROR)
	assert.Equal(t, "cursor", validationErr.Param)
}

func TestGetRecentPosts_EmptyPageAfterLivingCursor(t *testing.T) {
	posts := noopPostRepo()
	var checked uuid.UUID
	posts.listPostsFn = func(_ context.Context, _ query.Query) ([]model.PostResponse, error) {
		return []model.PostResponse{}, nil
	}
	posts.getPostRecordFn = func(_ context.Context, id uuid.UUID) (model.Post, error) {
		checked = id
		return model.Post{Id: id}, nil
	}
	cursor := uuid.New()

	response, err := newPostUsecase(posts, newSaveStoreFake(), newFileStoreFake()).GetRecentPosts(context.Background(), cursor.String())
	require.NoError(t, err)
	assert.Empty(t, response.Data)
	assert.Empty(t, response.Page.NextCursor)
	assert.Equal(t, cursor, checked)
}

func TestGetInfinitePosts_RejectsBadInput(t *testing.T) {
	usecase := newPostUsecase(noopPostRepo(), newSaveStoreFake(), newFileStoreFake())

	_, err := usecase.GetInfinitePosts(context.Background(), "garbage", 0)
	assertValidationCode(t, err, constant.ERR_VALIDATION_CODE)

	_, err = usecase.GetInfinitePosts(context.Background(), "", constant.MAX_LIMIT+1)
	assertValidationCode(t, err, constant.ERR_VALIDATION_CODE)
}

func TestSearchPosts(t *testing.T) {
	posts := noopPostRepo()
	var received query.Query
	posts.listPostsFn = func(_ context.Context, q query.Query) ([]model.PostResponse, error) {
		received = q
		return pageOf(2), nil
	}
	usecase := newPostUsecase(posts, newSaveStoreFake(), newFileStoreFake())

	_, err := usecase.SearchPosts(context.Background(), "   ")
	assertValidationCode(t, err, constant.ERR_VALIDATION_CODE)

	response, err := usecase.SearchPosts(context.Background(), " sunset ")
	require.NoError(t, err)
	assert.Len(t, response.Data, 2)
	require.Len(t, received.Filters, 1)
	assert.Equal(t, query.OperatorSearch, received.Filters[0].Operator)
	assert.Equal(t, "sunset", received.Filters[0].Value)
}
