package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/ferdian3456/snapgram/internal/observability"
	"github.com/ferdian3456/snapgram/internal/query"
	"github.com/ferdian3456/snapgram/internal/querycache"
	"github.com/ferdian3456/snapgram/internal/util"
	"github.com/google/uuid"

	"go.uber.org/zap"
)

type PostUsecase struct {
	PostRepository PostStore
	SaveRepository SaveStore
	FileRepository FileStore
	Cache          *querycache.Cache
	Log            *zap.Logger
}

func NewPostUsecase(postRepository PostStore, saveRepository SaveStore, fileRepository FileStore, cache *querycache.Cache, zap *zap.Logger) *PostUsecase {
	return &PostUsecase{
		PostRepository: postRepository,
		SaveRepository: saveRepository,
		FileRepository: fileRepository,
		Cache:          cache,
		Log:            zap,
	}
}

func parsePostId(postIdParam string) (uuid.UUID, error) {
	postId, err := uuid.Parse(postIdParam)
	if err != nil {
		return uuid.Nil, &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Post not found",
			Param:   "postId",
		}
	}

	return postId, nil
}

func parseCursor(cursorParam string) (uuid.UUID, error) {
	if cursorParam == "" {
		return uuid.Nil, nil
	}

	cursor, err := uuid.Parse(cursorParam)
	if err != nil {
		return uuid.Nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Cursor is invalid",
			Param:   "cursor",
		}
	}

	return cursor, nil
}

func requireCreator(post model.Post, userId uuid.UUID) error {
	if post.CreatorId != userId {
		return &model.ValidationError{
			Code:    constant.ERR_FORBIDDEN_ERROR,
			Message: "You are not the creator of this post",
			Param:   "postId",
		}
	}

	return nil
}

func (usecase *PostUsecase) invalidate(ctx context.Context, tags ...string) {
	err := usecase.Cache.Invalidate(ctx, tags...)
	if err != nil {
		observability.WithContext(ctx, usecase.Log).Warn("failed to invalidate query cache", zap.Strings("tags", tags), zap.Error(err))
	}
}

func (usecase *PostUsecase) invalidatePost(ctx context.Context, post model.Post, extra ...string) {
	tags := append(querycache.PostListTags(), querycache.TagPost(post.Id), querycache.TagUserPosts(post.CreatorId))
	usecase.invalidate(ctx, append(tags, extra...)...)
}

// listPage loads one page after cursor. A full page carries the id of its
// last post as the next cursor; a short page has none. An empty page after a
// cursor whose post no longer exists is reported instead of ending the feed.
func (usecase *PostUsecase) listPage(ctx context.Context, q query.Query, cursor uuid.UUID, limit int) (model.PostListResponse, error) {
	posts, err := usecase.PostRepository.ListPosts(ctx, q.CursorAfter(cursor).Limit(limit))
	if err != nil {
		return model.PostListResponse{}, err
	}

	if len(posts) == 0 && cursor != uuid.Nil {
		_, err = usecase.PostRepository.GetPostRecord(ctx, cursor)
		if err != nil {
			var validationErr *model.ValidationError
			if errors.As(err, &validationErr) && validationErr.Code == constant.ERR_NOT_FOUND_ERROR {
				return model.PostListResponse{}, &model.ValidationError{
					Code:    constant.ERR_NOT_FOUND_ERROR,
					Message: "Cursor post no longer exists",
					Param:   "cursor",
				}
			}
			return model.PostListResponse{}, err
		}
	}

	response := model.PostListResponse{Data: posts}
	if len(posts) == limit {
		response.Page.NextCursor = posts[len(posts)-1].Id.String()
	}

	return response, nil
}

func (usecase *PostUsecase) CreatePost(ctx context.Context, userId uuid.UUID, payload model.PostCreateRequest, image *model.ImageUpload) (model.PostResponse, error) {
	err := util.ValidateStruct(payload)
	if err != nil {
		return model.PostResponse{}, err
	}

	if image == nil {
		return model.PostResponse{}, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Image is required",
			Param:   "image",
		}
	}

	fileId, imageUrl, err := uploadImage(ctx, usecase.FileRepository, usecase.Log, *image)
	if err != nil {
		return model.PostResponse{}, err
	}

	now := time.Now().UTC()
	post := model.Post{
		Id:             uuid.New(),
		CreatorId:      userId,
		Caption:        payload.Caption,
		Location:       payload.Location,
		Tags:           util.ParseTags(payload.Tags),
		ImageUrl:       imageUrl,
		ImageId:        fileId,
		CreateDatetime: now,
		UpdateDatetime: now,
	}

	err = usecase.PostRepository.CreatePost(ctx, post)
	if err != nil {
		discardFile(ctx, usecase.FileRepository, usecase.Log, fileId)
		return model.PostResponse{}, err
	}

	keepFile(ctx, usecase.FileRepository, usecase.Log, fileId)
	usecase.invalidatePost(ctx, post)

	return usecase.PostRepository.GetPost(ctx, post.Id)
}

// UpdatePost rewrites the post's fields and, when image is set, swaps its
// image. On success exactly one image remains: the new one. If the document
// update fails only the new image is deleted and the post is left unchanged.
// The update only lands while the post still has the image read here; a
// concurrent swap turns the later request into a conflict.
func (usecase *PostUsecase) UpdatePost(ctx context.Context, userId uuid.UUID, postIdParam string, payload model.PostUpdateRequest, image *model.ImageUpload) (model.PostResponse, error) {
	postId, err := parsePostId(postIdParam)
	if err != nil {
		return model.PostResponse{}, err
	}

	err = util.ValidateStruct(payload)
	if err != nil {
		return model.PostResponse{}, err
	}

	existing, err := usecase.PostRepository.GetPostRecord(ctx, postId)
	if err != nil {
		return model.PostResponse{}, err
	}

	err = requireCreator(existing, userId)
	if err != nil {
		return model.PostResponse{}, err
	}

	updated := existing
	updated.Caption = payload.Caption
	updated.Location = payload.Location
	updated.Tags = util.ParseTags(payload.Tags)
	updated.UpdateDatetime = time.Now().UTC()

	if image != nil {
		fileId, imageUrl, err := uploadImage(ctx, usecase.FileRepository, usecase.Log, *image)
		if err != nil {
			return model.PostResponse{}, err
		}

		// The old image becomes an orphan once the update lands.
		err = usecase.FileRepository.MarkPending(ctx, existing.ImageId, time.Now())
		if err != nil {
			discardFile(ctx, usecase.FileRepository, usecase.Log, fileId)
			return model.PostResponse{}, err
		}

		updated.ImageId = fileId
		updated.ImageUrl = imageUrl
	}

	err = usecase.PostRepository.UpdatePost(ctx, updated, existing.ImageId)
	if err != nil {
		if image != nil {
			discardFile(ctx, usecase.FileRepository, usecase.Log, updated.ImageId)
			// After a conflict the old image may already belong to the
			// winning request's cleanup; the sweeper settles it.
			if !isConflict(err) {
				keepFile(ctx, usecase.FileRepository, usecase.Log, existing.ImageId)
			}
		}
		return model.PostResponse{}, err
	}

	if image != nil {
		keepFile(ctx, usecase.FileRepository, usecase.Log, updated.ImageId)
		discardFile(ctx, usecase.FileRepository, usecase.Log, existing.ImageId)
	}

	usecase.invalidatePost(ctx, updated)

	return usecase.PostRepository.GetPost(ctx, postId)
}

func (usecase *PostUsecase) DeletePost(ctx context.Context, userId uuid.UUID, postIdParam string) error {
	postId, err := parsePostId(postIdParam)
	if err != nil {
		return err
	}

	existing, err := usecase.PostRepository.GetPostRecord(ctx, postId)
	if err != nil {
		return err
	}

	err = requireCreator(existing, userId)
	if err != nil {
		return err
	}

	err = usecase.FileRepository.MarkPending(ctx, existing.ImageId, time.Now())
	if err != nil {
		return err
	}

	err = usecase.PostRepository.DeletePost(ctx, postId)
	if err != nil {
		keepFile(ctx, usecase.FileRepository, usecase.Log, existing.ImageId)
		return err
	}

	discardFile(ctx, usecase.FileRepository, usecase.Log, existing.ImageId)

	// Saves of the post were removed with it.
	usecase.invalidatePost(ctx, existing, querycache.TagCurrentUsers)

	return nil
}

func (usecase *PostUsecase) GetRecentPosts(ctx context.Context, cursorParam string) (model.PostListResponse, error) {
	cursor, err := parseCursor(cursorParam)
	if err != nil {
		return model.PostListResponse{}, err
	}

	key := querycache.Key("recent-posts", cursorParam)
	return querycache.Fetch(ctx, usecase.Cache, key, []string{querycache.TagRecentPosts}, func(ctx context.Context) (model.PostListResponse, error) {
		return usecase.listPage(ctx, query.New().OrderDesc("create_datetime"), cursor, constant.FEED_LIMIT)
	})
}

func (usecase *PostUsecase) GetInfinitePosts(ctx context.Context, cursorParam string, limit int) (model.PostListResponse, error) {
	cursor, err := parseCursor(cursorParam)
	if err != nil {
		return model.PostListResponse{}, err
	}

	if limit == 0 {
		limit = constant.EXPLORE_LIMIT
	}

	if limit < 0 || limit > constant.MAX_LIMIT {
		return model.PostListResponse{}, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Limit must be between 1 and " + strconv.Itoa(constant.MAX_LIMIT),
			Param:   "limit",
		}
	}

	key := querycache.Key("infinite-posts", cursorParam, strconv.Itoa(limit))
	return querycache.Fetch(ctx, usecase.Cache, key, []string{querycache.TagInfinitePosts}, func(ctx context.Context) (model.PostListResponse, error) {
		return usecase.listPage(ctx, query.New().OrderDesc("create_datetime"), cursor, limit)
	})
}

func (usecase *PostUsecase) SearchPosts(ctx context.Context, searchTerm string) (model.PostListResponse, error) {
	searchTerm = strings.TrimSpace(searchTerm)
	if searchTerm == "" {
		return model.PostListResponse{}, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Search term is required to not be empty",
			Param:   "q",
		}
	}

	key := querycache.Key("search-posts", util.HashSHA256(strings.ToLower(searchTerm)))
	return querycache.Fetch(ctx, usecase.Cache, key, []string{querycache.TagSearchPosts}, func(ctx context.Context) (model.PostListResponse, error) {
		posts, err := usecase.PostRepository.ListPosts(ctx, query.New().
			Search("caption", searchTerm).
			OrderDesc("create_datetime").
			Limit(constant.SEARCH_LIMIT))
		if err != nil {
			return model.PostListResponse{}, err
		}

		return model.PostListResponse{Data: posts}, nil
	})
}

func (usecase *PostUsecase) GetUserPosts(ctx context.Context, userIdParam string, cursorParam string) (model.PostListResponse, error) {
	userId, err := uuid.Parse(userIdParam)
	if err != nil {
		return model.PostListResponse{}, &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "User not found",
			Param:   "userId",
		}
	}

	cursor, err := parseCursor(cursorParam)
	if err != nil {
		return model.PostListResponse{}, err
	}

	key := querycache.Key("user-posts", userId.String(), cursorParam)
	return querycache.Fetch(ctx, usecase.Cache, key, []string{querycache.TagUserPosts(userId)}, func(ctx context.Context) (model.PostListResponse, error) {
		q := query.New().Equal("creator_id", userId).OrderDesc("create_datetime")
		return usecase.listPage(ctx, q, cursor, constant.FEED_LIMIT)
	})
}

func (usecase *PostUsecase) GetPostById(ctx context.Context, postIdParam string) (model.PostResponse, error) {
	postId, err := parsePostId(postIdParam)
	if err != nil {
		return model.PostResponse{}, err
	}

	key := querycache.Key("post", postId.String())
	return querycache.Fetch(ctx, usecase.Cache, key, []string{querycache.TagPost(postId)}, func(ctx context.Context) (model.PostResponse, error) {
		return usecase.PostRepository.GetPost(ctx, postId)
	})
}

func (usecase *PostUsecase) GetSavedPosts(ctx context.Context, userId uuid.UUID) (model.PostListResponse, error) {
	key := querycache.Key("saved-posts", userId.String())
	return querycache.Fetch(ctx, usecase.Cache, key, []string{querycache.TagSavedPosts(userId), querycache.TagAllSavedPosts}, func(ctx context.Context) (model.PostListResponse, error) {
		posts, err := usecase.PostRepository.ListSavedPosts(ctx, userId)
		if err != nil {
			return model.PostListResponse{}, err
		}

		return model.PostListResponse{Data: posts}, nil
	})
}

// LikePost adds userId to the post's like set. Liking twice is a no-op.
func (usecase *PostUsecase) LikePost(ctx context.Context, userId uuid.UUID, postIdParam string) (model.PostLikesResponse, error) {
	return usecase.updateLikes(ctx, postIdParam, func(postId uuid.UUID) error {
		return usecase.PostRepository.AddLike(ctx, postId, userId)
	})
}

// UnlikePost removes userId from the post's like set.
func (usecase *PostUsecase) UnlikePost(ctx context.Context, userId uuid.UUID, postIdParam string) (model.PostLikesResponse, error) {
	return usecase.updateLikes(ctx, postIdParam, func(postId uuid.UUID) error {
		return usecase.PostRepository.RemoveLike(ctx, postId, userId)
	})
}

func (usecase *PostUsecase) updateLikes(ctx context.Context, postIdParam string, change func(postId uuid.UUID) error) (model.PostLikesResponse, error) {
	postId, err := parsePostId(postIdParam)
	if err != nil {
		return model.PostLikesResponse{}, err
	}

	post, err := usecase.PostRepository.GetPostRecord(ctx, postId)
	if err != nil {
		return model.PostLikesResponse{}, err
	}

	err = change(postId)
	if err != nil {
		return model.PostLikesResponse{}, err
	}

	likes, err := usecase.PostRepository.GetLikes(ctx, postId)
	if err != nil {
		return model.PostLikesResponse{}, err
	}

	usecase.invalidatePost(ctx, post)

	return model.PostLikesResponse{PostId: postId, Likes: likes}, nil
}

// SavePost records that userId saved the post. Saving twice returns the
// existing save.
func (usecase *PostUsecase) SavePost(ctx context.Context, userId uuid.UUID, postIdParam string) (model.SaveResponse, error) {
	postId, err := parsePostId(postIdParam)
	if err != nil {
		return model.SaveResponse{}, err
	}

	_, err = usecase.PostRepository.GetPostRecord(ctx, postId)
	if err != nil {
		return model.SaveResponse{}, err
	}

	save, err := usecase.SaveRepository.CreateSave(ctx, model.Save{
		Id:             uuid.New(),
		UserId:         userId,
		PostId:         postId,
		CreateDatetime: time.Now().UTC(),
	})
	if err != nil {
		return model.SaveResponse{}, err
	}

	usecase.invalidate(ctx, querycache.TagCurrentUser(userId), querycache.TagSavedPosts(userId))

	return model.SaveResponse{Id: save.Id, PostId: save.PostId}, nil
}

func (usecase *PostUsecase) DeleteSave(ctx context.Context, userId uuid.UUID, saveIdParam string) error {
	saveId, err := uuid.Parse(saveIdParam)
	if err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Save not found",
			Param:   "saveId",
		}
	}

	save, err := usecase.SaveRepository.GetSave(ctx, saveId)
	if err != nil {
		return err
	}

	if save.UserId != userId {
		return &model.ValidationError{
			Code:    constant.ERR_FORBIDDEN_ERROR,
			Message: "You can only remove your own saves",
			Param:   "saveId",
		}
	}

	err = usecase.SaveRepository.DeleteSave(ctx, saveId)
	if err != nil {
		return err
	}

	usecase.invalidate(ctx, querycache.TagCurrentUser(userId), querycache.TagSavedPosts(userId))

	return nil
}
