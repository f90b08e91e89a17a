package client

import (
	"context"
	"strconv"

	"github.com/ferdian3456/snapgram/internal/model"

	"github.com/google/uuid"
)

// Queries runs API calls through a QueryClient. Reads are cached, and every
// mutation marks the queries it affects as stale once it succeeds.
type Queries struct {
	Client *Client
	Cache  *QueryClient
}

func NewQueries(client *Client) *Queries {
	return &Queries{Client: client, Cache: NewQueryClient()}
}

func (queries *Queries) GetCurrentUser(ctx context.Context) (model.CurrentUserResponse, error) {
	return Fetch(ctx, queries.Cache, QueryKey(QueryCurrentUser), queries.Client.GetCurrentUser)
}

func (queries *Queries) GetUsers(ctx context.Context, limit int) ([]model.UserResponse, error) {
	return Fetch(ctx, queries.Cache, QueryKey(QueryUsers, strconv.Itoa(limit)), func(ctx context.Context) ([]model.UserResponse, error) {
		return queries.Client.GetUsers(ctx, limit)
	})
}

func (queries *Queries) GetUserById(ctx context.Context, userId uuid.UUID) (model.UserResponse, error) {
	return Fetch(ctx, queries.Cache, QueryKey(QueryUserById, userId.String()), func(ctx context.Context) (model.UserResponse, error) {
		return queries.Client.GetUserById(ctx, userId)
	})
}

func (queries *Queries) GetRecentPosts(ctx context.Context, cursor string) (model.PostListResponse, error) {
	return Fetch(ctx, queries.Cache, QueryKey(QueryRecentPosts, cursor), func(ctx context.Context) (model.PostListResponse, error) {
		return queries.Client.GetRecentPosts(ctx, cursor)
	})
}

func (queries *Queries) GetInfinitePosts(ctx context.Context, cursor string, limit int) (model.PostListResponse, error) {
	return Fetch(ctx, queries.Cache, QueryKey(QueryInfinitePosts, cursor, strconv.Itoa(limit)), func(ctx context.Context) (model.PostListResponse, error) {
		return queries.Client.GetInfinitePosts(ctx, cursor, limit)
	})
}

func (queries *Queries) SearchPosts(ctx context.Context, searchTerm string) (model.PostListResponse, error) {
	return Fetch(ctx, queries.Cache, QueryKey(QuerySearchPosts, searchTerm), func(ctx context.Context) (model.PostListResponse, error) {
		return queries.Client.SearchPosts(ctx, searchTerm)
	})
}

func (queries *Queries) GetPostById(ctx context.Context, postId uuid.UUID) (model.PostResponse, error) {
	return Fetch(ctx, queries.Cache, QueryKey(QueryPostById, postId.String()), func(ctx context.Context) (model.PostResponse, error) {
		return queries.Client.GetPostById(ctx, postId)
	})
}

func (queries *Queries) GetUserPosts(ctx context.Context, userId uuid.UUID, cursor string) (model.PostListResponse, error) {
	return Fetch(ctx, queries.Cache, QueryKey(QueryUserPosts, userId.String(), cursor), func(ctx context.Context) (model.PostListResponse, error) {
		return queries.Client.GetUserPosts(ctx, userId, cursor)
	})
}

func (queries *Queries) GetSavedPosts(ctx context.Context) ([]model.PostResponse, error) {
	return Fetch(ctx, queries.Cache, QueryKey(QuerySavedPosts), queries.Client.GetSavedPosts)
}

func (queries *Queries) CreatePost(ctx context.Context, payload model.PostCreateRequest, image File) (model.PostResponse, error) {
	post, err := queries.Client.CreatePost(ctx, payload, image)
	if err != nil {
		return post, err
	}

	queries.Cache.Invalidate(QueryRecentPosts, QueryInfinitePosts, QuerySearchPosts, QueryUserPosts)
	return post, nil
}

func (queries *Queries) UpdatePost(ctx context.Context, postId uuid.UUID, payload model.PostUpdateRequest, image *File) (model.PostResponse, error) {
	post, err := queries.Client.UpdatePost(ctx, postId, payload, image)
	if err != nil {
		return post, err
	}

	queries.Cache.Invalidate(QueryKey(QueryPostById, postId.String()), QueryRecentPosts, QueryInfinitePosts, QuerySearchPosts, QueryUserPosts, QuerySavedPosts)
	return post, nil
}

func (queries *Queries) DeletePost(ctx context.Context, postId uuid.UUID) error {
	err := queries.Client.DeletePost(ctx, postId)
	if err != nil {
		return err
	}

	queries.Cache.Invalidate(QueryKey(QueryPostById, postId.String()), QueryRecentPosts, QueryInfinitePosts, QuerySearchPosts, QueryUserPosts, QuerySavedPosts, QueryCurrentUser)
	return nil
}

func (queries *Queries) LikePost(ctx context.Context, postId uuid.UUID) (model.PostLikesResponse, error) {
	likes, err := queries.Client.LikePost(ctx, postId)
	if err != nil {
		return likes, err
	}

	queries.invalidateLikes(postId)
	return likes, nil
}

func (queries *Queries) UnlikePost(ctx context.Context, postId uuid.UUID) (model.PostLikesResponse, error) {
	likes, err := queries.Client.UnlikePost(ctx, postId)
	if err != nil {
		return likes, err
	}

	queries.invalidateLikes(postId)
	return likes, nil
}

func (queries *Queries) invalidateLikes(postId uuid.UUID) {
	queries.Cache.Invalidate(QueryKey(QueryPostById, postId.String()), QueryRecentPosts, QueryInfinitePosts, QuerySearchPosts, QueryUserPosts, QuerySavedPosts)
}

func (queries *Queries) SavePost(ctx context.Context, postId uuid.UUID) (model.SaveResponse, error) {
	save, err := queries.Client.SavePost(ctx, postId)
	if err != nil {
		return save, err
	}

	queries.Cache.Invalidate(QueryCurrentUser, QuerySavedPosts)
	return save, nil
}

func (queries *Queries) DeleteSave(ctx context.Context, saveId uuid.UUID) error {
	err := queries.Client.DeleteSave(ctx, saveId)
	if err != nil {
		return err
	}

	queries.Cache.Invalidate(QueryCurrentUser, QuerySavedPosts)
	return nil
}

func (queries *Queries) UpdateUser(ctx context.Context, userId uuid.UUID, payload model.UserUpdateRequest, avatar *File) (model.UserResponse, error) {
	user, err := queries.Client.UpdateUser(ctx, userId, payload, avatar)
	if err != nil {
		return user, err
	}

	queries.Cache.Invalidate(QueryCurrentUser, QueryKey(QueryUserById, userId.String()), QueryUsers, QueryRecentPosts, QueryInfinitePosts, QuerySearchPosts, QueryUserPosts, QuerySavedPosts, QueryPostById)
	return user, nil
}
