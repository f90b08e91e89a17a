package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ferdian3456/snapgram/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (client *Client) SignUp(ctx context.Context, payload model.UserSignUpRequest) (model.TokenResponse, error) {
	var token model.TokenResponse
	_, err := do(ctx, client, client.agent(fiber.MethodPost, "/api/auth/signup").JSON(payload), &token)
	if err != nil {
		return token, err
	}

	client.SetAccessToken(token.AccessToken)
	return token, nil
}

func (client *Client) SignIn(ctx context.Context, payload model.UserSignInRequest) (model.TokenResponse, error) {
	var token model.TokenResponse
	_, err := do(ctx, client, client.agent(fiber.MethodPost, "/api/auth/signin").JSON(payload), &token)
	if err != nil {
		return token, err
	}

	client.SetAccessToken(token.AccessToken)
	return token, nil
}

// SignOut ends the server session. The local token is dropped even when the
// server call fails.
func (client *Client) SignOut(ctx context.Context) error {
	_, err := do[struct{}](ctx, client, client.agent(fiber.MethodPost, "/api/users/logout"), nil)
	client.SetAccessToken("")
	return err
}

func (client *Client) GetCurrentUser(ctx context.Context) (model.CurrentUserResponse, error) {
	var user model.CurrentUserResponse
	_, err := do(ctx, client, client.agent(fiber.MethodGet, "/api/users/me"), &user)
	return user, err
}

func (client *Client) GetUsers(ctx context.Context, limit int) ([]model.UserResponse, error) {
	var users []model.UserResponse
	agent := client.agent(fiber.MethodGet, "/api/users")
	if limit > 0 {
		agent.QueryString("limit=" + strconv.Itoa(limit))
	}
	_, err := do(ctx, client, agent, &users)
	return users, err
}

func (client *Client) GetUserById(ctx context.Context, userId uuid.UUID) (model.UserResponse, error) {
	var user model.UserResponse
	_, err := do(ctx, client, client.agent(fiber.MethodGet, "/api/users/"+userId.String()), &user)
	return user, err
}

func (client *Client) UpdateUser(ctx context.Context, userId uuid.UUID, payload model.UserUpdateRequest, avatar *File) (model.UserResponse, error) {
	fields := map[string]string{
		"name":     payload.Name,
		"username": payload.Username,
	}
	if payload.Bio != nil {
		fields["bio"] = *payload.Bio
	}

	agent := client.agent(fiber.MethodPut, "/api/users/"+userId.String())
	multipart(agent, fields, "avatar", avatar)

	var user model.UserResponse
	_, err := do(ctx, client, agent, &user)
	return user, err
}

func (client *Client) GetUserPosts(ctx context.Context, userId uuid.UUID, cursor string) (model.PostListResponse, error) {
	return client.listPosts(ctx, "/api/users/"+userId.String()+"/posts", url.Values{"cursor": {cursor}})
}

func (client *Client) GetSavedPosts(ctx context.Context) ([]model.PostResponse, error) {
	var posts []model.PostResponse
	_, err := do(ctx, client, client.agent(fiber.MethodGet, "/api/users/me/saves"), &posts)
	return posts, err
}

func (client *Client) CreatePost(ctx context.Context, payload model.PostCreateRequest, image File) (model.PostResponse, error) {
	agent := client.agent(fiber.MethodPost, "/api/posts")
	multipart(agent, map[string]string{
		"caption":  payload.Caption,
		"location": payload.Location,
		"tags":     payload.Tags,
	}, "image", &image)

	var post model.PostResponse
	_, err := do(ctx, client, agent, &post)
	return post, err
}

func (client *Client) UpdatePost(ctx context.Context, postId uuid.UUID, payload model.PostUpdateRequest, image *File) (model.PostResponse, error) {
	agent := client.agent(fiber.MethodPut, "/api/posts/"+postId.String())
	multipart(agent, map[string]string{
		"caption":  payload.Caption,
		"location": payload.Location,
		"tags":     payload.Tags,
	}, "image", image)

	var post model.PostResponse
	_, err := do(ctx, client, agent, &post)
	return post, err
}

func (client *Client) DeletePost(ctx context.Context, postId uuid.UUID) error {
	_, err := do[struct{}](ctx, client, client.agent(fiber.MethodDelete, "/api/posts/"+postId.String()), nil)
	return err
}

func (client *Client) GetPostById(ctx context.Context, postId uuid.UUID) (model.PostResponse, error) {
	var post model.PostResponse
	_, err := do(ctx, client, client.agent(fiber.MethodGet, "/api/posts/"+postId.String()), &post)
	return post, err
}

func (client *Client) GetRecentPosts(ctx context.Context, cursor string) (model.PostListResponse, error) {
	return client.listPosts(ctx, "/api/posts/recent", url.Values{"cursor": {cursor}})
}

func (client *Client) GetInfinitePosts(ctx context.Context, cursor string, limit int) (model.PostListResponse, error) {
	query := url.Values{"cursor": {cursor}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return client.listPosts(ctx, "/api/posts", query)
}

func (client *Client) SearchPosts(ctx context.Context, searchTerm string) (model.PostListResponse, error) {
	return client.listPosts(ctx, "/api/posts/search", url.Values{"q": {searchTerm}})
}

func (client *Client) LikePost(ctx context.Context, postId uuid.UUID) (model.PostLikesResponse, error) {
	var likes model.PostLikesResponse
	_, err := do(ctx, client, client.agent(fiber.MethodPost, "/api/posts/"+postId.String()+"/likes"), &likes)
	return likes, err
}

func (client *Client) UnlikePost(ctx context.Context, postId uuid.UUID) (model.PostLikesResponse, error) {
	var likes model.PostLikesResponse
	_, err := do(ctx, client, client.agent(fiber.MethodDelete, "/api/posts/"+postId.String()+"/likes"), &likes)
	return likes, err
}

func (client *Client) SavePost(ctx context.Context, postId uuid.UUID) (model.SaveResponse, error) {
	var save model.SaveResponse
	_, err := do(ctx, client, client.agent(fiber.MethodPost, "/api/posts/"+postId.String()+"/saves"), &save)
	return save, err
}

func (client *Client) DeleteSave(ctx context.Context, saveId uuid.UUID) error {
	_, err := do[struct{}](ctx, client, client.agent(fiber.MethodDelete, "/api/saves/"+saveId.String()), nil)
	return err
}

func (client *Client) listPosts(ctx context.Context, path string, query url.Values) (model.PostListResponse, error) {
	for key, values := range query {
		if len(values) == 0 || values[0] == "" {
			query.Del(key)
		}
	}

	agent := client.agent(fiber.MethodGet, path)
	if len(query) > 0 {
		agent.QueryString(query.Encode())
	}

	var posts []model.PostResponse
	page, err := do(ctx, client, agent, &posts)
	if err != nil {
		return model.PostListResponse{}, err
	}

	if posts == nil {
		posts = []model.PostResponse{}
	}

	return model.PostListResponse{Data: posts, Page: page}, nil
}
