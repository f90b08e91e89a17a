package integration

import (
	"net/http"
	"testing"

	"github.com/ferdian3456/snapgram/tests/integration/setup"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func likesOf(t *testing.T, resp setup.APIResponse) []any {
	likes, _ := setup.GetDataAsMap(t, resp)["likes"].([]any)
	return likes
}

func TestLikes(t *testing.T) {
	env := startEnv(t)
	token, userId := env.signUp(t, "Jane Doe")
	otherToken, otherId := env.signUp(t, "John Smith")

	postId := env.createPost(t, token, "Sunset at the pier")
	likesUrl := "/api/posts/" + postId + "/likes"

	status, resp := env.do(t, setup.CreateAuthRequest(http.MethodPost, likesUrl, nil, token))
	require.Equal(t, http.StatusOK, status, "%+v", resp.Error)
	assert.Equal(t, []any{userId}, likesOf(t, resp))

	status, resp = env.do(t, setup.CreateAuthRequest(http.MethodPost, likesUrl, nil, token))
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, likesOf(t, resp), 1, "liking twice keeps one like")

	status, resp = env.do(t, setup.CreateAuthRequest(http.MethodPost, likesUrl, nil, otherToken))
	require.Equal(t, http.StatusOK, status)
	assert.ElementsMatch(t, []any{userId, otherId}, likesOf(t, resp))

	status, resp = env.do(t, setup.CreateAuthRequest(http.MethodDelete, likesUrl, nil, token))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{otherId}, likesOf(t, resp))

	status, resp = env.do(t, setup.CreateAuthRequest(http.MethodGet, "/api/posts/"+postId, nil, token))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{otherId}, likesOf(t, resp), "post read reflects the like set")

	status, _ = env.do(t, setup.CreateAuthRequest(http.MethodPost, "/api/posts/00000000-0000-0000-0000-000000000000/likes", nil, token))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSaves(t *testing.T) {
	env := startEnv(t)
	token, _ := env.signUp(t, "Jane Doe")
	otherToken, _ := env.signUp(t, "John Smith")

	postId := env.createPost(t, token, "Sunset at the pier")

	status, resp := env.do(t, setup.CreateAuthRequest(http.MethodPost, "/api/posts/"+postId+"/saves", nil, token))
	require.Equal(t, http.StatusOK, status, "%+v", resp.Error)
	saveId, _ := setup.GetDataAsMap(t, resp)["id"].(string)
	require.NotEmpty(t, saveId)

	status, resp = env.do(t, setup.CreateAuthRequest(http.MethodPost, "/api/posts/"+postId+"/saves", nil, token))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, saveId, setup.GetDataAsMap(t, resp)["id"], "saving twice returns the same save")

	status, resp = env.do(t, setup.CreateAuthRequest(http.MethodGet, "/api/users/me", nil, token))
	require.Equal(t, http.StatusOK, status)
	saves, _ := setup.GetDataAsMap(t, resp)["saves"].([]any)
	require.Len(t, saves, 1)
	assert.Equal(t, postId, saves[0].(map[string]any)["postId"])

	status, resp = env.do(t, setup.CreateAuthRequest(http.MethodGet, "/api/users/me/saves", nil, token))
	require.Equal(t, http.StatusOK, status)
	saved := setup.GetDataAsArray(t, resp)
	require.Len(t, saved, 1)
	assert.Equal(t, postId, saved[0].(map[string]any)["id"])

	status, _ = env.do(t, setup.CreateAuthRequest(http.MethodDelete, "/api/saves/"+saveId, nil, otherToken))
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, setup.CreateAuthRequest(http.MethodDelete, "/api/saves/"+saveId, nil, token))
	require.Equal(t, http.StatusOK, status)

	status, resp = env.do(t, setup.CreateAuthRequest(http.MethodGet, "/api/users/me", nil, token))
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, setup.GetDataAsMap(t, resp)["saves"])

	status, _ = env.do(t, setup.CreateAuthRequest(http.MethodDelete, "/api/saves/"+saveId, nil, token))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateProfile(t *testing.T) {
	env := startEnv(t)
	token, userId := env.signUp(t, "Jane Doe")
	otherToken, _ := env.signUp(t, "John Smith")

	body, contentType := setup.CreateMultipartFormData(t, "avatar", "", nil, map[string]string{
		"name":     "Janet Doe",
		"username": "janet_" + setup.GenerateRandomString(4),
		"bio":      "Chasing sunsets",
	})
	status, resp := env.do(t, setup.CreateAuthMultipartRequest(http.MethodPut, "/api/users/"+userId, body, contentType, otherToken))
	assert.Equal(t, http.StatusForbidden, status)

	body, contentType = setup.CreateMultipartFormData(t, "avatar", "avatar.png", setup.CreateTestPNGImage(t), map[string]string{
		"name":     "Janet Doe",
		"username": "janet_" + setup.GenerateRandomString(4),
		"bio":      "Chasing sunsets",
	})
	status, resp = env.do(t, setup.CreateAuthMultipartRequest(http.MethodPut, "/api/users/"+userId, body, contentType, token))
	require.Equal(t, http.StatusOK, status, "%+v", resp.Error)

	user := setup.GetDataAsMap(t, resp)
	assert.Equal(t, "Janet Doe", user["name"])
	assert.Equal(t, "Chasing sunsets", user["bio"])
	assert.Contains(t, user["imageUrl"], "/api/files/")

	status, resp = env.do(t, setup.CreateAuthRequest(http.MethodGet, "/api/users?limit=1", nil, token))
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, setup.GetDataAsArray(t, resp), 1)
}
