package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/ferdian3456/snapgram/tests/integration/setup"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	*setup.TestApp
	Infra *setup.TestInfra
}

// startEnv starts the containers, migrates the database and builds the app.
// Everything is torn down when the test ends.
func startEnv(t *testing.T) *testEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	infra, err := setup.StartInfra(ctx, t)
	require.NoError(t, err)
	t.Cleanup(func() { _ = infra.Terminate(ctx, t) })

	require.NoError(t, setup.RunMigration(infra.PgURL, t))

	app := setup.SetupTestApp(t, infra)
	t.Cleanup(func() { setup.TruncateAllTables(t, app.DB, ctx) })

	return &testEnv{TestApp: app, Infra: infra}
}

func (env *testEnv) do(t *testing.T, req *http.Request) (int, setup.APIResponse) {
	t.Helper()

	resp, err := env.App.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode, setup.ParseAPIResponse(t, resp)
}

// signUp registers a fresh user and returns the access token and user id.
func (env *testEnv) signUp(t *testing.T, name string) (token string, userId string) {
	t.Helper()

	body, _ := setup.SignUpBody(name)
	status, resp := env.do(t, setup.CreateJSONRequest(http.MethodPost, "/api/auth/signup", body))
	require.Equal(t, http.StatusOK, status, "sign up failed: %+v", resp.Error)
	token = setup.GetAccessToken(t, resp)

	status, resp = env.do(t, setup.CreateAuthRequest(http.MethodGet, "/api/users/me", nil, token))
	require.Equal(t, http.StatusOK, status)
	userId, _ = setup.GetDataAsMap(t, resp)["id"].(string)
	require.NotEmpty(t, userId)

	return token, userId
}

// createPost uploads a post with a generated image and returns its id.
func (env *testEnv) createPost(t *testing.T, token string, caption string) string {
	t.Helper()

	body, contentType := setup.CreateMultipartFormData(t, "image", "photo.png", setup.CreateTestPNGImage(t), map[string]string{
		"caption":  caption,
		"location": "Jakarta",
		"tags":     "travel, city",
	})
	status, resp := env.do(t, setup.CreateAuthMultipartRequest(http.MethodPost, "/api/posts", body, contentType, token))
	require.Equal(t, http.StatusOK, status, "create post failed: %+v", resp.Error)

	postId, _ := setup.GetDataAsMap(t, resp)["id"].(string)
	require.NotEmpty(t, postId)
	return postId
}
