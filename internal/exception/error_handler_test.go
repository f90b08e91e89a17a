package exception

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/ferdian3456/snapgram/internal/constant"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecovery(t *testing.T) {
	app := fiber.New()
	app.Use(Recovery(zap.NewNop()))
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, sonic.Unmarshal(body, &result))
	assert.Equal(t, constant.ERR_INTERNAL_SERVER_ERROR_CODE, result.Error.Code)
}

func TestRecoveryLogsPanic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)

	app := fiber.New()
	app.Use(Recovery(zap.New(core)))
	app.Get("/posts", func(c *fiber.Ctx) error {
		panic(errors.New("nil post"))
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/posts", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/posts", fields["path"])
	assert.Equal(t, "nil post", fields["error"])
}
