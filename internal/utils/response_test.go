package utils_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/campusface/attendance-api/internal/utils"
)

func TestSendSuccessDefaultsMessage(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "", map[string]string{"hello": "world"})
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	decode(t, resp, &payload)

	require.True(t, payload.Success)
	require.Equal(t, "success", payload.Message)
	require.Equal(t, "world", payload.Data["hello"])
}

func TestSendSuccessWithStatus(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session scheduled", nil)
	})

	resp := performRequest(t, app, http.MethodPost, "/")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decode(t, resp, &payload)

	require.True(t, payload.Success)
	require.Equal(t, "session scheduled", payload.Message)
}

func TestSendErrorOmitsData(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusConflict, "session does not accept events")
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var payload struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	decode(t, resp, &payload)

	require.False(t, payload.Success)
	require.Equal(t, "session does not accept events", payload.Message)
	require.Nil(t, payload.Data)
}

func performRequest(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
