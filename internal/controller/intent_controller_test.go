package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-scheduler-be/internal/pkg/serverutils"
	"ai-scheduler-be/internal/repository/memory"
	"ai-scheduler-be/internal/service"
	"ai-scheduler-be/pkg/contactimport"
	"ai-scheduler-be/pkg/pending"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAuth(ctx *fiber.Ctx) error {
	if user := ctx.Get("X-Test-User"); user != "" {
		ctx.Locals("user_id", user)
	}
	return ctx.Next()
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := service.NewIntentService(service.IntentServiceDeps{
		Store:    pending.NewMemoryStore(time.Hour, 0),
		Contacts: memory.NewContactRepository(),
	})
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewIntentController(svc).RegisterRoutes(app.Group("/api"), fakeAuth)
	return app
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", "u1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestIntentController_ResolveAndPending(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, http.MethodPost, "/api/intent/v1/resolve", `{"thread_id":"t1","text":"未回答の人にリマインドして"}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	var data struct {
		Result struct {
			Intent      string          `json:"intent"`
			NextPending json.RawMessage `json:"next_pending"`
		} `json:"result"`
		Pending struct {
			Kind     string `json:"kind"`
			ThreadId string `json:"thread_id"`
			Token    string `json:"token"`
		} `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "remind.create", data.Result.Intent)
	assert.Empty(t, data.Result.NextPending)
	assert.Equal(t, "remind_confirm", data.Pending.Kind)
	assert.Equal(t, "t1", data.Pending.ThreadId)
	assert.Empty(t, data.Pending.Token, "token never leaves the server")

	code, env = do(t, app, http.MethodGet, "/api/intent/v1/pending/t1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "remind_confirm")

	code, _ = do(t, app, http.MethodDelete, "/api/intent/v1/pending/t1", "")
	require.Equal(t, http.StatusOK, code)

	code, env = do(t, app, http.MethodGet, "/api/intent/v1/pending/t1", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

func TestIntentController_ValidationError(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, http.MethodPost, "/api/intent/v1/resolve", `{"thread_id":"t1","text":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Errors, "text")
}

func TestIntentController_RequiresUser(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/intent/v1/resolve", strings.NewReader(`{"text":"help"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntentController_Vocabulary(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, http.MethodGet, "/api/intent/v1/vocabulary", "")
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Version string `json:"version"`
		Intents []struct {
			Name      string `json:"name"`
			AIAllowed bool   `json:"ai_allowed"`
		} `json:"intents"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.Version)
	for _, e := range data.Intents {
		if strings.HasSuffix(e.Name, ".confirm") {
			assert.False(t, e.AIAllowed, e.Name)
		}
	}
}

func TestIntentErrorStatus(t *testing.T) {
	assert.Equal(t, fiber.StatusConflict, intentErrorStatus(pending.ErrTokenMismatch))
	assert.Equal(t, fiber.StatusConflict, intentErrorStatus(service.ErrTurnSuperseded))
	assert.Equal(t, fiber.StatusNotFound, intentErrorStatus(pending.ErrNotFound))
	assert.Equal(t, fiber.StatusConflict, intentErrorStatus(fmt.Errorf("commit: %w", contactimport.ErrEmptyBatch)))
	assert.Equal(t, 0, intentErrorStatus(io.EOF))
}
