package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/merchantgate/app/models"
	"github.com/ManuelReschke/merchantgate/app/repository/memory"
	"github.com/ManuelReschke/merchantgate/internal/pkg/keys"
	"github.com/ManuelReschke/merchantgate/internal/pkg/webhooks"
)

func newTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	repos := memory.NewStore().Repositories()
	merchant := &models.Merchant{Name: "Acme", OwnerUserID: 1}
	require.NoError(t, repos.Merchant.Create(context.Background(), merchant))

	kc := NewKeyController(keys.NewService(repos.APIKey))
	wc := NewWebhookController(webhooks.NewService(repos.Webhook))

	app := fiber.New()
	app.Get("/event-types", HandleListEventTypes)
	m := app.Group("/merchants/:merchantID")
	m.Get("/keys", kc.HandleListKeys)
	m.Post("/keys", kc.HandleGenerateKey)
	m.Delete("/keys/:keyID", kc.HandleRevokeKey)
	m.Get("/webhooks", wc.HandleListWebhooks)
	m.Post("/webhooks", wc.HandleCreateWebhook)
	m.Delete("/webhooks/:webhookID", wc.HandleDeactivateWebhook)
	return app, merchant.ID
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out, string(raw)
}

func TestGenerateAndListKeys(t *testing.T) {
	app, merchantID := newTestApp(t)
	base := "/merchants/" + merchantID + "/keys"

	status, created, _ := call(t, app, fiber.MethodPost, base, `{"keyType":"test","name":"ci"}`)
	require.Equal(t, fiber.StatusCreated, status)
	secret, _ := created["secretKey"].(string)
	assert.True(t, strings.HasPrefix(secret, "sk_test_"))
	assert.True(t, strings.HasPrefix(created["publicKey"].(string), "pk_test_"))
	assert.Equal(t, "ci", created["name"])
	assert.Nil(t, created["lastUsedAt"])
	assert.NotContains(t, created, "secretVerifier")

	status, listed, raw := call(t, app, fiber.MethodGet, base, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, listed["data"], 1)
	assert.NotContains(t, raw, secret)
	assert.NotContains(t, raw, "pbkdf2")
}

func TestGenerateKeyRejectsBadInput(t *testing.T) {
	app, merchantID := newTestApp(t)
	base := "/merchants/" + merchantID + "/keys"

	for name, body := range map[string]string{
		"bad type":  `{"keyType":"prod"}`,
		"bad json":  `{"keyType":`,
		"bad limit": `{"keyType":"live","expiresInDays":0}`,
	} {
		t.Run(name, func(t *testing.T) {
			status, out, _ := call(t, app, fiber.MethodPost, base, body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, "validation_error", out["error"])
		})
	}

	status, out, _ := call(t, app, fiber.MethodPost, "/merchants/nope/keys", `{"keyType":"test"}`)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "merchant not found", out["message"])
}

func TestRevokeKey(t *testing.T) {
	app, merchantID := newTestApp(t)
	base := "/merchants/" + merchantID + "/keys"

	_, created, _ := call(t, app, fiber.MethodPost, base, `{"keyType":"live"}`)
	id := created["id"].(string)

	status, _, _ := call(t, app, fiber.MethodDelete, base+"/"+id, "")
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _, _ = call(t, app, fiber.MethodDelete, base+"/"+id, "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, out, _ := call(t, app, fiber.MethodDelete, base+"/unknown", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "not_found", out["error"])

	_, listed, _ := call(t, app, fiber.MethodGet, base, "")
	rows := listed["data"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, false, rows[0].(map[string]any)["isActive"])
}

func TestWebhookLifecycle(t *testing.T) {
	app, merchantID := newTestApp(t)
	base := "/merchants/" + merchantID + "/webhooks"

	status, created, _ := call(t, app, fiber.MethodPost, base,
		`{"url":"https://shop.example/hook","events":["charge.succeeded","*"]}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.True(t, strings.HasPrefix(created["secret"].(string), "whsec_"))
	assert.Equal(t, []any{"charge.succeeded", "*"}, created["events"])
	id := created["id"].(string)

	status, listed, raw := call(t, app, fiber.MethodGet, base, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, listed["data"], 1)
	assert.NotContains(t, raw, created["secret"].(string))

	status, _, _ = call(t, app, fiber.MethodDelete, base+"/"+id, "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, out, _ := call(t, app, fiber.MethodPost, base, `{"url":"https://shop.example/hook","events":["charge.*"]}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, out["message"], "charge.*")
}

func TestListEventTypes(t *testing.T) {
	app, _ := newTestApp(t)
	status, out, _ := call(t, app, fiber.MethodGet, "/event-types", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, out["data"], 14)
	assert.Equal(t, "*", out["wildcard"])
}

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, formatTimePtr(nil))

	now := time.Date(2024, 5, 1, 12, 34, 56, 0, time.Local)
	formatted := formatTimePtr(&now)
	assert.IsType(t, "", formatted)

	expected := now.UTC().Format(time.RFC3339)
	assert.Equal(t, expected, formatted)
}
