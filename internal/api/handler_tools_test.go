package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"smartlight-backend/config"
	"smartlight-backend/internal/device"
	"smartlight-backend/internal/model"
	"smartlight-backend/internal/store"
	"smartlight-backend/internal/tools"
	"smartlight-backend/internal/tuya"
)

type testStack struct {
	router http.Handler
	store  store.Store
}

// newTestStack wires a real store, registry, and router against a mock
// platform. jwtSecret may be empty to disable auth.
func newTestStack(t *testing.T, jwtSecret string, handle http.HandlerFunc) *testStack {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.ActionRecord{}, &model.PushSubscription{}))
	appStore := store.NewGormStore(db)

	platform := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1.0/token" {
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"result":  map[string]any{"access_token": "token"},
			})
			return
		}
		handle(w, r)
	}))
	t.Cleanup(platform.Close)

	creds := tuya.Credentials{AccessKey: "ak", SecretKey: "sk", BaseURL: platform.URL}
	rooms := device.Rooms{"bedroom": "bf1234", "livingroom": "bf5678"}
	registry := tools.NewRegistry(device.NewService(tuya.NewClient()), creds, rooms)

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 100
	cfg.Server.RateLimitBurst = 100
	cfg.Server.CacheTTLSeconds = 1
	cfg.Auth.JWTSecret = jwtSecret

	handler := NewHandler(appStore, registry, nil, nil)
	return &testStack{router: NewRouter(handler, cfg), store: appStore}
}

func bearerToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "chat-loop",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestListTools(t *testing.T) {
	stack := newTestStack(t, "", func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/tools", nil)
	stack.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tools []tools.Tool `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tools, 3)
	assert.Equal(t, "change_color", resp.Tools[0].Name)
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-jwt-secret"
	stack := newTestStack(t, secret, func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/tools", nil)
	stack.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/tools", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, secret))
	stack.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/tools", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "wrong-secret"))
	stack.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvokeTool_Success(t *testing.T) {
	stack := newTestStack(t, "", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "result": true})
	})

	w := httptest.NewRecorder()
	body := `{"room":"Bedroom","on":true}`
	req, _ := http.NewRequest(http.MethodPost, "/api/tools/turn_on_off", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	stack.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result tools.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)

	// Every invocation lands in the action log.
	actions, err := stack.store.RecentActions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "turn_on_off", actions[0].Tool)
	assert.Equal(t, "bedroom", actions[0].Room)
	assert.Equal(t, "bf1234", actions[0].DeviceID)
	assert.True(t, actions[0].Success)
	assert.Empty(t, actions[0].ErrorKind)
}

func TestInvokeTool_UnknownTool(t *testing.T) {
	stack := newTestStack(t, "", func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/tools/open_garage", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	stack.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	// Unknown tools are not logged.
	actions, err := stack.store.RecentActions(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestInvokeTool_UnknownRoomIsLogged(t *testing.T) {
	stack := newTestStack(t, "", func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/tools/get_device_status", strings.NewReader(`{"room":"garage"}`))
	req.Header.Set("Content-Type", "application/json")
	stack.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result tools.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unknown room")

	actions, err := stack.store.RecentActions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.False(t, actions[0].Success)
	assert.Equal(t, "unknown_room", actions[0].ErrorKind)
}

func TestInvokeTool_PlatformErrorKind(t *testing.T) {
	stack := newTestStack(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/tools/turn_on_off", strings.NewReader(`{"room":"bedroom","on":false}`))
	req.Header.Set("Content-Type", "application/json")
	stack.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	actions, err := stack.store.RecentActions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "http", actions[0].ErrorKind)
}
