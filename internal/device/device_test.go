package device

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartlight-backend/internal/tuya"
)

// newPlatform serves a mock token endpoint plus the given device handler.
func newPlatform(t *testing.T, handle http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1.0/token" {
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"result":  map[string]any{"access_token": "token"},
			})
			return
		}
		handle(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func testCreds(baseURL string) tuya.Credentials {
	return tuya.Credentials{AccessKey: "ak", SecretKey: "sk", BaseURL: baseURL}
}

func TestService_GetStatus_ProjectsKnownCodes(t *testing.T) {
	server := newPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.0/devices/dev-1/status", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result": []map[string]any{
				{"code": "switch_led", "value": true},
				{"code": "colour_data_v2", "value": `{"h":10,"s":500,"v":800}`},
				{"code": "countdown_1", "value": 0},
			},
		})
	})

	svc := NewService(tuya.NewClient())
	status, err := svc.GetStatus(context.Background(), testCreds(server.URL), "dev-1")
	require.NoError(t, err)

	require.NotNil(t, status.OnOff)
	assert.True(t, *status.OnOff)
	require.NotNil(t, status.Color)
	assert.Equal(t, HSV{H: 10, S: 500, V: 800}, *status.Color)
	assert.Nil(t, status.Brightness)
	assert.Nil(t, status.Temp)
}

func TestService_GetStatus_AllCodes(t *testing.T) {
	server := newPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result": []map[string]any{
				{"code": "switch_led", "value": false},
				{"code": "bright_value_v2", "value": 650},
				{"code": "temp_value_v2", "value": 300},
			},
		})
	})

	svc := NewService(tuya.NewClient())
	status, err := svc.GetStatus(context.Background(), testCreds(server.URL), "dev-1")
	require.NoError(t, err)

	require.NotNil(t, status.OnOff)
	assert.False(t, *status.OnOff)
	require.NotNil(t, status.Brightness)
	assert.Equal(t, 650, *status.Brightness)
	require.NotNil(t, status.Temp)
	assert.Equal(t, 300, *status.Temp)
}

func TestService_GetStatus_UnparsableColor(t *testing.T) {
	server := newPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result": []map[string]any{
				{"code": "colour_data_v2", "value": "{broken"},
			},
		})
	})

	svc := NewService(tuya.NewClient())
	_, err := svc.GetStatus(context.Background(), testCreds(server.URL), "dev-1")

	var decodeErr *tuya.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestService_SetPower_CommandBody(t *testing.T) {
	var body struct {
		Commands string `json:"commands"`
	}
	server := newPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1.0/devices/dev-1/commands", r.URL.Path)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))

		json.NewEncoder(w).Encode(map[string]any{"success": true, "result": true})
	})

	svc := NewService(tuya.NewClient())
	result, err := svc.SetPower(context.Background(), testCreds(server.URL), "dev-1", true)
	require.NoError(t, err)

	// The command list is JSON-stringified inside the body.
	var commands []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body.Commands), &commands))
	require.Len(t, commands, 1)
	assert.Equal(t, "switch_led", commands[0]["code"])
	assert.Equal(t, true, commands[0]["value"])

	assert.Equal(t, "dev-1", result.DeviceID)
	assert.Equal(t, "Device turned on", result.Message)
	assert.Equal(t, map[string]bool{"onOff": true}, result.CurrentState)
}

func TestService_SetColor_NestedValue(t *testing.T) {
	var body struct {
		Commands string `json:"commands"`
	}
	server := newPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))
		json.NewEncoder(w).Encode(map[string]any{"success": true, "result": true})
	})

	svc := NewService(tuya.NewClient())
	result, err := svc.SetColor(context.Background(), testCreds(server.URL), "dev-1", HSV{H: 120, S: 1000, V: 500})
	require.NoError(t, err)

	var commands []struct {
		Code  string `json:"code"`
		Value string `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(body.Commands), &commands))
	require.Len(t, commands, 1)
	assert.Equal(t, "colour_data_v2", commands[0].Code)

	// The color value is JSON-stringified a second time inside the command.
	var color HSV
	require.NoError(t, json.Unmarshal([]byte(commands[0].Value), &color))
	assert.Equal(t, HSV{H: 120, S: 1000, V: 500}, color)

	assert.Equal(t, HSV{H: 120, S: 1000, V: 500}, result.CurrentState)
}

func TestService_SetPower_TokenFailureSendsNoCommand(t *testing.T) {
	commandCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1.0/token" {
			json.NewEncoder(w).Encode(map[string]any{"success": false, "msg": "invalid signature"})
			return
		}
		commandCalls++
	}))
	defer server.Close()

	svc := NewService(tuya.NewClient())
	_, err := svc.SetPower(context.Background(), testCreds(server.URL), "dev-1", false)

	var authErr *tuya.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "invalid signature", authErr.Msg)
	assert.Zero(t, commandCalls)
}
