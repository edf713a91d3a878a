// Package tools publishes the device actions as callable tool schemas
// for a language-model chat loop.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"smartlight-backend/internal/device"
	"smartlight-backend/internal/tuya"
)

// ErrUnknownTool indicates a tool name with no registration.
var ErrUnknownTool = errors.New("unknown tool")

// Tool describes one callable action: name, description, and a
// JSON-schema parameter declaration the chat loop forwards to the model.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Result is the uniform outcome of a tool execution.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler executes a tool. A non-nil error reports an upstream failure
// (auth, transport, platform, decode); argument problems are reported
// through Result only.
type Handler func(ctx context.Context, args map[string]any) (*Result, error)

// Registry manages available tools.
type Registry struct {
	tools    map[string]Tool
	handlers map[string]Handler
	devices  *device.Service
	creds    tuya.Credentials
	rooms    device.Rooms
}

// NewRegistry creates a registry with the builtin device tools.
func NewRegistry(devices *device.Service, creds tuya.Credentials, rooms device.Rooms) *Registry {
	r := &Registry{
		tools:    make(map[string]Tool),
		handlers: make(map[string]Handler),
		devices:  devices,
		creds:    creds,
		rooms:    rooms,
	}
	r.registerBuiltinTools()
	return r
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool, handler Handler) {
	r.tools[tool.Name] = tool
	r.handlers[tool.Name] = handler
}

// Definitions returns all tool declarations sorted by name.
func (r *Registry) Definitions() []Tool {
	defs := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// ResolveRoom maps a room name to its configured device id.
func (r *Registry) ResolveRoom(name string) (string, error) {
	return r.rooms.Resolve(name)
}

// Execute runs a tool with the given arguments.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (*Result, error) {
	handler, exists := r.handlers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return handler(ctx, args)
}

func (r *Registry) registerBuiltinTools() {
	roomProperty := map[string]any{
		"type":        "string",
		"description": "Room name, e.g. 'bedroom' or 'Living Room'",
	}

	r.Register(Tool{
		Name:        "get_device_status",
		Description: "Read the current state of the light in a room: power, brightness, color temperature, and color.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"room": roomProperty,
			},
			"required": []string{"room"},
		},
	}, r.handleGetDeviceStatus)

	r.Register(Tool{
		Name:        "turn_on_off",
		Description: "Turn the light in a room on or off.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"room": roomProperty,
				"on":   map[string]any{"type": "boolean", "description": "true to turn on, false to turn off"},
			},
			"required": []string{"room", "on"},
		},
	}, r.handleTurnOnOff)

	r.Register(Tool{
		Name:        "change_color",
		Description: "Change the color of the light in a room. Hue 0-360, saturation and value 0-1000.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"room": roomProperty,
				"h":    map[string]any{"type": "integer", "description": "Hue, 0-360"},
				"s":    map[string]any{"type": "integer", "description": "Saturation, 0-1000"},
				"v":    map[string]any{"type": "integer", "description": "Value/brightness, 0-1000"},
			},
			"required": []string{"room", "h", "s", "v"},
		},
	}, r.handleChangeColor)
}

func (r *Registry) handleGetDeviceStatus(ctx context.Context, args map[string]any) (*Result, error) {
	room, ok := stringArg(args, "room")
	if !ok {
		return &Result{Success: false, Error: "room is required"}, nil
	}

	deviceID, err := r.rooms.Resolve(room)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, err
	}

	status, err := r.devices.GetStatus(ctx, r.creds, deviceID)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, err
	}
	return &Result{Success: true, Data: status}, nil
}

func (r *Registry) handleTurnOnOff(ctx context.Context, args map[string]any) (*Result, error) {
	room, ok := stringArg(args, "room")
	if !ok {
		return &Result{Success: false, Error: "room is required"}, nil
	}
	on, ok := args["on"].(bool)
	if !ok {
		return &Result{Success: false, Error: "on must be a boolean"}, nil
	}

	deviceID, err := r.rooms.Resolve(room)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, err
	}

	result, err := r.devices.SetPower(ctx, r.creds, deviceID, on)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, err
	}
	return &Result{Success: true, Data: result}, nil
}

func (r *Registry) handleChangeColor(ctx context.Context, args map[string]any) (*Result, error) {
	room, ok := stringArg(args, "room")
	if !ok {
		return &Result{Success: false, Error: "room is required"}, nil
	}

	h, okH := intArg(args, "h")
	s, okS := intArg(args, "s")
	v, okV := intArg(args, "v")
	if !okH || !okS || !okV {
		return &Result{Success: false, Error: "h, s and v must be integers"}, nil
	}
	if h < 0 || h > 360 {
		return &Result{Success: false, Error: "h must be between 0 and 360"}, nil
	}
	if s < 0 || s > 1000 || v < 0 || v > 1000 {
		return &Result{Success: false, Error: "s and v must be between 0 and 1000"}, nil
	}

	deviceID, err := r.rooms.Resolve(room)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, err
	}

	result, err := r.devices.SetColor(ctx, r.creds, deviceID, device.HSV{H: h, S: s, V: v})
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, err
	}
	return &Result{Success: true, Data: result}, nil
}

func stringArg(args map[string]any, key string) (string, bool) {
	s, ok := args[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// intArg accepts both float64 (JSON numbers) and int.
func intArg(args map[string]any, key string) (int, bool) {
	switch n := args[key].(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
