package device

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"smartlight-backend/internal/tuya"
)

// HSV is the platform's color representation: hue 0-360, saturation
// and value 0-1000. Range enforcement is the caller's contract.
type HSV struct {
	H int `json:"h"`
	S int `json:"s"`
	V int `json:"v"`
}

// Status is the flattened device state decoded from the platform's
// code/value pair list. Fields stay nil when the corresponding code is
// absent from the response.
type Status struct {
	OnOff      *bool `json:"onOff,omitempty"`
	Brightness *int  `json:"brightness,omitempty"`
	Temp       *int  `json:"temp,omitempty"`
	Color      *HSV  `json:"color,omitempty"`
}

// ActionResult is the normalized confirmation payload returned for any
// executed command.
type ActionResult struct {
	Message      string `json:"message"`
	DeviceID     string `json:"deviceId"`
	CurrentState any    `json:"currentState"`
}

type statusItem struct {
	Code  string          `json:"code"`
	Value json.RawMessage `json:"value"`
}

type command struct {
	Code  string `json:"code"`
	Value any    `json:"value"`
}

// commandBody carries the command list JSON-stringified into the body,
// per platform convention.
type commandBody struct {
	Commands string `json:"commands"`
}

// Service issues device operations through the authenticated client.
type Service struct {
	client *tuya.Client
}

// NewService creates a device service on top of an authenticated client.
func NewService(client *tuya.Client) *Service {
	return &Service{client: client}
}

// GetStatus reads a device's state and folds the returned code/value
// pairs into a Status. Unrecognized codes are ignored so unknown
// device capabilities never fail a read.
func (s *Service) GetStatus(ctx context.Context, creds tuya.Credentials, deviceID string) (Status, error) {
	endpoint := fmt.Sprintf("/v1.0/devices/%s/status", deviceID)
	env, err := s.client.Call(ctx, creds, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return Status{}, err
	}

	var items []statusItem
	if err := json.Unmarshal(env.Result, &items); err != nil {
		return Status{}, &tuya.DecodeError{Err: err}
	}

	var status Status
	for _, item := range items {
		switch item.Code {
		case "switch_led":
			var on bool
			if err := json.Unmarshal(item.Value, &on); err != nil {
				return Status{}, &tuya.DecodeError{Err: err}
			}
			status.OnOff = &on
		case "bright_value_v2":
			var bright int
			if err := json.Unmarshal(item.Value, &bright); err != nil {
				return Status{}, &tuya.DecodeError{Err: err}
			}
			status.Brightness = &bright
		case "temp_value_v2":
			var temp int
			if err := json.Unmarshal(item.Value, &temp); err != nil {
				return Status{}, &tuya.DecodeError{Err: err}
			}
			status.Temp = &temp
		case "colour_data_v2":
			// The color value is itself a JSON document encoded as a
			// JSON string, so it is parsed twice.
			var nested string
			if err := json.Unmarshal(item.Value, &nested); err != nil {
				return Status{}, &tuya.DecodeError{Err: err}
			}
			var color HSV
			if err := json.Unmarshal([]byte(nested), &color); err != nil {
				return Status{}, &tuya.DecodeError{Err: err}
			}
			status.Color = &color
		}
	}
	return status, nil
}

// SetPower switches a device on or off.
func (s *Service) SetPower(ctx context.Context, creds tuya.Credentials, deviceID string, on bool) (ActionResult, error) {
	if err := s.sendCommands(ctx, creds, deviceID, []command{{Code: "switch_led", Value: on}}); err != nil {
		return ActionResult{}, err
	}

	state := "off"
	if on {
		state = "on"
	}
	return ActionResult{
		Message:      fmt.Sprintf("Device turned %s", state),
		DeviceID:     deviceID,
		CurrentState: map[string]bool{"onOff": on},
	}, nil
}

// SetColor changes a device's color to the given HSV triple. The color
// value is JSON-stringified inside the command, mirroring the nested
// encoding the platform uses on reads.
func (s *Service) SetColor(ctx context.Context, creds tuya.Credentials, deviceID string, color HSV) (ActionResult, error) {
	nested, err := json.Marshal(color)
	if err != nil {
		return ActionResult{}, fmt.Errorf("failed to marshal color value: %w", err)
	}

	if err := s.sendCommands(ctx, creds, deviceID, []command{{Code: "colour_data_v2", Value: string(nested)}}); err != nil {
		return ActionResult{}, err
	}

	return ActionResult{
		Message:      fmt.Sprintf("Device color changed to h=%d s=%d v=%d", color.H, color.S, color.V),
		DeviceID:     deviceID,
		CurrentState: color,
	}, nil
}

func (s *Service) sendCommands(ctx context.Context, creds tuya.Credentials, deviceID string, commands []command) error {
	list, err := json.Marshal(commands)
	if err != nil {
		return fmt.Errorf("failed to marshal command list: %w", err)
	}

	endpoint := fmt.Sprintf("/v1.0/devices/%s/commands", deviceID)
	_, err = s.client.Call(ctx, creds, http.MethodPost, endpoint, nil, commandBody{Commands: string(list)})
	return err
}
