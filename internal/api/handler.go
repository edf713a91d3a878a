package api

import (
	"errors"

	"github.com/SherClockHolmes/webpush-go"

	"smartlight-backend/internal/device"
	"smartlight-backend/internal/notification"
	"smartlight-backend/internal/store"
	"smartlight-backend/internal/tools"
	"smartlight-backend/internal/tuya"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	registry *tools.Registry
	pool     *notification.WorkerPool
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, registry *tools.Registry, pool *notification.WorkerPool, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:    s,
		registry: registry,
		pool:     pool,
		webpush:  webpushOptions,
	}
}

// errorKind maps a failure to the short tag stored in the action log,
// so consumers can branch without string matching.
func errorKind(err error) string {
	if err == nil {
		return ""
	}
	var authErr *tuya.AuthError
	var httpErr *tuya.HTTPError
	var apiErr *tuya.APIError
	var decodeErr *tuya.DecodeError
	switch {
	case errors.Is(err, device.ErrUnknownRoom):
		return "unknown_room"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &httpErr):
		return "http"
	case errors.As(err, &apiErr):
		return "api"
	case errors.As(err, &decodeErr):
		return "decode"
	default:
		return "other"
	}
}
