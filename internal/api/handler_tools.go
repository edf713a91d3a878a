package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"smartlight-backend/internal/device"
	"smartlight-backend/internal/model"
	"smartlight-backend/internal/tools"
)

// ListTools handles GET /api/tools. The declarations are static per
// process, so the response is served through the cache middleware.
func (h *Handler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.registry.Definitions()})
}

// InvokeTool handles POST /api/tools/:name. Every invocation is
// recorded in the action log; successful ones are dispatched to the
// notification worker pool.
func (h *Handler) InvokeTool(c *gin.Context) {
	name := c.Param("name")

	args := make(map[string]any)
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&args); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	result, err := h.registry.Execute(c.Request.Context(), name, args)
	if errors.Is(err, tools.ErrUnknownTool) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	record := buildActionRecord(name, args, result, err)
	if storeErr := h.store.RecordAction(c.Request.Context(), record); storeErr != nil {
		// The invocation already happened; losing the log entry must
		// not turn a completed command into an error response.
		c.Error(storeErr)
	} else if record.Success && h.pool != nil {
		h.pool.Dispatch(record.ID)
	}

	c.JSON(http.StatusOK, result)
}

// buildActionRecord normalizes an invocation outcome into a log row.
func buildActionRecord(name string, args map[string]any, result *tools.Result, err error) *model.ActionRecord {
	record := &model.ActionRecord{
		ID:        uuid.NewString(),
		Tool:      name,
		CreatedAt: time.Now().UTC(),
	}
	if room, ok := args["room"].(string); ok {
		record.Room = device.NormalizeRoom(room)
	}

	if result != nil && result.Success {
		record.Success = true
		switch data := result.Data.(type) {
		case device.ActionResult:
			record.DeviceID = data.DeviceID
			record.Message = data.Message
		default:
			record.Message = "Status read"
		}
		return record
	}

	record.ErrorKind = errorKind(err)
	if result != nil {
		record.Message = result.Error
	} else if err != nil {
		record.Message = err.Error()
	}
	if record.ErrorKind == "" {
		// Tool-level argument rejection, no upstream call happened.
		record.ErrorKind = "invalid_args"
	}
	return record
}
