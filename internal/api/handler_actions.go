package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetActions handles GET /api/actions and returns the most recent
// tool invocations, newest first.
func (h *Handler) GetActions(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	actions, err := h.store.RecentActions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve actions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}
