package activitylog

import (
	"net/http"
	"strconv"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListLogs returns the audit trail, newest first. Admin only; filters come
// from query params and default to the most recent 50 entries.
func (h *Handler) ListLogs(c *gin.Context) {
	filters := ListFilters{
		Service: c.Query("service"),
		Action:  c.Query("action"),
		UserID:  c.Query("user_id"),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "limit must be between 1 and 500"})
			return
		}
		filters.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "offset must be a non-negative integer"})
			return
		}
		filters.Offset = n
	}

	result, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch activity logs"})
		return
	}
	c.JSON(http.StatusOK, result)
}
