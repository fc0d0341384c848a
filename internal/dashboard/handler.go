package dashboard

import (
	"net/http"
	"time"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/api"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/dateutil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
	loc *time.Location
}

func NewHandler(svc *Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, loc: loc}
}

func (h *Handler) GetSummary(c *gin.Context) {
	var date time.Time
	if v := c.Query("date"); v != "" {
		parsed, err := dateutil.ParseDate(v, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	summary, err := h.svc.GetSummary(c.Request.Context(), date)
	if err != nil {
		api.RespondError(c, err, "Failed to build dashboard summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}
