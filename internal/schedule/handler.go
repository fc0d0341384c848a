package schedule

import (
	"net/http"
	"strconv"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/api"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func actorFrom(c *gin.Context) Actor {
	id, name := auth.GetActor(c)
	return Actor{UserID: id, UserName: name, IPAddress: c.ClientIP()}
}

func (h *Handler) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	sched, err := h.svc.CreateSchedule(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		api.RespondError(c, err, "Failed to create schedule")
		return
	}
	c.JSON(http.StatusCreated, sched)
}

func (h *Handler) GetSchedule(c *gin.Context) {
	sched, err := h.svc.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.RespondError(c, err, "Failed to fetch schedule")
		return
	}
	c.JSON(http.StatusOK, sched)
}

func (h *Handler) ListSchedules(c *gin.Context) {
	filters := ListFilters{ActiveOnly: c.Query("all") != "true"}
	if v := c.Query("gym_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym_id"})
			return
		}
		filters.GymID = id
	}
	if v := c.Query("private"); v != "" {
		private, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "private must be true or false"})
			return
		}
		filters.IsPrivate = &private
	}

	schedules, err := h.svc.ListSchedules(c.Request.Context(), filters)
	if err != nil {
		api.RespondError(c, err, "Failed to fetch schedules")
		return
	}
	c.JSON(http.StatusOK, schedules)
}

func (h *Handler) UpdateSchedule(c *gin.Context) {
	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	sched, err := h.svc.UpdateSchedule(c.Request.Context(), c.Param("id"), req, actorFrom(c))
	if err != nil {
		api.RespondError(c, err, "Failed to update schedule")
		return
	}
	c.JSON(http.StatusOK, sched)
}

func (h *Handler) DeleteSchedule(c *gin.Context) {
	if err := h.svc.DeleteSchedule(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		api.RespondError(c, err, "Failed to delete schedule")
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Schedule deleted"})
}

func (h *Handler) CreateAdvanceConfig(c *gin.Context) {
	var req CreateAdvanceConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.svc.CreateAdvanceConfig(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		api.RespondError(c, err, "Failed to create advance config")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) GetAdvanceConfig(c *gin.Context) {
	cfg, err := h.svc.GetAdvanceConfig(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.RespondError(c, err, "Failed to fetch advance config")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *Handler) ListAdvanceConfigs(c *gin.Context) {
	filters := ConfigFilters{
		ScheduleID: c.Query("schedule_id"),
		ActiveOnly: c.Query("all") != "true",
	}
	if v := c.Query("gym_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym_id"})
			return
		}
		filters.GymID = id
	}

	configs, err := h.svc.ListAdvanceConfigs(c.Request.Context(), filters)
	if err != nil {
		api.RespondError(c, err, "Failed to fetch advance configs")
		return
	}
	c.JSON(http.StatusOK, configs)
}

func (h *Handler) UpdateAdvanceConfig(c *gin.Context) {
	var req UpdateAdvanceConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.svc.UpdateAdvanceConfig(c.Request.Context(), c.Param("id"), req, actorFrom(c))
	if err != nil {
		api.RespondError(c, err, "Failed to update advance config")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) DeleteAdvanceConfig(c *gin.Context) {
	if err := h.svc.DeleteAdvanceConfig(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		api.RespondError(c, err, "Failed to delete advance config")
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Advance config deactivated"})
}
