package gym

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

func (h *Handler) CreateGym(c *gin.Context) {
	var req CreateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "gym_name and gym_code are required"})
		return
	}

	gym, err := h.svc.CreateGym(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		api.RespondError(c, err, "Failed to create gym")
		return
	}
	c.JSON(http.StatusCreated, gym)
}

func (h *Handler) ListGyms(c *gin.Context) {
	gyms, err := h.svc.ListGyms(c.Request.Context())
	if err != nil {
		api.RespondError(c, err, "Failed to fetch gyms")
		return
	}
	c.JSON(http.StatusOK, gyms)
}

func (h *Handler) GetGym(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	gym, err := h.svc.GetGym(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err, "Failed to fetch gym")
		return
	}
	c.JSON(http.StatusOK, gym)
}

func (h *Handler) AssignTrainer(c *gin.Context) {
	var req AssignTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "user_id and gyms_id are required"})
		return
	}

	tg, err := h.svc.AssignTrainer(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		api.RespondError(c, err, "Failed to assign trainer")
		return
	}
	c.JSON(http.StatusCreated, tg)
}

func (h *Handler) RemoveTrainer(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}
	userID := c.Param("userId")

	if err := h.svc.RemoveTrainer(c.Request.Context(), userID, gymID, actorFrom(c)); err != nil {
		api.RespondError(c, err, "Failed to remove trainer")
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Trainer removed from gym"})
}

func (h *Handler) ListTrainers(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	trainers, err := h.svc.ListTrainers(c.Request.Context(), gymID)
	if err != nil {
		api.RespondError(c, err, "Failed to fetch trainers")
		return
	}
	c.JSON(http.StatusOK, trainers)
}

func (h *Handler) ListAssignableUsers(c *gin.Context) {
	users, err := h.svc.ListAssignableUsers(c.Request.Context())
	if err != nil {
		api.RespondError(c, err, "Failed to fetch users")
		return
	}
	c.JSON(http.StatusOK, users)
}
