package user

import (
	"net/http"

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

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		api.RespondError(c, err, "Failed to register user")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		api.RespondError(c, err, "Failed to log in")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "refresh_token is required"})
		return
	}

	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		api.RespondError(c, err, "Failed to refresh token")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated user's own profile.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	u, err := h.svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err, "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		api.RespondError(c, err, "Failed to fetch users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	actorID, actorName := auth.GetActor(c)
	u, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, actorID, actorName, c.ClientIP())
	if err != nil {
		api.RespondError(c, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) DeactivateUser(c *gin.Context) {
	actorID, actorName := auth.GetActor(c)
	if err := h.svc.Deactivate(c.Request.Context(), c.Param("id"), actorID, actorName, c.ClientIP()); err != nil {
		api.RespondError(c, err, "Failed to deactivate user")
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "User deactivated"})
}
