package booking

import (
	"net/http"
	"strconv"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/api"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/auth"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/dateutil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc        *Service
	dispatcher *Dispatcher
}

func NewHandler(svc *Service, dispatcher *Dispatcher) *Handler {
	return &Handler{svc: svc, dispatcher: dispatcher}
}

func actorFrom(c *gin.Context) Actor {
	id, name := auth.GetActor(c)
	return Actor{UserID: id, UserName: name, IPAddress: c.ClientIP()}
}

// respond commits the result to the client, then fans out the outbox
// events. The booking is already durable; event failures only log.
func (h *Handler) respond(c *gin.Context, status int, b *Booking, events []Event) {
	c.JSON(status, b)
	h.dispatcher.Dispatch(c.Request.Context(), events)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	created, events, err := h.svc.Create(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		api.RespondError(c, err, "Failed to create booking")
		return
	}
	h.respond(c, http.StatusCreated, created, events)
}

func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.svc.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.RespondError(c, err, "Failed to fetch booking")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) ListBookings(c *gin.Context) {
	filters := ListFilters{
		ScheduleID: c.Query("schedule_id"),
		Email:      c.Query("email"),
		Status:     c.Query("status"),
	}
	if v := c.Query("gym_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym_id"})
			return
		}
		filters.GymID = id
	}
	if v := c.Query("date"); v != "" {
		date, err := dateutil.ParseDate(v, h.svc.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date must be YYYY-MM-DD"})
			return
		}
		filters.Date = &date
	}

	result, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		api.RespondError(c, err, "Failed to fetch bookings")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	updated, events, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, actorFrom(c))
	if err != nil {
		api.RespondError(c, err, "Failed to update booking")
		return
	}
	h.respond(c, http.StatusOK, updated, events)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	updated, events, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		api.RespondError(c, err, "Failed to cancel booking")
		return
	}
	h.respond(c, http.StatusOK, updated, events)
}

func (h *Handler) SetBookingStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "status is required"})
		return
	}

	updated, events, err := h.svc.SetStatus(c.Request.Context(), c.Param("id"), req.Status, actorFrom(c))
	if err != nil {
		api.RespondError(c, err, "Failed to update booking status")
		return
	}
	h.respond(c, http.StatusOK, updated, events)
}

func (h *Handler) SetBookingNote(c *gin.Context) {
	var req SetNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	updated, events, err := h.svc.SetNote(c.Request.Context(), c.Param("id"), req.Note, actorFrom(c))
	if err != nil {
		api.RespondError(c, err, "Failed to update booking note")
		return
	}
	h.respond(c, http.StatusOK, updated, events)
}

func (h *Handler) SetBookingTrainer(c *gin.Context) {
	var req SetTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	updated, events, err := h.svc.SetTrainer(c.Request.Context(), c.Param("id"), req.TrainerUserID, actorFrom(c))
	if err != nil {
		api.RespondError(c, err, "Failed to assign trainer")
		return
	}
	h.respond(c, http.StatusOK, updated, events)
}

func (h *Handler) MarkBookingPaymented(c *gin.Context) {
	updated, events, err := h.svc.MarkPaymented(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		api.RespondError(c, err, "Failed to mark booking as paid")
		return
	}
	h.respond(c, http.StatusOK, updated, events)
}

// ListAvailableSchedules is the public open-slots listing. It reuses the
// same availability computation the booking guard runs under lock.
func (h *Handler) ListAvailableSchedules(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date is required"})
		return
	}
	date, err := dateutil.ParseDate(dateStr, h.svc.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date must be YYYY-MM-DD"})
		return
	}

	gymID := 0
	if v := c.Query("gym_id"); v != "" {
		gymID, err = strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym_id"})
			return
		}
	}

	var isPrivate *bool
	if v := c.Query("private"); v != "" {
		private, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "private must be true or false"})
			return
		}
		isPrivate = &private
	}

	results, err := h.svc.ListAvailable(c.Request.Context(), date, gymID, isPrivate)
	if err != nil {
		api.RespondError(c, err, "Failed to compute availability")
		return
	}
	c.JSON(http.StatusOK, results)
}
