package server

import (
	"net/http"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/api"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/email"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

// TestEmail pushes a probe message through the real queue so admins can
// verify the Redis worker and SMTP credentials end to end.
func TestEmail(emailService *email.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		to := c.Query("email")
		if to == "" {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "email parameter required"})
			return
		}

		msg := email.Message{
			Type:    "test",
			To:      to,
			Name:    "Test User",
			Subject: "Test Email from Sting Hive",
			Body:    "Email delivery is working.",
		}
		if err := emailService.Enqueue(c.Request.Context(), msg); err != nil {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
			return
		}

		c.JSON(http.StatusOK, api.MessageResponse{Message: "Email queued successfully"})
	}
}

func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
