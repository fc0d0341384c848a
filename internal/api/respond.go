package api

import (
	"net/http"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/apperr"

	"github.com/gin-gonic/gin"
)

// RespondError writes a typed application error with its mapped status, or
// the fallback message with a 500 for anything unexpected.
func RespondError(c *gin.Context, err error, fallback string) {
	if ae, ok := apperr.As(err); ok {
		c.JSON(ae.HTTPStatus(), ErrorResponse{Error: ae.Message, RemainingSeats: ae.RemainingSeats})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
}
