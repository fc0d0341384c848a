package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindToHTTPStatus(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, BadRequest("x").HTTPStatus())
	require.Equal(t, http.StatusNotFound, NotFound("x").HTTPStatus())
	require.Equal(t, http.StatusConflict, Conflict("x").HTTPStatus())
	require.Equal(t, http.StatusInternalServerError, (&Error{Kind: KindInternal}).HTTPStatus())
}

func TestCapacityConflictCarriesRemainingSeats(t *testing.T) {
	err := CapacityConflict(1, 2)

	require.Equal(t, KindConflict, err.Kind)
	require.NotNil(t, err.RemainingSeats)
	require.Equal(t, 1, *err.RemainingSeats)
	require.Equal(t, "Capacity exceeded: Only 1 seats left (Requested 2)", err.Error())
}

func TestAsUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("create booking: %w", NotFound("schedule not found"))

	e, ok := As(wrapped)
	require.True(t, ok)
	require.Equal(t, KindNotFound, e.Kind)

	require.True(t, IsKind(wrapped, KindNotFound))
	require.False(t, IsKind(wrapped, KindConflict))
	require.False(t, IsKind(errors.New("plain"), KindNotFound))
}
