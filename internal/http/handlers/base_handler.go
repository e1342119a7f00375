// README: Base handler utilities (JSON helpers, id parsing, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehail/internal/auth"
	"ridehail/internal/modules/pricing"
	"ridehail/internal/modules/rating"
	"ridehail/internal/modules/ride"
	"ridehail/internal/modules/user"
	"ridehail/internal/modules/vehicle"
	"ridehail/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// pathID parses the :id segment; it writes the 400 itself on failure.
func pathID(c *gin.Context) (types.ID, bool) {
	id, ok := types.ParseID(c.Param("id"))
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid id")
	}
	return id, ok
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// writeServiceError maps core errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ride.ErrBadRequest),
		errors.Is(err, user.ErrBadRequest),
		errors.Is(err, vehicle.ErrBadRequest),
		errors.Is(err, pricing.ErrUnknownTier):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		writeError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, vehicle.ErrForbidden),
		errors.Is(err, vehicle.ErrNotDriver),
		errors.Is(err, rating.ErrNotParticipant):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ride.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, vehicle.ErrNotFound),
		errors.Is(err, rating.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ride.ErrInvalidState),
		errors.Is(err, ride.ErrActiveRide),
		errors.Is(err, ride.ErrConflict),
		errors.Is(err, user.ErrUsernameTaken),
		errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, vehicle.ErrPlateTaken),
		errors.Is(err, rating.ErrAlreadyRated),
		errors.Is(err, rating.ErrRideNotCompleted):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, ride.ErrNoEventLog):
		writeError(c, http.StatusNotImplemented, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
