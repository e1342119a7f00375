// README: Driver handlers for accept, decline, arrival, start and complete.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehail/internal/http/middleware"
	"ridehail/internal/modules/ride"
	"ridehail/internal/types"
)

type DriverHandler struct {
	rides *ride.Service
}

func NewDriverHandler(svc *ride.Service) *DriverHandler {
	return &DriverHandler{rides: svc}
}

func (h *DriverHandler) Accept(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.rides.Accept(c.Request.Context(), ride.AcceptCommand{
		RideID:   id,
		DriverID: middleware.CallerUID(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *DriverHandler) Decline(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.rides.Decline(c.Request.Context(), ride.DeclineCommand{
		RideID:   id,
		DriverID: middleware.CallerUID(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *DriverHandler) Arrived(c *gin.Context) {
	h.assigned(c, func(id types.ID) (ride.Ride, error) {
		return h.rides.MarkDriverArrived(c.Request.Context(), ride.ArriveCommand{RideID: id})
	})
}

func (h *DriverHandler) Start(c *gin.Context) {
	h.assigned(c, func(id types.ID) (ride.Ride, error) {
		return h.rides.Start(c.Request.Context(), ride.StartCommand{RideID: id})
	})
}

func (h *DriverHandler) Complete(c *gin.Context) {
	h.assigned(c, func(id types.ID) (ride.Ride, error) {
		return h.rides.Complete(c.Request.Context(), ride.CompleteCommand{RideID: id})
	})
}

// assigned runs op only when the caller is the ride's driver.
func (h *DriverHandler) assigned(c *gin.Context, op func(types.ID) (ride.Ride, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.rides.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !r.IsDriver(middleware.CallerUID(c)) {
		writeError(c, http.StatusForbidden, "not the assigned driver")
		return
	}
	r, err = op(id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}
