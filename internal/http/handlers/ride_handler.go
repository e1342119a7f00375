// README: Ride handlers for request, lookups, history and cancel.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ridehail/internal/http/middleware"
	"ridehail/internal/modules/ride"
	"ridehail/internal/modules/user"
	"ridehail/internal/modules/vehicle"
	"ridehail/internal/types"
)

const maxHistoryLimit = 100

type RideHandler struct {
	rides *ride.Service
}

func NewRideHandler(svc *ride.Service) *RideHandler {
	return &RideHandler{rides: svc}
}

type requestRideReq struct {
	OriginAddress      string      `json:"origin_address" binding:"required"`
	DestinationAddress string      `json:"destination_address" binding:"required"`
	Origin             types.Point `json:"origin"`
	Destination        types.Point `json:"destination"`
	VehicleType        string      `json:"vehicle_type"`
	PaymentMethod      string      `json:"payment_method"`
}

func (h *RideHandler) Create(c *gin.Context) {
	var req requestRideReq
	if !bindJSON(c, &req) {
		return
	}
	if req.VehicleType == "" {
		req.VehicleType = string(vehicle.TierEconomy)
	}
	if !vehicle.Tier(req.VehicleType).Valid() {
		writeError(c, http.StatusBadRequest, "unknown vehicle_type")
		return
	}
	if req.PaymentMethod != "" && !ride.ValidPaymentMethod(req.PaymentMethod) {
		writeError(c, http.StatusBadRequest, "unknown payment_method")
		return
	}
	if !req.Origin.Valid() || !req.Destination.Valid() {
		writeError(c, http.StatusBadRequest, "coordinates out of range")
		return
	}
	r, err := h.rides.Create(c.Request.Context(), ride.CreateCommand{
		PassengerID:        middleware.CallerUID(c),
		OriginAddress:      req.OriginAddress,
		DestinationAddress: req.DestinationAddress,
		Origin:             req.Origin,
		Destination:        req.Destination,
		VehicleType:        req.VehicleType,
		PaymentMethod:      req.PaymentMethod,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}

// Get is open to participants; drivers may also view a ride still waiting for one.
func (h *RideHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.rides.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	uid := middleware.CallerUID(c)
	open := r.Status == ride.StatusRequested && middleware.CallerRole(c) == user.RoleDriver
	if !r.HasParticipant(uid) && !open {
		writeError(c, http.StatusForbidden, "not a participant")
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *RideHandler) Active(c *gin.Context) {
	r, ok, err := h.rides.ActiveRideForUser(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !ok {
		writeJSON(c, http.StatusOK, map[string]any{"ride": nil})
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"ride": r})
}

func (h *RideHandler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	rides, err := h.rides.UserRideHistory(c.Request.Context(), middleware.CallerUID(c), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"rides": rides})
}

type cancelReq struct {
	Reason string `json:"reason" binding:"max=280"`
}

func (h *RideHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req cancelReq
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	r, err := h.rides.Get(ctx, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	uid := middleware.CallerUID(c)
	if !r.HasParticipant(uid) {
		writeError(c, http.StatusForbidden, "not a participant")
		return
	}
	actor := ride.ActorPassenger
	if r.IsDriver(uid) {
		actor = ride.ActorDriver
	}
	r, err = h.rides.Cancel(ctx, ride.CancelCommand{
		RideID:    id,
		ActorType: actor,
		ActorID:   uid,
		Reason:    req.Reason,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *RideHandler) Events(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	r, err := h.rides.Get(ctx, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !r.HasParticipant(middleware.CallerUID(c)) {
		writeError(c, http.StatusForbidden, "not a participant")
		return
	}
	events, err := h.rides.Events(ctx, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if events == nil {
		events = []ride.Event{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"events": events})
}
