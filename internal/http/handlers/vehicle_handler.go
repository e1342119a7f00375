// README: Driver vehicle handlers (register, fetch own, update).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehail/internal/http/middleware"
	"ridehail/internal/modules/vehicle"
)

type VehicleHandler struct {
	vehicles *vehicle.Service
}

func NewVehicleHandler(svc *vehicle.Service) *VehicleHandler {
	return &VehicleHandler{vehicles: svc}
}

type createVehicleReq struct {
	Model        string `json:"model" binding:"required"`
	Year         int    `json:"year" binding:"omitempty,min=1950,max=2100"`
	Color        string `json:"color"`
	LicensePlate string `json:"license_plate" binding:"required"`
	Tier         string `json:"tier" binding:"omitempty,oneof=economy comfort premium"`
}

func (h *VehicleHandler) Create(c *gin.Context) {
	var req createVehicleReq
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.vehicles.Create(c.Request.Context(), vehicle.CreateCommand{
		DriverID:     middleware.CallerUID(c),
		Model:        req.Model,
		Year:         req.Year,
		Color:        req.Color,
		LicensePlate: req.LicensePlate,
		Tier:         vehicle.Tier(req.Tier),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, v)
}

func (h *VehicleHandler) Mine(c *gin.Context) {
	v, err := h.vehicles.ByDriver(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}

func (h *VehicleHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var p vehicle.Patch
	if !bindJSON(c, &p) {
		return
	}
	v, err := h.vehicles.Update(c.Request.Context(), id, middleware.CallerUID(c), p)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}
