// README: Profile handlers for the calling user, plus public rating lists.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehail/internal/http/middleware"
	"ridehail/internal/modules/rating"
	"ridehail/internal/modules/user"
)

type UserHandler struct {
	users   *user.Service
	ratings *rating.Service
}

func NewUserHandler(users *user.Service, ratings *rating.Service) *UserHandler {
	return &UserHandler{users: users, ratings: ratings}
}

func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, u)
}

type updateMeReq struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	Language    *string `json:"language"`
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateMeReq
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.Update(c.Request.Context(), middleware.CallerUID(c), user.Patch{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Phone:       req.Phone,
		Language:    req.Language,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, u)
}

type onlineReq struct {
	Online *bool `json:"online" binding:"required"`
}

func (h *UserHandler) SetOnline(c *gin.Context) {
	var req onlineReq
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.SetOnline(c.Request.Context(), middleware.CallerUID(c), *req.Online)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, u)
}

func (h *UserHandler) Ratings(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.users.Get(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	list, err := h.ratings.UserRatings(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"ratings": list, "average": average(list)})
}

func average(list []rating.Rating) float64 {
	if len(list) == 0 {
		return 0
	}
	sum := 0
	for _, r := range list {
		sum += r.Score
	}
	return float64(sum) / float64(len(list))
}
