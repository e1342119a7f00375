// README: Post-ride rating handler.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehail/internal/http/middleware"
	"ridehail/internal/modules/rating"
)

type RatingHandler struct {
	ratings *rating.Service
}

func NewRatingHandler(svc *rating.Service) *RatingHandler {
	return &RatingHandler{ratings: svc}
}

type rateReq struct {
	Score   int    `json:"score" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=500"`
}

func (h *RatingHandler) Create(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req rateReq
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.ratings.Create(c.Request.Context(), rating.CreateCommand{
		RideID:     id,
		FromUserID: middleware.CallerUID(c),
		Score:      req.Score,
		Comment:    req.Comment,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}
