// README: Registration, login and logout handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehail/internal/auth"
	"ridehail/internal/http/middleware"
	"ridehail/internal/modules/user"
)

type SessionHandler struct {
	users  *user.Service
	issuer auth.Issuer
}

// NewSessionHandler: issuer may be nil when tokens come from an external identity provider.
func NewSessionHandler(users *user.Service, issuer auth.Issuer) *SessionHandler {
	return &SessionHandler{users: users, issuer: issuer}
}

type registerReq struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	Role        string `json:"role" binding:"required,oneof=passenger driver"`
	Language    string `json:"language"`
}

func (h *SessionHandler) Register(c *gin.Context) {
	var req registerReq
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.Register(c.Request.Context(), user.RegisterCommand{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Phone:       req.Phone,
		Role:        user.Role(req.Role),
		Language:    req.Language,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, u)
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *SessionHandler) Login(c *gin.Context) {
	if h.issuer == nil {
		writeError(c, http.StatusNotImplemented, "sign in through the identity provider")
		return
	}
	var req loginReq
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	token, err := h.issuer.Issue(c.Request.Context(), auth.Principal{UserID: u.ID, Role: u.Role})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, map[string]any{"token": token, "user": u})
}

func (h *SessionHandler) Logout(c *gin.Context) {
	if h.issuer != nil {
		if err := h.issuer.Revoke(c.Request.Context(), middleware.CallerToken(c)); err != nil {
			writeServiceError(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}
