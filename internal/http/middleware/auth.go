// README: Bearer token auth middleware; stores the caller Principal on the gin context.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ridehail/internal/auth"
	"ridehail/internal/modules/user"
	"ridehail/internal/types"
)

const (
	ctxPrincipal = "auth.principal"
	ctxToken     = "auth.token"
)

func Auth(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		p, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}
		c.Set(ctxPrincipal, p)
		c.Set(ctxToken, token)
		c.Next()
	}
}

// RequireRole rejects callers whose role differs. Mount after Auth.
func RequireRole(role user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "requires role " + string(role)})
			return
		}
		c.Next()
	}
}

func Caller(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(ctxPrincipal)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func CallerUID(c *gin.Context) types.ID {
	p, _ := Caller(c)
	return p.UserID
}

func CallerRole(c *gin.Context) user.Role {
	p, _ := Caller(c)
	return p.Role
}

// CallerToken returns the raw bearer token, for logout.
func CallerToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}
