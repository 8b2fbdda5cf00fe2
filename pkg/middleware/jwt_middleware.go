package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"mibe/pkg/utils"
)

// Context keys set by JWTAuthMiddleware.
const (
	ContextAccountID = "account_id"
	ContextRole      = "role"
)

// JWTAuthMiddleware admits requests carrying a back-office session token.
func JWTAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing or invalid")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(secret, token)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextAccountID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RoleMiddleware must run after JWTAuthMiddleware.
func RoleMiddleware(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(allowed, c.GetString(ContextRole)) {
			utils.RespondError(c, http.StatusForbidden, "Forbidden: insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AccountID is empty for unauthenticated routes.
func AccountID(c *gin.Context) string {
	return c.GetString(ContextAccountID)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
