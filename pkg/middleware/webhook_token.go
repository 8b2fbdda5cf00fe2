package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mibe/pkg/utils"
)

// AsaasTokenHeader carries the shared secret configured on the Asaas webhook.
const AsaasTokenHeader = "asaas-access-token"

// WebhookTokenMiddleware rejects gateway callbacks that do not carry the
// configured access token. The response follows the webhook error shape.
func WebhookTokenMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.WebhookTokenMatches(expected, c.GetHeader(AsaasTokenHeader)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
			return
		}
		c.Next()
	}
}
