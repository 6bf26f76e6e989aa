package httpapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	OperatorTokenHeader = "X-Operator-Token"
	CronSecretHeader    = "X-Cron-Secret"
)

func tokenAuth(header, expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		given := c.GetHeader(header)
		if expected == "" || subtle.ConstantTimeCompare([]byte(given), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
			return
		}
		c.Next()
	}
}

// OperatorAuth guards the admin surface with the static operator token.
func OperatorAuth(token string) gin.HandlerFunc {
	return tokenAuth(OperatorTokenHeader, token)
}

// CronAuth guards the sweep trigger with the cron secret.
func CronAuth(secret string) gin.HandlerFunc {
	return tokenAuth(CronSecretHeader, secret)
}
