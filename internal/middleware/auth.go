package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// SecretHeader carries the shared ingest secret.
const SecretHeader = "X-Secret"

// SecretAuth returns Gin middleware that requires the shared secret in the
// X-Secret header or the "secret" form field. The presented value is compared
// in constant time with secret, or checked against the bcrypt hash when one is
// configured. With neither configured every request is rejected.
func SecretAuth(secret, secretHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(SecretHeader)
		if presented == "" {
			presented = c.PostForm("secret")
		}

		if presented == "" || !secretMatches(presented, secret, secretHash) {
			abortJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid secret")
			return
		}
		c.Next()
	}
}

func secretMatches(presented, secret, secretHash string) bool {
	if secretHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(presented)) == nil
	}
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) == 1
}

func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": msg},
	})
}
