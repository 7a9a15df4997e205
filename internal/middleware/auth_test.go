package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"farerules/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func secretRouter(secret, hash string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.SecretAuth(secret, hash))
	r.POST("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestSecretAuth_Header(t *testing.T) {
	r := secretRouter("s3cret", "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/test", http.NoBody)
	req.Header.Set(middleware.SecretHeader, "s3cret")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecretAuth_FormField(t *testing.T) {
	r := secretRouter("s3cret", "")

	form := url.Values{"secret": {"s3cret"}}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/test", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecretAuth_BcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	r := secretRouter("ignored-when-hash-set", string(hash))

	for secret, want := range map[string]int{
		"hashed-secret":         http.StatusOK,
		"ignored-when-hash-set": http.StatusUnauthorized,
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/test", http.NoBody)
		req.Header.Set(middleware.SecretHeader, secret)
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, secret)
	}
}

func TestSecretAuth_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		presented  string
	}{
		{"wrong secret", "s3cret", "nope"},
		{"missing secret", "s3cret", ""},
		{"nothing configured", "", "anything"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := secretRouter(tt.configured, "")

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/test", http.NoBody)
			if tt.presented != "" {
				req.Header.Set(middleware.SecretHeader, tt.presented)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, "UNAUTHORIZED", resp["error"].(map[string]interface{})["code"])
		})
	}
}
