package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func securityHeadersFor(t *testing.T, cfg SecurityHeadersConfig) http.Header {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecurityHeaders_Production(t *testing.T) {
	h := securityHeadersFor(t, SecurityHeadersConfig{IsDevelopment: false})

	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, h.Get("Strict-Transport-Security"))

	csp := h.Get("Content-Security-Policy")
	assert.Contains(t, csp, "default-src 'self'")
	assert.Contains(t, csp, "frame-src 'none'")
	assert.NotContains(t, csp, "unsafe-eval")
}

func TestSecurityHeaders_DevelopmentRelaxations(t *testing.T) {
	h := securityHeadersFor(t, SecurityHeadersConfig{IsDevelopment: true})

	assert.Empty(t, h.Get("Strict-Transport-Security"))
	assert.Contains(t, h.Get("Content-Security-Policy"), "unsafe-eval")
}
