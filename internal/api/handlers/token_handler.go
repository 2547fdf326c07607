package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quartergroup/survey/backend/internal/services"
)

// TokenHandler serves the per-session anti-forgery token.
type TokenHandler struct {
	tokens *services.TokenService
}

func NewTokenHandler(tokens *services.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// Get returns the session token, issuing it lazily on first request.
func (h *TokenHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrfToken": h.tokens.GetToken()})
}
