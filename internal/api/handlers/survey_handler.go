package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quartergroup/survey/backend/internal/services"
	"github.com/quartergroup/survey/backend/internal/validation"
)

// SurveyHandler exposes the submission pipeline to the UI shell.
type SurveyHandler struct {
	svc *services.SurveyService
}

func NewSurveyHandler(svc *services.SurveyService) *SurveyHandler {
	return &SurveyHandler{svc: svc}
}

// SubmitRequest is the wire shape of one submission attempt. Entries arrive
// in form order; userAgent/url/language tag any security events the attempt
// produces.
type SubmitRequest struct {
	Entries   []validation.Entry `json:"entries" binding:"required"`
	UserAgent string             `json:"userAgent"`
	URL       string             `json:"url"`
	Language  string             `json:"language"`
}

// Submit runs the pipeline and maps each failure class to its user-facing
// response. No error is silently dropped: every branch carries a message.
func (h *SurveyHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta := services.RequestMeta{UserAgent: req.UserAgent, URL: req.URL, Language: req.Language}
	if meta.UserAgent == "" {
		meta.UserAgent = c.Request.UserAgent()
	}

	outcome, err := h.svc.Submit(c.Request.Context(), services.SubmitRequest{
		Entries: req.Entries,
		Meta:    meta,
	})
	if err != nil {
		var validationErr *validation.ValidationError
		var blockedErr *services.BlockedError
		var dispatchErr *services.DispatchError

		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"errors": validationErr.Fields,
				"global": true,
			})
		case errors.As(err, &blockedErr):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"reason":      blockedErr.Reason,
				"waitSeconds": blockedErr.WaitSeconds,
				"error":       blockedErr.Error(),
			})
		case errors.Is(err, services.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"reason": services.ReasonRateLimit,
				"error":  err.Error(),
			})
		case errors.As(err, &dispatchErr):
			c.JSON(http.StatusBadGateway, gin.H{"error": dispatchErr.Cause})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusAccepted, outcome)
}

// Session returns the current anti-abuse session summary.
func (h *SurveyHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Sessions().Info())
}

// ResetSession clears the submission history and regenerates the session id.
// Operator-only test/debug hook.
func (h *SurveyHandler) ResetSession(c *gin.Context) {
	if err := h.svc.Sessions().Reset(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": h.svc.Sessions().SessionID()})
}
