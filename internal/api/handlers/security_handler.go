package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quartergroup/survey/backend/internal/services"
)

// SecurityHandler exposes the local security-event journal to operators.
type SecurityHandler struct {
	log *services.SecurityLogService
}

func NewSecurityHandler(log *services.SecurityLogService) *SecurityHandler {
	return &SecurityHandler{log: log}
}

// ListEvents returns journal entries, optionally filtered by ?type=.
func (h *SecurityHandler) ListEvents(c *gin.Context) {
	events, err := h.log.Query(c.Query("type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read security events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// ClearEvents wipes the journal. The route sits behind operator auth: the
// journal is append-only except for this explicit action.
func (h *SecurityHandler) ClearEvents(c *gin.Context) {
	if err := h.log.Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear security events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
