package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/quartergroup/survey/backend/internal/models"
	"github.com/quartergroup/survey/backend/internal/services"
)

func newSecurityRouter(t *testing.T) (*gin.Engine, *services.SecurityLogService) {
	gin.SetMode(gin.TestMode)
	log := services.NewSecurityLogService(setupTestDB(t), "")
	handler := NewSecurityHandler(log)

	r := gin.New()
	r.GET("/api/v1/security/events", handler.ListEvents)
	r.DELETE("/api/v1/security/events", handler.ClearEvents)
	return r, log
}

func TestSecurityHandler_ListEvents(t *testing.T) {
	r, log := newSecurityRouter(t)

	log.Record(models.EventXSSAttempt, models.LevelWarning, map[string]interface{}{"field": "feedback"})
	log.Record(models.EventAPIError, models.LevelError, nil)

	req := httptest.NewRequest("GET", "/api/v1/security/events", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Events []models.SecurityEvent `json:"events"`
		Count  int                    `json:"count"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, models.EventXSSAttempt, resp.Events[0].EventType)
}

func TestSecurityHandler_ListEventsFiltered(t *testing.T) {
	r, log := newSecurityRouter(t)

	log.Record(models.EventXSSAttempt, models.LevelWarning, nil)
	log.Record(models.EventAPIError, models.LevelError, nil)

	req := httptest.NewRequest("GET", "/api/v1/security/events?type=api_error", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Events []models.SecurityEvent `json:"events"`
		Count  int                    `json:"count"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, models.EventAPIError, resp.Events[0].EventType)
}

func TestSecurityHandler_ClearEvents(t *testing.T) {
	r, log := newSecurityRouter(t)

	log.Record(models.EventSuspiciousInput, models.LevelInfo, nil)

	req := httptest.NewRequest("DELETE", "/api/v1/security/events", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	events, err := log.Query("")
	assert.NoError(t, err)
	assert.Empty(t, events)
}
