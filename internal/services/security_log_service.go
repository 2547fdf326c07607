package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/containrrr/shoutrrr"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quartergroup/survey/backend/internal/logger"
	"github.com/quartergroup/survey/backend/internal/models"
	"github.com/quartergroup/survey/backend/internal/sanitize"
)

// JournalCapacity bounds the local security-event journal. Oldest entries
// are evicted first.
const JournalCapacity = 100

// RequestMeta carries submitter context attached to journal entries.
type RequestMeta struct {
	UserAgent string `json:"userAgent"`
	URL       string `json:"url"`
	Language  string `json:"language"`
}

// SecurityLogService keeps the append-only local security journal and
// forwards high-severity events to an optional remote sink. Journal failures
// never surface to the user-facing flow; they are logged locally and
// swallowed.
type SecurityLogService struct {
	db       *gorm.DB
	sinkURL  string
	client   *http.Client
	capacity int
	now      func() time.Time
}

// NewSecurityLogService returns a journal backed by db. sinkURL may be empty
// (no forwarding), an http(s) webhook, or a shoutrrr URL.
func NewSecurityLogService(db *gorm.DB, sinkURL string) *SecurityLogService {
	return &SecurityLogService{
		db:       db,
		sinkURL:  sinkURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		capacity: JournalCapacity,
		now:      time.Now,
	}
}

// Record appends an event with no submitter context.
func (s *SecurityLogService) Record(eventType, level string, details map[string]interface{}) {
	s.RecordWithMeta(RequestMeta{}, eventType, level, details)
}

// RecordWithMeta appends an event tagged with submitter context.
func (s *SecurityLogService) RecordWithMeta(meta RequestMeta, eventType, level string, details map[string]interface{}) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	event := models.SecurityEvent{
		UUID:      uuid.NewString(),
		Timestamp: s.now(),
		EventType: eventType,
		Level:     level,
		Details:   string(detailsJSON),
		UserAgent: meta.UserAgent,
		URL:       meta.URL,
		Language:  meta.Language,
	}

	if err := s.db.Create(&event).Error; err != nil {
		logger.Log().WithError(err).Error("failed to save security event")
		return
	}

	if err := s.Trim(); err != nil {
		logger.Log().WithError(err).Error("failed to trim security journal")
	}
}

// RecordAndForward appends an event and, for error or critical levels,
// forwards it to the configured remote sink. Forwarding is best-effort:
// failures are logged locally and never retried.
func (s *SecurityLogService) RecordAndForward(meta RequestMeta, eventType, level string, details map[string]interface{}) {
	s.RecordWithMeta(meta, eventType, level, details)

	if level != models.LevelError && level != models.LevelCritical {
		return
	}
	if s.sinkURL == "" {
		return
	}
	if err := s.forward(meta, eventType, level, details); err != nil {
		logger.WithFields(map[string]interface{}{"event_type": eventType}).
			WithError(err).Warn("failed to forward security event to remote sink")
	}
}

func (s *SecurityLogService) forward(meta RequestMeta, eventType, level string, details map[string]interface{}) error {
	if strings.HasPrefix(s.sinkURL, "http://") || strings.HasPrefix(s.sinkURL, "https://") {
		payload, err := json.Marshal(map[string]interface{}{
			"timestamp": s.now().Format(time.RFC3339),
			"eventType": eventType,
			"level":     level,
			"details":   details,
			"userAgent": meta.UserAgent,
			"url":       meta.URL,
			"language":  meta.Language,
		})
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}

		resp, err := s.client.Post(s.sinkURL, "application/json", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("post event: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("sink returned status %d", resp.StatusCode)
		}
		return nil
	}

	// Anything else is treated as a shoutrrr notification URL.
	msg := fmt.Sprintf("[%s] %s", strings.ToUpper(level), eventType)
	return shoutrrr.Send(s.sinkURL, msg)
}

// Trim evicts oldest entries past the journal capacity.
func (s *SecurityLogService) Trim() error {
	var count int64
	if err := s.db.Model(&models.SecurityEvent{}).Count(&count).Error; err != nil {
		return err
	}
	excess := count - int64(s.capacity)
	if excess <= 0 {
		return nil
	}

	var ids []uint
	if err := s.db.Model(&models.SecurityEvent{}).
		Order("id asc").Limit(int(excess)).Pluck("id", &ids).Error; err != nil {
		return err
	}
	return s.db.Delete(&models.SecurityEvent{}, ids).Error
}

// Query returns journal entries in insertion order, optionally filtered by
// event type.
func (s *SecurityLogService) Query(eventType string) ([]models.SecurityEvent, error) {
	var events []models.SecurityEvent
	q := s.db.Order("id asc")
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Clear wipes the journal. Exposed only behind the operator API.
func (s *SecurityLogService) Clear() error {
	return s.db.Where("1 = 1").Delete(&models.SecurityEvent{}).Error
}

type boundRecorder struct {
	svc  *SecurityLogService
	meta RequestMeta
}

func (r boundRecorder) Record(eventType, level string, details map[string]interface{}) {
	r.svc.RecordWithMeta(r.meta, eventType, level, details)
}

// Bound returns an event recorder that stamps every event with the given
// submitter context. Passed into the sanitizer per request.
func (s *SecurityLogService) Bound(meta RequestMeta) sanitize.EventRecorder {
	return boundRecorder{svc: s, meta: meta}
}
