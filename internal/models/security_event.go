package models

import (
	"time"
)

// Security event types recorded by the journal.
const (
	EventXSSAttempt        = "xss_attempt"
	EventInjectionAttempt  = "injection_attempt"
	EventValidationFailure = "validation_failure"
	EventExcessiveRequests = "excessive_requests"
	EventSuspiciousInput   = "suspicious_input"
	EventAPIError          = "api_error"
)

// Security event levels.
const (
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelError    = "error"
	LevelCritical = "critical"
)

// SecurityEvent is one entry in the bounded local security journal. Rows are
// append-only; the journal evicts oldest-first past its capacity.
type SecurityEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"eventType" gorm:"index"`
	Level     string    `json:"level"`
	Details   string    `json:"details" gorm:"type:text"`
	UserAgent string    `json:"userAgent"`
	URL       string    `json:"url"`
	Language  string    `json:"language"`
}
