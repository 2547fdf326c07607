package models

import (
	"time"
)

// RateLimitAttempt is one attempt of a named action inside its sliding
// window. Independent of SubmissionAttempt: this gates any named action,
// not just final submission.
type RateLimitAttempt struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Action    string    `json:"action" gorm:"index"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}
