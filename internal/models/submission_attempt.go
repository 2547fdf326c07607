package models

import (
	"time"
)

// SubmissionAttempt records one accepted survey submission. The set of rows
// forms the submission history read by the anti-abuse gate; rows older than
// the long rate-limit window are pruned on every check.
type SubmissionAttempt struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SessionID string    `json:"sessionId" gorm:"index"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}
