package services

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/quartergroup/survey/backend/internal/logger"
	"github.com/quartergroup/survey/backend/internal/models"
)

// Gate denial reasons.
const (
	ReasonDuplicateSubmission = "duplicate_submission"
	ReasonRateLimit           = "rate_limit"
)

// GateResult is the outcome of an anti-abuse check. WaitSeconds tells the
// user how long until a retry can succeed.
type GateResult struct {
	Allowed     bool   `json:"allowed"`
	Reason      string `json:"reason,omitempty"`
	WaitSeconds int    `json:"waitSeconds,omitempty"`
}

// SessionInfo summarises the current session for diagnostics.
type SessionInfo struct {
	SessionID       string     `json:"sessionId"`
	SubmissionCount int64      `json:"submissionCount"`
	LastSubmission  *time.Time `json:"lastSubmission,omitempty"`
}

// SessionService is the per-installation anti-abuse gate: it denies repeat
// submissions inside the duplicate window and caps submissions inside the
// rolling long window. History is persisted so it survives restarts.
//
// Storage failures fail open: abuse deterrence must never block a legitimate
// submission because the local database hiccuped.
type SessionService struct {
	db        *gorm.DB
	sessionID string

	maxSubmissions  int
	duplicateWindow time.Duration
	longWindow      time.Duration

	now func() time.Time
}

// NewSessionService builds a gate with the given policy. A fresh session id
// is generated per construction.
func NewSessionService(db *gorm.DB, maxSubmissions int, duplicateWindow, longWindow time.Duration) *SessionService {
	return &SessionService{
		db:              db,
		sessionID:       newSessionID(),
		maxSubmissions:  maxSubmissions,
		duplicateWindow: duplicateWindow,
		longWindow:      longWindow,
		now:             time.Now,
	}
}

// newSessionID concatenates a time component with a random fragment.
// Collision probability is negligible for abuse-deterrence purposes.
func newSessionID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + randBase36(11)
}

// SessionID returns the identifier generated at construction.
func (s *SessionService) SessionID() string {
	return s.sessionID
}

// CanSubmit prunes expired history, then applies the duplicate check and the
// rolling-window cap, in that order.
func (s *SessionService) CanSubmit() GateResult {
	now := s.now()
	s.prune(now)

	var attempts []models.SubmissionAttempt
	if err := s.db.Order("created_at asc").Find(&attempts).Error; err != nil {
		logger.Log().WithError(err).Error("failed to read submission history")
		return GateResult{Allowed: true}
	}

	// Duplicate check: any entry inside the short window denies, with the
	// wait computed from the nearest (most recent) offender.
	var nearest time.Time
	for _, a := range attempts {
		if now.Sub(a.CreatedAt) < s.duplicateWindow && a.CreatedAt.After(nearest) {
			nearest = a.CreatedAt
		}
	}
	if !nearest.IsZero() {
		wait := s.duplicateWindow - now.Sub(nearest)
		return GateResult{
			Allowed:     false,
			Reason:      ReasonDuplicateSubmission,
			WaitSeconds: ceilSeconds(wait),
		}
	}

	// Rolling-window cap: once full, the caller waits for the oldest entry
	// to age out.
	if len(attempts) >= s.maxSubmissions {
		oldest := attempts[0].CreatedAt
		wait := s.longWindow - now.Sub(oldest)
		return GateResult{
			Allowed:     false,
			Reason:      ReasonRateLimit,
			WaitSeconds: ceilSeconds(wait),
		}
	}

	return GateResult{Allowed: true}
}

// RecordSubmission appends the current timestamp to the persisted history.
func (s *SessionService) RecordSubmission() {
	attempt := models.SubmissionAttempt{SessionID: s.sessionID, CreatedAt: s.now()}
	if err := s.db.Create(&attempt).Error; err != nil {
		logger.Log().WithError(err).Error("failed to record submission")
	}
}

// Info returns the pruned session summary.
func (s *SessionService) Info() SessionInfo {
	s.prune(s.now())

	info := SessionInfo{SessionID: s.sessionID}
	if err := s.db.Model(&models.SubmissionAttempt{}).Count(&info.SubmissionCount).Error; err != nil {
		logger.Log().WithError(err).Error("failed to count submission history")
		return info
	}
	if info.SubmissionCount > 0 {
		var last models.SubmissionAttempt
		if err := s.db.Order("created_at desc").First(&last).Error; err == nil {
			info.LastSubmission = &last.CreatedAt
		}
	}
	return info
}

// Reset clears the history and regenerates the session id. Test/debug hook,
// exposed only behind the operator API.
func (s *SessionService) Reset() error {
	if err := s.db.Where("1 = 1").Delete(&models.SubmissionAttempt{}).Error; err != nil {
		return err
	}
	s.sessionID = newSessionID()
	return nil
}

// prune drops history older than the long window. Mutating on read keeps
// every decision based on a fresh window.
func (s *SessionService) prune(now time.Time) {
	cutoff := now.Add(-s.longWindow)
	if err := s.db.Where("created_at <= ?", cutoff).Delete(&models.SubmissionAttempt{}).Error; err != nil {
		logger.Log().WithError(err).Error("failed to prune submission history")
	}
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// randBase36 returns n pseudo-random base-36 characters. Deliberately not
// cryptographically strong; see TokenService for the documented trade-off.
func randBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36Alphabet[rand.Intn(len(base36Alphabet))]
	}
	return string(b)
}
