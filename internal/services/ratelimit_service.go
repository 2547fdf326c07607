package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/quartergroup/survey/backend/internal/logger"
	"github.com/quartergroup/survey/backend/internal/models"
)

// RateLimitService gates arbitrary named actions with a sliding time window,
// independently of the submission gate. Attempts are persisted so the window
// survives restarts.
type RateLimitService struct {
	db  *gorm.DB
	log *SecurityLogService
	now func() time.Time
}

// NewRateLimitService returns a limiter recording denials to the security
// journal.
func NewRateLimitService(db *gorm.DB, log *SecurityLogService) *RateLimitService {
	return &RateLimitService{db: db, log: log, now: time.Now}
}

// Allow reports whether another attempt of the named action fits inside the
// window, recording the attempt when it does. Denials emit an
// excessive_requests event. Storage failures fail open.
func (s *RateLimitService) Allow(action string, maxAttempts int, window time.Duration) bool {
	now := s.now()

	cutoff := now.Add(-window)
	if err := s.db.Where("action = ? AND created_at <= ?", action, cutoff).
		Delete(&models.RateLimitAttempt{}).Error; err != nil {
		logger.Log().WithError(err).Error("failed to prune rate-limit window")
		return true
	}

	var count int64
	if err := s.db.Model(&models.RateLimitAttempt{}).
		Where("action = ?", action).Count(&count).Error; err != nil {
		logger.Log().WithError(err).Error("failed to count rate-limit window")
		return true
	}

	if count >= int64(maxAttempts) {
		s.log.Record(models.EventExcessiveRequests, models.LevelWarning, map[string]interface{}{
			"action":   action,
			"attempts": count,
			"windowMs": window.Milliseconds(),
		})
		return false
	}

	attempt := models.RateLimitAttempt{Action: action, CreatedAt: now}
	if err := s.db.Create(&attempt).Error; err != nil {
		logger.Log().WithError(err).Error("failed to record rate-limit attempt")
	}
	return true
}
