package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/quartergroup/survey/backend/internal/logger"
	"github.com/quartergroup/survey/backend/internal/models"
)

// MaintenanceService periodically prunes expired submission history and
// rate-limit attempts and trims the security journal, so decision-time
// pruning never has to chew through unbounded backlog.
type MaintenanceService struct {
	db         *gorm.DB
	log        *SecurityLogService
	longWindow time.Duration
	schedule   string
	cron       *cron.Cron
	now        func() time.Time
}

// NewMaintenanceService builds the scheduler; schedule uses cron syntax
// (e.g. "@every 10m").
func NewMaintenanceService(db *gorm.DB, log *SecurityLogService, longWindow time.Duration, schedule string) *MaintenanceService {
	return &MaintenanceService{
		db:         db,
		log:        log,
		longWindow: longWindow,
		schedule:   schedule,
		cron:       cron.New(),
		now:        time.Now,
	}
}

// Start registers and launches the cron job.
func (m *MaintenanceService) Start() error {
	if _, err := m.cron.AddFunc(m.schedule, func() {
		if err := m.RunOnce(); err != nil {
			logger.Log().WithError(err).Error("maintenance run failed")
		}
	}); err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (m *MaintenanceService) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

// RunOnce performs one maintenance pass. Exposed for tests and manual runs.
func (m *MaintenanceService) RunOnce() error {
	now := m.now()

	cutoff := now.Add(-m.longWindow)
	if err := m.db.Where("created_at <= ?", cutoff).
		Delete(&models.SubmissionAttempt{}).Error; err != nil {
		return err
	}

	// Rate-limit windows are at most the long window in practice; anything
	// older is dead weight for every action.
	if err := m.db.Where("created_at <= ?", cutoff).
		Delete(&models.RateLimitAttempt{}).Error; err != nil {
		return err
	}

	return m.log.Trim()
}
