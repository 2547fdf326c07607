package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quartergroup/survey/backend/internal/models"
	"github.com/quartergroup/survey/backend/internal/services"
)

var testReviewURLs = map[string]string{
	"iL":      "https://g.page/r/test-il/review",
	"QUARTER": "https://g.page/r/test-quarter/review",
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.SecurityEvent{}, &models.SubmissionAttempt{}, &models.RateLimitAttempt{})
	require.NoError(t, err)

	return db
}

// newSurveyService builds the pipeline against a development-mode dispatcher
// (no upstream endpoint, dispatch always acks).
func newSurveyService(db *gorm.DB) *services.SurveyService {
	log := services.NewSecurityLogService(db, "")
	sessions := services.NewSessionService(db, 3, 60*time.Second, time.Hour)
	dispatcher := services.NewDispatchService("", services.NewRateLimitService(db, log), log,
		10, time.Minute, 5*time.Second, true)
	return services.NewSurveyService(log, sessions, services.NewTokenService(), dispatcher, testReviewURLs)
}
