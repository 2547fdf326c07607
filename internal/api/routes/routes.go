package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/quartergroup/survey/backend/internal/api/handlers"
	"github.com/quartergroup/survey/backend/internal/api/middleware"
	"github.com/quartergroup/survey/backend/internal/config"
	"github.com/quartergroup/survey/backend/internal/metrics"
	"github.com/quartergroup/survey/backend/internal/models"
	"github.com/quartergroup/survey/backend/internal/services"
)

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) error {
	if err := db.AutoMigrate(
		&models.SecurityEvent{},
		&models.SubmissionAttempt{},
		&models.RateLimitAttempt{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	securityLog := services.NewSecurityLogService(db, cfg.SecurityLogSinkURL)
	sessions := services.NewSessionService(db, cfg.MaxSubmissionsPerHour, cfg.DuplicateWindow, cfg.SubmissionWindow)
	tokens := services.NewTokenService()
	limiter := services.NewRateLimitService(db, securityLog)
	dispatcher := services.NewDispatchService(cfg.UpstreamURL, limiter, securityLog,
		cfg.DispatchMaxAttempts, cfg.DispatchWindow, cfg.DispatchTimeout, cfg.IsDevelopment())
	surveyService := services.NewSurveyService(securityLog, sessions, tokens, dispatcher, cfg.StoreReviewURLs)
	authService := services.NewAuthService(cfg.OperatorTokenHash, cfg.JWTSecret)

	router.GET("/api/v1/health", handlers.HealthHandler)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")

	surveyHandler := handlers.NewSurveyHandler(surveyService)
	tokenHandler := handlers.NewTokenHandler(tokens)
	authHandler := handlers.NewAuthHandler(authService)

	api.POST("/survey/submissions", surveyHandler.Submit)
	api.GET("/survey/session", surveyHandler.Session)
	api.GET("/csrf-token", tokenHandler.Get)
	api.POST("/auth/login", authHandler.Login)

	// Journal access and the session reset hook require an operator session.
	securityHandler := handlers.NewSecurityHandler(securityLog)
	operator := api.Group("/")
	operator.Use(middleware.OperatorAuth(authService))
	{
		operator.GET("/security/events", securityHandler.ListEvents)
		operator.DELETE("/security/events", securityHandler.ClearEvents)
		operator.POST("/survey/session/reset", surveyHandler.ResetSession)
	}

	return nil
}
