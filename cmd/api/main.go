package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/quartergroup/survey/backend/internal/config"
	"github.com/quartergroup/survey/backend/internal/database"
	"github.com/quartergroup/survey/backend/internal/logger"
	"github.com/quartergroup/survey/backend/internal/server"
	"github.com/quartergroup/survey/backend/internal/services"
	"github.com/quartergroup/survey/backend/internal/version"
)

func main() {
	// Setup logging with rotation
	logDir := "data/logs"
	_ = os.MkdirAll(logDir, 0o755)

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "surveygate.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	// Log to both stdout and file
	mw := io.MultiWriter(os.Stdout, rotator)
	log.SetOutput(mw)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(cfg.IsDevelopment(), mw)

	// Handle CLI commands
	if len(os.Args) > 1 && os.Args[1] == "hash-operator-token" {
		if len(os.Args) != 3 {
			log.Fatalf("Usage: %s hash-operator-token <token>", os.Args[0])
		}
		hash, err := services.HashOperatorToken(os.Args[2])
		if err != nil {
			log.Fatalf("failed to hash token: %v", err)
		}
		fmt.Println(hash)
		return
	}

	log.Printf("%s %s", version.Name, version.Full())

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	srv, err := server.New(db, cfg)
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	maintenance := services.NewMaintenanceService(db,
		services.NewSecurityLogService(db, ""), cfg.SubmissionWindow, cfg.MaintenanceSchedule)
	if err := maintenance.Start(); err != nil {
		log.Fatalf("start maintenance scheduler: %v", err)
	}
	defer maintenance.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("starting %s backend on :%s", version.Name, cfg.HTTPPort)

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
