package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitslot/internal/booking"
	"fitslot/internal/config"
	"fitslot/internal/db"
	"fitslot/internal/email"
	"fitslot/internal/logger"
	"fitslot/internal/server"
)

func main() {
	logger.Init()
	logger.Info("Starting FitSlot trainer scheduling")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	emailService := email.New(email.Config{
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
		SMTPHost: cfg.SMTPHost,
		SMTPPort: cfg.SMTPPort,
		SMTPUser: cfg.SMTPUser,
		SMTPPass: cfg.SMTPPass,
	}, cfg.RedisAddr)
	defer emailService.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := emailService.Ping(ctx); err != nil {
		logger.Warn("Redis unreachable, notifications will fail until it is back", "addr", cfg.RedisAddr, "error", err)
	}
	go emailService.Start(ctx)

	srv := server.New(database, cfg, emailService)

	if cfg.SweepInterval > 0 {
		go booking.NewSweeper(srv.Bookings(), cfg.SweepInterval).Start(ctx)
	}

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
