package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"journal-companion-go/internal/config"
	"journal-companion-go/internal/db"
	"journal-companion-go/internal/handler"
	metricsPkg "journal-companion-go/internal/metrics"
	"journal-companion-go/internal/repository"
	"journal-companion-go/internal/router"
	"journal-companion-go/internal/service/ai"
	"journal-companion-go/internal/service/broadcast"
	"journal-companion-go/internal/service/consumer"
	"journal-companion-go/internal/service/delivery"
	"journal-companion-go/internal/service/ingest"
	"journal-companion-go/internal/service/memory"
	"journal-companion-go/internal/service/orchestrate"
	"journal-companion-go/internal/service/thread"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Journal Companion Service")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	dbConn, err := db.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metricsPkg.NewMetrics()
	repo := repository.New(dbConn)

	sender, err := delivery.NewSender(&cfg.Delivery)
	if err != nil {
		return fmt.Errorf("failed to create email sender: %w", err)
	}

	generator := ai.NewClient(&cfg.AI)
	memories := memory.New(repo)
	threads := thread.New(repo, memories)

	orchestrator := orchestrate.New(repo, generator, memories, threads, sender, m, &cfg.Delivery)
	cons := consumer.New(&cfg.Consumer, repo, orchestrator, m)
	broadcaster := broadcast.New(&cfg.Broadcast, repo, orchestrator)

	var poller *ingest.Poller
	if cfg.Ingest.Enabled {
		poller, err = ingest.NewPoller(&cfg.Ingest, repo)
		if err != nil {
			return fmt.Errorf("failed to create IMAP poller: %w", err)
		}
		logrus.Info("IMAP ingestion enabled")
	}

	h := handler.NewHandlers(dbConn, repo, cons, broadcaster)
	r := router.SetupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if err := cons.Start(); err != nil {
		return fmt.Errorf("failed to start queue consumer: %w", err)
	}
	if cfg.Broadcast.Enabled {
		if err := broadcaster.Start(); err != nil {
			return fmt.Errorf("failed to start broadcaster: %w", err)
		}
	}
	if poller != nil {
		if err := poller.Start(); err != nil {
			return fmt.Errorf("failed to start IMAP poller: %w", err)
		}
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if poller != nil {
		if err := poller.Stop(); err != nil {
			logrus.Errorf("Failed to stop IMAP poller: %v", err)
		}
	}
	if cfg.Broadcast.Enabled {
		if err := broadcaster.Stop(); err != nil {
			logrus.Errorf("Failed to stop broadcaster: %v", err)
		}
	}
	if err := cons.Stop(); err != nil {
		logrus.Errorf("Failed to stop queue consumer: %v", err)
	}
	cons.Wait()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	if err := sender.Close(); err != nil {
		logrus.Errorf("Failed to close email sender: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}
