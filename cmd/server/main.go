// Package main is the entry point for the varasto API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"varasto/internal/config"
	"varasto/internal/domain/warehouse"
	"varasto/internal/infrastructure/audit"
	v1 "varasto/internal/infrastructure/http/v1"
	"varasto/internal/infrastructure/metrics"
	"varasto/internal/infrastructure/storage/memory"
	"varasto/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development || cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Infow("starting varasto server",
		"version", cfg.App.Version,
		"env", cfg.App.Env,
	)

	// --- History journal ---
	journal, err := audit.NewJournal(audit.Config{
		CompressThreshold: cfg.Audit.CompressThreshold,
		MaxEntries:        cfg.Audit.MaxEntries,
	})
	if err != nil {
		log.Fatalw("failed to create history journal", "error", err)
	}
	defer journal.Close()

	// --- Directory ---
	dirCfg := warehouse.DirectoryConfig{
		Repo:    memory.NewWarehouseRepo(),
		Journal: journal,
	}
	var exporter v1.MetricsExporter
	if cfg.Metrics.Enabled {
		m := metrics.New()
		dirCfg.Observer = m
		exporter = m
	}
	directory := warehouse.NewDirectory(dirCfg)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Directory:   directory,
		Logger:      log,
		Metrics:     exporter,
		MetricsPath: cfg.Metrics.Path,
		AppName:     cfg.App.Name,
		Version:     cfg.App.Version,
		Debug:       cfg.IsDevelopment(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.App.Port, "metrics", cfg.Metrics.Enabled)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return
	}

	log.Info("server stopped")
}
