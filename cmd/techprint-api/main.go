package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olegrjumin/techprint/internal/config"
	"github.com/olegrjumin/techprint/internal/httpapi"
	"github.com/olegrjumin/techprint/internal/httpclient"
	"github.com/olegrjumin/techprint/internal/logging"
	"github.com/olegrjumin/techprint/internal/metrics"
	"github.com/olegrjumin/techprint/internal/scanner"
	"github.com/olegrjumin/techprint/internal/service"
	"github.com/olegrjumin/techprint/internal/signatures"
)

func main() {
	// Load configuration from environment variables
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)

	// The catalog is compiled in; failing to load it is a build defect
	db, err := signatures.Default()
	if err != nil {
		logger.Error("Failed to load signature catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("Signature catalog loaded", "entries", db.Len())

	m := metrics.New()

	httpClient := httpclient.NewClient(cfg.UserAgent)
	scn := scanner.New(httpClient, db, logger, m)

	opts := scanner.DefaultOptions()
	opts.PageTimeout = cfg.PageTimeout
	opts.ScriptTimeout = cfg.ScriptTimeout
	opts.ScriptFetchLimit = cfg.ScriptFetchLimit
	opts.ScriptMaxBytes = int64(cfg.ScriptMaxBytes)
	opts.ScriptConcurrency = cfg.ScriptConcurrency

	svc := service.New(scn, logger, opts, cfg.ScanTimeout)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := httpapi.NewServer(addr, logger, svc, m, httpapi.Options{
		RateLimit: cfg.RateLimitRPS,
		RateBurst: cfg.RateLimitBurst,
	})

	// Channel to listen for OS signals (Ctrl+C, kill, etc.)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
