package service

import (
	"context"
	"errors"
	"time"

	"github.com/olegrjumin/techprint/internal/logging"
	"github.com/olegrjumin/techprint/internal/scanner"
)

// Scanner is the scan engine the service delegates to
type Scanner interface {
	Scan(ctx context.Context, targetURL string, opts scanner.Options) (*scanner.ScanResult, error)
}

// Service provides the business logic layer for scanning
// It sits between the HTTP transport layer and the scanner
type Service struct {
	scanner Scanner
	logger  *logging.Logger
	options scanner.Options
	timeout time.Duration
}

// New creates a new Service instance. timeout bounds a whole scan; 0 leaves
// only the per-request deadlines.
func New(scn Scanner, logger *logging.Logger, opts scanner.Options, timeout time.Duration) *Service {
	return &Service{
		scanner: scn,
		logger:  logger,
		options: opts,
		timeout: timeout,
	}
}

// Scan runs one scan with the service options
// This is the main entry point for the detection use case
func (s *Service) Scan(ctx context.Context, targetURL string) (*scanner.ScanResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info("Scanning URL", "url", targetURL)

	result, err := s.scanner.Scan(ctx, targetURL, s.options)
	if err != nil {
		var pfe *scanner.PageFetchError
		if errors.As(err, &pfe) {
			s.logger.Error("Scan failed",
				"url", targetURL,
				"error_type", pfe.Kind,
				"error", pfe.Err,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		} else {
			s.logger.Info("Scan rejected", "url", targetURL, "error", err)
		}
		return nil, err
	}

	s.logger.Info("Scan completed",
		"url", targetURL,
		"resolved_url", result.ScanMetadata.ResolvedURL,
		"status", result.ScanMetadata.StatusCode,
		"scripts_attempted", len(result.ScanMetadata.ScriptSourcesAttempted),
		"scripts_fetched", len(result.ScanMetadata.ScriptSourcesFetched),
		"technologies", len(result.DetectedTechnologies),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}
