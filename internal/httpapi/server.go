package httpapi

import (
	"context"
	"net/http"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"golang.org/x/time/rate"

	"github.com/olegrjumin/techprint/internal/logging"
	"github.com/olegrjumin/techprint/internal/metrics"
	"github.com/olegrjumin/techprint/internal/scanner"
)

// ScanService runs one scan for a target URL
type ScanService interface {
	Scan(ctx context.Context, targetURL string) (*scanner.ScanResult, error)
}

// Options tunes the HTTP surface
type Options struct {
	// RateLimit is the sustained number of scan requests per second.
	// Zero disables limiting.
	RateLimit float64
	// RateBurst is the token bucket size used when RateLimit is set
	RateBurst int
}

// NewServer creates and configures a new HTTP server
func NewServer(addr string, logger *logging.Logger, svc ScanService, m *metrics.Metrics, opts Options) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: NewHandler(logger, svc, m, opts),
	}
}

// NewHandler builds the routed handler with its middleware chain
func NewHandler(logger *logging.Logger, svc ScanService, m *metrics.Metrics, opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", healthHandler)

	var scan http.Handler = scanHandler(logger, svc)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		scan = rateLimitMiddleware(rate.NewLimiter(rate.Limit(opts.RateLimit), burst), scan)
	}
	mux.Handle("/api/scan", scan)

	if m != nil {
		mux.Handle("/metrics", m.Handler())
	}

	return requestIDMiddleware(loggingMiddleware(logger, corsMiddleware(mux)))
}

// healthHandler handles GET requests to /health
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "techprint-api",
	})
}

// encodeFailureBody is sent when a response value cannot be encoded
const encodeFailureBody = `{"error":"Failed to encode response."}`

// writeJSON encodes data before committing status, so an encoding failure
// becomes a 500 instead of a truncated body. Invalid UTF-8 in scanned pages
// is replaced with U+FFFD.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data, jsontext.AllowInvalidUTF8(true))
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(encodeFailureBody)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
