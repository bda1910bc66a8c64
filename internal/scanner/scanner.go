// Package scanner fetches a page and the scripts it references and reports
// the technologies the signature catalog recognizes in them.
package scanner

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/olegrjumin/techprint/internal/detector"
	"github.com/olegrjumin/techprint/internal/httpclient"
	"github.com/olegrjumin/techprint/internal/logging"
	"github.com/olegrjumin/techprint/internal/metrics"
	"github.com/olegrjumin/techprint/internal/scripts"
	"github.com/olegrjumin/techprint/internal/signatures"
	"github.com/olegrjumin/techprint/internal/workerpool"
)

// Fetcher performs a single bounded GET
type Fetcher interface {
	Get(ctx context.Context, rawURL string, r httpclient.Request) (*httpclient.Response, error)
}

// Scanner runs scans. It is safe for concurrent use; every scan builds its
// own state and only the read-only catalog is shared.
type Scanner struct {
	client  Fetcher
	db      *signatures.Database
	logger  *logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New creates a Scanner; m may be nil
func New(client Fetcher, db *signatures.Database, logger *logging.Logger, m *metrics.Metrics) *Scanner {
	return &Scanner{
		client:  client,
		db:      db,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Scan fetches targetURL, fetches up to opts.ScriptFetchLimit of its scripts
// and matches every signature against the page markup, the page headers and
// the script corpus.
//
// It fails with ErrMissingURL for an empty target and with a *PageFetchError
// when the page cannot be fetched. Script failures never fail a scan.
func (s *Scanner) Scan(ctx context.Context, targetURL string, opts Options) (*ScanResult, error) {
	start := s.now()
	opts = opts.withDefaults()

	target := strings.TrimSpace(targetURL)
	if target == "" {
		s.metrics.ObserveScan(metrics.OutcomeInvalidInput, 0)
		return nil, ErrMissingURL
	}

	page, err := s.fetchPage(ctx, NormalizeURL(target), opts)
	if err != nil {
		s.metrics.ObserveScan(metrics.OutcomePageError, 0)
		return nil, err
	}

	html := string(page.Body)
	attempted := scripts.ExtractAndResolve(html, page.FinalURL, opts.ScriptFetchLimit)
	corpus, fetched := s.fetchScripts(ctx, attempted, opts)

	detections := detector.Evaluate(s.db, detector.Sources{
		HTML:    html,
		Headers: page.Header,
		Scripts: corpus,
	})
	for _, d := range detections {
		s.metrics.ObserveDetection(d.Category)
	}

	s.metrics.ObserveScan(metrics.OutcomeSuccess, s.now().Sub(start))

	return &ScanResult{
		ScanMetadata: ScanMetadata{
			TargetURL:              targetURL,
			ResolvedURL:            page.FinalURL,
			ScanTimestampUTC:       start.UTC().Format(TimestampLayout),
			StatusCode:             page.StatusCode,
			ScriptSourcesAttempted: attempted,
			ScriptSourcesFetched:   fetched,
		},
		DetectedTechnologies: detections,
	}, nil
}

// fetchPage retrieves the target page; any transport failure is fatal
func (s *Scanner) fetchPage(ctx context.Context, target string, opts Options) (*httpclient.Response, error) {
	parsed, err := url.Parse(target)
	if err != nil || parsed.Host == "" {
		return nil, &PageFetchError{
			URL:     target,
			Kind:    httpclient.ErrorInvalidURL,
			Message: "invalid URL format",
			Err:     fmt.Errorf("invalid URL %q", target),
		}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &PageFetchError{
			URL:     target,
			Kind:    httpclient.ErrorInvalidURL,
			Message: "URL must use http or https",
			Err:     fmt.Errorf("unsupported scheme %q", parsed.Scheme),
		}
	}

	resp, err := s.client.Get(ctx, target, httpclient.Request{
		Accept:       httpclient.AcceptDocument,
		Timeout:      opts.PageTimeout,
		MaxRedirects: opts.PageMaxRedirects,
		MaxBodyBytes: opts.PageMaxBytes,
	})
	if err != nil {
		kind, msg := httpclient.ClassifyError(err)
		return nil, &PageFetchError{URL: target, Kind: kind, Message: msg, Err: err}
	}

	if resp.FinalURL == "" {
		resp.FinalURL = target
	}

	s.logger.Debug("Page fetched",
		"url", target,
		"final_url", resp.FinalURL,
		"status", resp.StatusCode,
		"bytes", len(resp.Body),
		"truncated", resp.Truncated,
		"ttfb_ms", resp.Timings.TTFB().Milliseconds(),
	)

	return resp, nil
}

// scriptBody is the outcome of one script fetch; ok is false when the
// script contributes nothing
type scriptBody struct {
	text string
	ok   bool
}

// fetchScripts fetches urls concurrently and joins the bodies that came back
// in urls order, not completion order. Each call gets its own pool so a slow
// scan never holds workers another scan is waiting for.
func (s *Scanner) fetchScripts(ctx context.Context, urls []string, opts Options) (string, []string) {
	fetched := make([]string, 0, len(urls))
	if len(urls) == 0 {
		return "", fetched
	}

	pool := workerpool.New(min(len(urls), opts.ScriptConcurrency))
	defer pool.Close()

	bodies := workerpool.Map(pool, urls, func(u string) scriptBody {
		return s.fetchScript(ctx, u, opts)
	})

	pieces := make([]string, 0, len(bodies))
	for i, b := range bodies {
		if !b.ok {
			continue
		}
		fetched = append(fetched, urls[i])
		pieces = append(pieces, b.text)
	}

	return strings.Join(pieces, "\n"), fetched
}

// fetchScript never fails: every problem is logged and yields an empty result
func (s *Scanner) fetchScript(ctx context.Context, u string, opts Options) scriptBody {
	if err := ctx.Err(); err != nil {
		s.logger.Debug("Script skipped", "url", u, "reason", "scan_done", "error", err)
		s.metrics.ObserveScript(metrics.ScriptFetchError)
		return scriptBody{}
	}

	resp, err := s.client.Get(ctx, u, httpclient.Request{
		Accept:       httpclient.AcceptScript,
		Timeout:      opts.ScriptTimeout,
		MaxRedirects: opts.ScriptMaxRedirects,
		MaxBodyBytes: opts.ScriptMaxBytes,
	})
	if err != nil {
		kind, _ := httpclient.ClassifyError(err)
		s.logger.Debug("Script skipped", "url", u, "reason", kind, "error", err)
		s.metrics.ObserveScript(metrics.ScriptFetchError)
		return scriptBody{}
	}

	if resp.StatusCode >= 400 {
		s.logger.Debug("Script skipped", "url", u, "reason", "http_status", "status", resp.StatusCode)
		s.metrics.ObserveScript(metrics.ScriptHTTPError)
		return scriptBody{}
	}

	if len(resp.Body) == 0 || isBinary(resp.Body) {
		s.logger.Debug("Script skipped", "url", u, "reason", "no_text", "bytes", len(resp.Body))
		s.metrics.ObserveScript(metrics.ScriptEmpty)
		return scriptBody{}
	}

	s.metrics.ObserveScript(metrics.ScriptFetched)
	return scriptBody{text: string(resp.Body), ok: true}
}

// isBinary reports a NUL byte near the start of b, which text never has
func isBinary(b []byte) bool {
	if len(b) > 512 {
		b = b[:512]
	}
	return bytes.IndexByte(b, 0) >= 0
}

// NormalizeURL ensures the URL has a scheme
func NormalizeURL(rawURL string) string {
	if strings.Contains(rawURL, "://") {
		return rawURL
	}
	return "https://" + strings.TrimPrefix(rawURL, "//")
}
