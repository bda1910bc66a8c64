package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"
)

// DefaultUserAgent is sent when no User-Agent is configured
const DefaultUserAgent = "TechPrint/1.0 (Security Scanner; +https://example.com/techprint)"

// Accept headers for the two kinds of resources a scan fetches
const (
	AcceptDocument = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	AcceptScript   = "application/javascript,text/javascript;q=0.9,*/*;q=0.8"
)

// ErrTooManyRedirects is returned when a response chain exceeds MaxRedirects
var ErrTooManyRedirects = errors.New("httpclient: too many redirects")

// Client wraps a pooled transport and performs bounded GET requests
type Client struct {
	transport http.RoundTripper
	userAgent string
}

// TimingInfo holds performance timing information for a request
type TimingInfo struct {
	DNSStart     time.Time
	DNSDone      time.Time
	ConnectStart time.Time
	ConnectDone  time.Time
	TLSStart     time.Time
	TLSDone      time.Time
	GotFirstByte time.Time
	RequestStart time.Time
	RequestDone  time.Time
}

// TTFB returns the time from request start to the first response byte
func (t *TimingInfo) TTFB() time.Duration {
	if t == nil || t.GotFirstByte.IsZero() {
		return 0
	}
	return t.GotFirstByte.Sub(t.RequestStart)
}

// Request describes one GET
type Request struct {
	Accept       string
	Timeout      time.Duration // hard deadline covering headers and body; 0 means none
	MaxRedirects int           // redirects followed before failing; 0 follows none
	MaxBodyBytes int64         // body bytes kept; 0 means unlimited
}

// Response holds a fully read HTTP response
type Response struct {
	StatusCode int
	Proto      string // e.g., "HTTP/2.0"
	Header     http.Header
	Body       []byte
	Truncated  bool   // Body was cut at MaxBodyBytes
	FinalURL   string // URL of the last request after redirects
	Timings    *TimingInfo
}

// NewClient creates a new HTTP client with the configured transport
func NewClient(userAgent string) *Client {
	return NewClientWithTransport(NewTransport(), userAgent)
}

// NewClientWithTransport creates a Client on top of an existing RoundTripper
func NewClientWithTransport(rt http.RoundTripper, userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{transport: rt, userAgent: userAgent}
}

// Get fetches rawURL. Every HTTP status is a valid response; only transport
// failures (DNS, connect, TLS, timeout, redirect limit) return an error.
func (c *Client) Get(ctx context.Context, rawURL string, r Request) (*Response, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	timings := &TimingInfo{
		RequestStart: time.Now(),
	}

	// Create HTTP trace to capture timing events
	trace := &httptrace.ClientTrace{
		DNSStart: func(_ httptrace.DNSStartInfo) {
			timings.DNSStart = time.Now()
		},
		DNSDone: func(_ httptrace.DNSDoneInfo) {
			timings.DNSDone = time.Now()
		},
		ConnectStart: func(_, _ string) {
			timings.ConnectStart = time.Now()
		},
		ConnectDone: func(_, _ string, _ error) {
			timings.ConnectDone = time.Now()
		},
		TLSHandshakeStart: func() {
			timings.TLSStart = time.Now()
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, _ error) {
			timings.TLSDone = time.Now()
		},
		GotFirstResponseByte: func() {
			timings.GotFirstByte = time.Now()
		},
	}

	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if r.Accept != "" {
		req.Header.Set("Accept", r.Accept)
	}

	hc := &http.Client{
		Transport:     c.transport,
		CheckRedirect: limitRedirects(r.MaxRedirects),
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, truncated, err := readBody(resp.Body, r.MaxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	// Record when request completed
	timings.RequestDone = time.Now()

	return &Response{
		StatusCode: resp.StatusCode,
		Proto:      resp.Proto,
		Header:     resp.Header,
		Body:       body,
		Truncated:  truncated,
		FinalURL:   resp.Request.URL.String(),
		Timings:    timings,
	}, nil
}

// limitRedirects follows up to max redirects and fails beyond that
func limitRedirects(max int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) > max {
			return ErrTooManyRedirects
		}
		return nil
	}
}

// readBody reads at most max bytes (all of them when max <= 0)
func readBody(r io.Reader, max int64) ([]byte, bool, error) {
	if max <= 0 {
		b, err := io.ReadAll(r)
		return b, false, err
	}

	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(b)) > max {
		return b[:max], true, nil
	}
	return b, false, nil
}
