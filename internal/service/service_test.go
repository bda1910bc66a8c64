package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegrjumin/techprint/internal/logging"
	"github.com/olegrjumin/techprint/internal/scanner"
)

type stubScanner struct {
	gotOpts     scanner.Options
	gotDeadline bool
	result      *scanner.ScanResult
	err         error
}

func (s *stubScanner) Scan(ctx context.Context, _ string, opts scanner.Options) (*scanner.ScanResult, error) {
	s.gotOpts = opts
	_, s.gotDeadline = ctx.Deadline()
	return s.result, s.err
}

func TestScanPassesOptionsAndDeadline(t *testing.T) {
	stub := &stubScanner{result: &scanner.ScanResult{}}
	opts := scanner.DefaultOptions()
	opts.ScriptFetchLimit = 3

	svc := New(stub, logging.Discard(), opts, time.Minute)

	result, err := svc.Scan(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Same(t, stub.result, result)
	assert.Equal(t, 3, stub.gotOpts.ScriptFetchLimit)
	assert.True(t, stub.gotDeadline)
}

func TestScanWithoutTimeout(t *testing.T) {
	stub := &stubScanner{result: &scanner.ScanResult{}}
	svc := New(stub, logging.Discard(), scanner.DefaultOptions(), 0)

	_, err := svc.Scan(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.False(t, stub.gotDeadline)
}

func TestScanLogsPageFailure(t *testing.T) {
	var buf bytes.Buffer
	cause := errors.New("dial tcp: connection refused")
	stub := &stubScanner{err: &scanner.PageFetchError{URL: "https://down.example", Kind: "network_error", Err: cause}}

	svc := New(stub, logging.NewWithWriter(&buf, "info"), scanner.DefaultOptions(), time.Second)

	_, err := svc.Scan(context.Background(), "https://down.example")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, buf.String(), "error_type=network_error")
}
