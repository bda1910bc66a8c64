package scanner

import "time"

// Hard ceilings; larger values are clamped
const (
	MaxScriptFetchLimit = 10
	MaxScriptBytes      = 500000
)

// Options bounds the requests made during one scan
type Options struct {
	// Page request
	PageTimeout      time.Duration
	PageMaxRedirects int
	PageMaxBytes     int64

	// Script requests
	ScriptTimeout      time.Duration
	ScriptMaxRedirects int
	ScriptFetchLimit   int
	ScriptMaxBytes     int64
	ScriptConcurrency  int // requests in flight within one scan
}

// DefaultOptions returns Options with the limits the service ships with
func DefaultOptions() Options {
	return Options{
		PageTimeout:        10 * time.Second,
		PageMaxRedirects:   5,
		PageMaxBytes:       5 * 1024 * 1024, // 5MB
		ScriptTimeout:      8 * time.Second,
		ScriptMaxRedirects: 3,
		ScriptFetchLimit:   MaxScriptFetchLimit,
		ScriptMaxBytes:     MaxScriptBytes,
		ScriptConcurrency:  10,
	}
}

// withDefaults fills zero fields from DefaultOptions and clamps the script
// limits to their ceilings
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PageTimeout <= 0 {
		o.PageTimeout = d.PageTimeout
	}
	if o.PageMaxRedirects <= 0 {
		o.PageMaxRedirects = d.PageMaxRedirects
	}
	if o.PageMaxBytes <= 0 {
		o.PageMaxBytes = d.PageMaxBytes
	}
	if o.ScriptTimeout <= 0 {
		o.ScriptTimeout = d.ScriptTimeout
	}
	if o.ScriptMaxRedirects <= 0 {
		o.ScriptMaxRedirects = d.ScriptMaxRedirects
	}
	if o.ScriptFetchLimit <= 0 {
		o.ScriptFetchLimit = d.ScriptFetchLimit
	}
	if o.ScriptMaxBytes <= 0 {
		o.ScriptMaxBytes = d.ScriptMaxBytes
	}
	if o.ScriptConcurrency <= 0 {
		o.ScriptConcurrency = d.ScriptConcurrency
	}
	o.ScriptFetchLimit = min(o.ScriptFetchLimit, MaxScriptFetchLimit)
	o.ScriptMaxBytes = min(o.ScriptMaxBytes, MaxScriptBytes)
	return o
}
