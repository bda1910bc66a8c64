package scanner

import (
	"errors"
	"fmt"
)

// ErrMissingURL is returned when Scan is called without a target
var ErrMissingURL = errors.New("scanner: URL parameter is required")

// PageFetchError reports that the target page could not be fetched.
// It is the only failure a scan surfaces once a target is given.
type PageFetchError struct {
	URL     string
	Kind    string // httpclient error kind, e.g. "dns_error"
	Message string // short description of Kind
	Err     error
}

func (e *PageFetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *PageFetchError) Unwrap() error {
	return e.Err
}
