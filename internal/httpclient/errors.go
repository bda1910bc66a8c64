package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"strings"
)

// Error kind constants
const (
	ErrorNone             = "none"
	ErrorInvalidURL       = "invalid_url"
	ErrorTimeout          = "timeout"
	ErrorDNS              = "dns_error"
	ErrorTLS              = "tls_error"
	ErrorNetwork          = "network_error"
	ErrorTooManyRedirects = "too_many_redirects"
	ErrorCanceled         = "canceled"
)

// ClassifyError determines the error kind from a Go error
// Returns the kind constant and a human-readable message
func ClassifyError(err error) (string, string) {
	if err == nil {
		return ErrorNone, ""
	}

	errMsg := err.Error()

	if errors.Is(err, ErrTooManyRedirects) {
		return ErrorTooManyRedirects, "too many redirects"
	}

	// Check for timeout errors
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout, "request timeout"
	}
	if errors.Is(err, context.Canceled) {
		return ErrorCanceled, "request canceled"
	}

	// Check for DNS errors before the generic net.Error timeout check
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return ErrorTimeout, "DNS lookup timeout"
		}
		return ErrorDNS, "DNS lookup failed"
	}

	// Check if it's a network error with Timeout() method
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTimeout, "request timeout"
	}

	// Check for TLS/certificate errors
	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostErr) {
		return ErrorTLS, "certificate error"
	}
	if strings.Contains(errMsg, "tls") || strings.Contains(errMsg, "TLS") {
		return ErrorTLS, "TLS handshake failed"
	}
	if strings.Contains(errMsg, "certificate") || strings.Contains(errMsg, "x509") {
		return ErrorTLS, "certificate error"
	}

	// Malformed URLs fail before any connection is attempted
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		inner := urlErr.Err.Error()
		if urlErr.Op == "parse" || strings.Contains(inner, "unsupported protocol scheme") || strings.Contains(inner, "no Host in request URL") {
			return ErrorInvalidURL, "invalid URL format"
		}
	}

	// Check for connection refused and similar network errors
	if strings.Contains(errMsg, "connection refused") {
		return ErrorNetwork, "connection refused"
	}
	if strings.Contains(errMsg, "connection reset") {
		return ErrorNetwork, "connection reset"
	}
	if strings.Contains(errMsg, "no such host") {
		return ErrorDNS, "host not found"
	}
	if strings.Contains(errMsg, "network is unreachable") {
		return ErrorNetwork, "network unreachable"
	}

	// Default to network error for other cases
	return ErrorNetwork, errMsg
}
