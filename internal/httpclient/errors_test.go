package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ErrorNone},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), ErrorTimeout},
		{"canceled", context.Canceled, ErrorCanceled},
		{"dns", &net.DNSError{Err: "no such host", Name: "nope.invalid"}, ErrorDNS},
		{"dns timeout", &net.DNSError{Err: "timeout", Name: "slow.invalid", IsTimeout: true}, ErrorTimeout},
		{"tls text", errors.New("remote error: tls: handshake failure"), ErrorTLS},
		{"x509 text", errors.New("x509: certificate signed by unknown authority"), ErrorTLS},
		{"refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), ErrorNetwork},
		{"redirects", fmt.Errorf("wrapped: %w", ErrTooManyRedirects), ErrorTooManyRedirects},
		{"other", errors.New("something odd"), ErrorNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, _ := ClassifyError(tt.err)
			assert.Equal(t, tt.want, kind)
		})
	}
}
