package musicbrainz

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const (
	maxBackoff = 30 * time.Second
	maxJitter  = 500 * time.Millisecond
)

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// backoffDelay is min(30s, 2^attempt seconds), without jitter.
func backoffDelay(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	return min(maxBackoff, time.Duration(1<<attempt)*time.Second)
}

func defaultJitter() time.Duration {
	return time.Duration(rand.Int64N(int64(maxJitter)))
}

// parseRetryAfter accepts the delay-seconds form only, including fractional values.
// Delays beyond the range of time.Duration saturate at its maximum.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, false
	}
	if seconds >= float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64), true
	}
	return time.Duration(seconds * float64(time.Second)), true
}

// classifyTransportError reports the kind of a failed attempt and whether it
// is worth retrying: timeouts, refused or reset connections, DNS and TLS
// failures, and truncated bodies.
func classifyTransportError(err error) (ErrorKind, bool) {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout, true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return KindNetwork, true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return KindNetwork, true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindNetwork, true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindNetwork, true
	}
	var recordErr tls.RecordHeaderError
	var alertErr tls.AlertError
	var verifyErr *tls.CertificateVerificationError
	var authorityErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &recordErr) || errors.As(err, &alertErr) || errors.As(err, &verifyErr) ||
		errors.As(err, &authorityErr) || errors.As(err, &hostErr) {
		return KindNetwork, true
	}
	return KindNetwork, false
}
