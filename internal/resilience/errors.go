package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError wraps an error that is safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError marks an error as retryable.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// ConnectivityError wraps an error indicating the store is unreachable.
// Connectivity failures are fatal to a migration run: remaining rows are
// not attempted.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string { return e.Err.Error() }

func (e *ConnectivityError) Unwrap() error { return e.Err }

// NewConnectivityError marks an error as a store-unreachable condition.
func NewConnectivityError(err error) *ConnectivityError {
	return &ConnectivityError{Err: err}
}

var connectivityPatterns = []string{
	"connection refused",
	"connection reset by peer",
	"broken pipe",
	"no such host",
	"temporary failure in name resolution",
	"i/o timeout",
	"failed to connect",
	"server closed the connection",
	"database is closed",
	"sql: database is closed",
}

// IsConnectivity reports whether the error (or anything in its chain)
// indicates the store cannot be reached at all, as opposed to rejecting
// one statement.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}

	var ce *ConnectivityError
	if errors.As(err, &ce) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range connectivityPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

var transientPatterns = []string{
	"database is locked",
	"database table is locked",
	"too many connections",
	"conn busy",
	"serialization failure",
	"deadlock detected",
}

// IsTransient reports whether the error is worth retrying: either marked
// explicitly, a network timeout, or a known contention condition.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
