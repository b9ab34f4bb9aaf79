// Package netutil classifies transport failures of Bot API calls.
package netutil

import (
	"errors"
	"net"
	"net/url"
	"syscall"
)

// IsTransient reports whether err is a transport failure (timeout, failed
// dial, reset or refused connection) rather than an API answer. Such a call
// may or may not have reached Telegram.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil && urlErr.Err != err {
		return IsTransient(urlErr.Err)
	}
	return false
}
