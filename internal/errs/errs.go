// Package errs classifies transport and startup errors so that callers make an
// explicit decision instead of blanket-suppressing failures.
package errs

import (
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// IsBenignDisconnect reports whether err is a peer-initiated connection
// closure. Browsers abort audio transfers constantly while seeking, so these
// are expected during normal operation and must not be logged as errors.
func IsBenignDisconnect(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	// Some transports only surface the errno as text.
	return IsBenignDisconnectMessage(err.Error())
}

// IsBenignDisconnectMessage is the textual form of IsBenignDisconnect, for
// log lines that no longer carry the error value.
func IsBenignDisconnectMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection closed")
}

// IsAddrInUse reports whether err means the listening port is already taken.
func IsAddrInUse(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EADDRINUSE) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "address already in use")
}
