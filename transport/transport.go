// Package transport defines the byte-level collaborator a session.Session
// talks to, plus the concrete backends available to a caller: a portable
// serial port, a Linux-native one, and an in-memory mock for tests.
package transport

import "time"

// Transport is a reliable, framed serial link. It is the external
// collaborator the core protocol assumes: blocking read/write primitives
// with a configurable read timeout.
//
// Implementations must be safe for one writer and one reader to use
// concurrently (the session's Sender writes, its Receiver reads); Close
// may race with either and must not corrupt state.
type Transport interface {
	// Write sends bytes verbatim. It may fail if the transport is closed.
	Write(data []byte) error

	// ReadLine blocks for up to the configured timeout and returns one
	// newline-terminated line (without the trailing newline). A timeout
	// with no data read returns ("", nil): "no line", not an error.
	ReadLine() (string, error)

	// SetReadTimeout adjusts the read timeout for subsequent ReadLine calls.
	SetReadTimeout(d time.Duration) error

	// IsOpen reports whether the transport is still usable.
	IsOpen() bool

	// Close releases the underlying resource. Safe to call more than once.
	Close() error
}
