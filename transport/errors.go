package transport

import "errors"

// ErrClosed is returned by Write/ReadLine/SetReadTimeout when called on a
// transport that has already been closed.
var ErrClosed = errors.New("transport: already closed")
