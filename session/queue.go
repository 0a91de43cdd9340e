package session

// noResend is the sentinel value of resendFrom meaning "no resend pending",
// mirroring printcore.py's resendfrom = -1.
const noResend = -1

// Progress reports how far the active (or paused) print has gotten through
// the main queue: the number of main-queue entries already consumed by the
// Sender, and the total queued. When a print runs to completion the Sender
// resets its index, so Progress then reports (0, total). It is a read-only
// convenience for callers that want to report percentage complete, the
// way printcore.py's __main__ polls queueindex/len(mainqueue).
func (s *Session) Progress() (sent, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queueIndex, len(s.mainQueue)
}

// Online reports whether the firmware has responded at least once.
func (s *Session) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// Printing reports whether a print is currently running (as opposed to
// idle or paused).
func (s *Session) Printing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.printing
}

// Connected reports whether a transport is currently attached.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t != nil
}
