package session

import (
	"strconv"
	"strings"

	"github.com/robodone/printline/transport"
)

// receiverLoop reads lines from t until the transport closes or errors,
// interpreting each one and updating handshake state. It always runs on
// its own goroutine, one per Connect. On exit it forces clearToSend so
// no caller blocked in Send/SendNow/the Sender is stuck waiting on a
// token that will never arrive again.
func (s *Session) receiverLoop(t transport.Transport) {
	defer func() {
		s.mu.Lock()
		s.clearToSend = true
		s.cond.Broadcast()
		s.mu.Unlock()
	}()

	for t.IsOpen() {
		line, err := t.ReadLine()
		if err != nil {
			return
		}
		if line == "" {
			continue
		}
		s.observer.OnRecv(line)
		s.dispatch(line)
	}
}

// dispatch interprets a single line received from the firmware, updating
// online/clearToSend/resendFrom state and firing the matching observer
// callbacks. It mirrors printcore.py's _listen loop.
func (s *Session) dispatch(line string) {
	s.mu.Lock()

	wasOnline := s.online
	becameOnline := false
	hasTemp := false
	var errLine string
	hasErr := false

	switch {
	case strings.HasPrefix(line, "start"):
		s.clearToSend = true
		if !wasOnline {
			s.online = true
			becameOnline = true
		}
	case strings.HasPrefix(line, "ok"):
		s.clearToSend = true
		if !wasOnline {
			s.online = true
			becameOnline = true
		}
		s.resendFrom = noResend
		hasTemp = strings.Contains(line, "T:")
	case strings.HasPrefix(line, "Error"):
		errLine = line
		hasErr = true
	}

	var malformed string
	if n, ok := parseResend(line); ok {
		s.resendFrom = n
		s.clearToSend = true
	} else if looksLikeResend(line) {
		malformed = line
	}

	s.cond.Broadcast()
	s.mu.Unlock()

	if becameOnline {
		s.observer.OnOnline()
	}
	if hasTemp {
		s.observer.OnTemp(line)
	}
	if hasErr {
		s.observer.OnError(errLine)
	}
	if malformed != "" {
		s.observer.OnError("malformed resend directive: " + malformed)
	}
}

// looksLikeResend reports whether line contains one of the firmware's two
// resend spellings, "Resend" or "rs", without yet checking that it carries
// a parseable line number.
func looksLikeResend(line string) bool {
	return strings.Contains(line, "Resend") || strings.Contains(line, "rs")
}

// parseResend extracts the requested line number from a resend directive
// such as "Resend: 14" or "rs N14". It only reports ok if the trailing
// whitespace-separated token parses as an integer, guarding against
// "rs" appearing inside unrelated firmware chatter.
func parseResend(line string) (int, bool) {
	if !looksLikeResend(line) {
		return 0, false
	}
	cleaned := strings.ReplaceAll(line, ":", " ")
	cleaned = strings.ReplaceAll(cleaned, "N", " ")
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}
