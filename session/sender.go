package session

import "github.com/robodone/printline/gcode"

// senderLoop drains the resend, priority, and main queues in that order of
// precedence, one line per clear-to-send token, until the main queue is
// exhausted or the Session stops printing out from under it (Pause,
// Disconnect). It mirrors printcore.py's _sendnext, including the final
// M110 line-counter reset on natural completion.
func (s *Session) senderLoop() {
	s.observer.OnStart()
	defer s.observer.OnEnd()

	for {
		s.mu.Lock()
		for !s.clearToSend && s.printing && s.t != nil {
			s.cond.Wait()
		}
		if !s.printing || s.t == nil || !s.online {
			s.mu.Unlock()
			return
		}
		s.clearToSend = false
		t := s.t

		if s.resendFrom != noResend && s.resendFrom < s.lineNo {
			n := s.resendFrom
			formatted, ok := s.history[n]
			if ok {
				// Advance rather than clear: a resend covers every line from
				// the requested point forward, one per iteration, until
				// resendFrom catches up with lineNo.
				s.resendFrom = n + 1
			} else {
				s.resendFrom = noResend
			}
			s.mu.Unlock()
			if !ok {
				s.observer.OnError("resend requested for unknown line")
				continue
			}
			if err := s.rawWrite(t, formatted); err != nil {
				s.handleWriteErr(err)
				return
			}
			continue
		}
		if s.resendFrom != noResend {
			// resendFrom >= lineNo: not a valid backward reference, abandon it.
			s.resendFrom = noResend
		}

		if len(s.priQueue) > 0 {
			cmd := s.priQueue[0]
			s.priQueue = s.priQueue[1:]
			s.mu.Unlock()
			if err := s.rawWrite(t, cmd); err != nil {
				s.handleWriteErr(err)
				return
			}
			continue
		}

		if s.queueIndex < len(s.mainQueue) {
			cmd := s.mainQueue[s.queueIndex]
			s.queueIndex++
			lineno := s.lineNo
			s.mu.Unlock()

			if gcode.IsBlankOrComment(cmd) {
				s.reconsume()
				continue
			}

			s.mu.Lock()
			s.lineNo = lineno + 1
			s.mu.Unlock()

			formatted := gcode.AddLineAndHash(lineno, cmd)
			if !gcode.IsLineReset(cmd) {
				s.mu.Lock()
				s.history[lineno] = formatted
				s.mu.Unlock()
			}
			if err := s.rawWrite(t, formatted); err != nil {
				s.handleWriteErr(err)
				return
			}
			continue
		}

		// Main queue exhausted: reset the firmware's line counter and stop.
		s.printing = false
		s.queueIndex = 0
		s.lineNo = 0
		s.mu.Unlock()

		if err := s.rawWrite(t, gcode.FormatReset()); err != nil {
			s.handleWriteErr(err)
		}
		return
	}
}

// reconsume gives back the clear-to-send token consumed for a line that
// turned out to be blank or a comment: it was skipped without ever
// reaching the transport, so it must not cost a handshake round trip.
func (s *Session) reconsume() {
	s.mu.Lock()
	s.clearToSend = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

// handleWriteErr reports a transport write failure and tears the session
// down, matching the Receiver's behavior on read failure: the transport is
// gone, so there's nothing further the Sender can do.
func (s *Session) handleWriteErr(err error) {
	s.observer.OnError("write failed: " + err.Error())
	s.Disconnect()
}
