// Package session drives the send/receive handshake with 3D-printer
// firmware over a transport.Transport: line numbering, checksums, the
// single-slot clear-to-send token, resend handling, and the main/priority
// queues that feed it. It is the Go counterpart of printcore.py's
// printcore/gcoder classes, rebuilt around a mutex-and-condition-variable
// token instead of a busy-polled flag.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/robodone/printline/gcode"
	"github.com/robodone/printline/transport"
)

// ErrNotConnected is returned by Send/SendNow when no transport is attached.
var ErrNotConnected = errors.New("session: not connected")

// Session is the single point of coordination between a caller (issuing
// prints and one-off commands) and the firmware on the other end of a
// transport. The zero value is not usable; construct with NewSession.
//
// All exported methods are safe for concurrent use.
type Session struct {
	mu   sync.Mutex
	cond *sync.Cond

	observer Observer

	t transport.Transport

	online      bool
	printing    bool
	clearToSend bool

	lineNo     int
	resendFrom int
	queueIndex int
	mainQueue  []string
	priQueue   []string
	history    map[int]string

	// probeOnConnect mirrors printcore.py's _listen, which pre-emptively
	// marks clear=True and fires an M105 probe rather than waiting
	// indefinitely for the firmware's unsolicited "start" line.
	probeOnConnect bool
}

// NewSession constructs an idle, disconnected Session. observer may be nil,
// in which case events are silently discarded.
func NewSession(observer Observer) *Session {
	if observer == nil {
		observer = NoopObserver{}
	}
	s := &Session{
		observer:       observer,
		resendFrom:     noResend,
		history:        make(map[int]string),
		probeOnConnect: true,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// SetProbeOnConnect controls whether Connect fires an unnumbered M105
// probe shortly after attaching a transport, to elicit an early response
// rather than waiting indefinitely for the firmware's unsolicited "start"
// line. Defaults to true; has no effect on a transport already connected.
func (s *Session) SetProbeOnConnect(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probeOnConnect = enabled
}

// Connect adopts an already-open transport and starts the Receiver. Opening
// the physical port (choosing a backend, baud rate, timeouts) is the
// caller's job; Session only ever speaks through the Transport interface.
// Any previously attached transport is disconnected first.
func (s *Session) Connect(t transport.Transport) {
	s.Disconnect()

	s.mu.Lock()
	s.t = t
	s.online = false
	s.clearToSend = false
	s.resendFrom = noResend
	probe := s.probeOnConnect
	s.mu.Unlock()

	go s.receiverLoop(t)
	if probe {
		go s.sendProbe(t)
	}
}

// sendProbe fires a single unnumbered M105 shortly after Connect, giving
// the firmware something to answer even if it never emits an unsolicited
// "start" line. It bypasses the clear-to-send wait by force-setting the
// token first, the same way printcore.py's _listen does, and backs off
// silently if t has since been superseded by a later Connect/Disconnect.
func (s *Session) sendProbe(t transport.Transport) {
	time.Sleep(150 * time.Millisecond)
	s.mu.Lock()
	if s.t != t {
		s.mu.Unlock()
		return
	}
	s.clearToSend = true
	s.cond.Broadcast()
	s.mu.Unlock()
	_ = s.rawWrite(t, "M105")
}

// Disconnect tears down the current transport, if any, and unblocks any
// caller waiting on the clear-to-send token so it can observe failure
// rather than hang forever. It is idempotent: calling it with nothing
// connected is a no-op.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	t := s.t
	s.t = nil
	s.online = false
	s.printing = false
	s.clearToSend = true
	s.cond.Broadcast()
	s.mu.Unlock()

	if t == nil {
		return nil
	}
	return t.Close()
}

// StartPrint queues lines for transmission and starts the Sender. It
// reports false without side effects if a print is already running, if the
// firmware hasn't yet announced itself, or if there is no connected
// transport. On success it resets the line counter (sending an M110 reset
// to the firmware) and returns true immediately; the Sender runs on its
// own goroutine.
func (s *Session) StartPrint(lines []string) bool {
	s.mu.Lock()
	if s.printing || s.t == nil || !s.online {
		s.mu.Unlock()
		return false
	}
	t := s.t
	s.printing = true
	s.mainQueue = append([]string(nil), lines...)
	s.priQueue = nil
	s.queueIndex = 0
	s.lineNo = 0
	s.resendFrom = noResend
	s.history = make(map[int]string)
	empty := len(s.mainQueue) == 0
	s.mu.Unlock()

	if err := s.rawWrite(t, gcode.FormatReset()); err != nil {
		s.observer.OnError("line-counter reset failed: " + err.Error())
		s.Disconnect()
		return true
	}

	// The reset just consumed the handshake slot opened by the firmware's
	// last ok/start; any caller (Sender or Send/SendNow) must wait for a
	// fresh one acknowledging the M110 rather than racing ahead on a token
	// set before the print began.
	s.mu.Lock()
	s.clearToSend = false
	s.mu.Unlock()

	if empty {
		s.mu.Lock()
		s.printing = false
		s.mu.Unlock()
		return true
	}

	go s.senderLoop()
	return true
}

// Pause stops the Sender before its next iteration and blocks briefly to
// let it actually exit, mirroring printcore.py's pause(), which sleeps one
// second after clearing the printing flag.
func (s *Session) Pause() {
	s.mu.Lock()
	s.printing = false
	s.cond.Broadcast()
	s.mu.Unlock()
	time.Sleep(time.Second)
}

// Resume restarts the Sender over the remaining queue contents. It is a
// no-op if a print is already running or nothing is connected.
func (s *Session) Resume() {
	s.mu.Lock()
	if s.printing || s.t == nil {
		s.mu.Unlock()
		return
	}
	s.printing = true
	s.mu.Unlock()

	go s.senderLoop()
}

// Send queues cmd for transmission through the main queue if a print is
// running, or transmits it immediately (numbered and checksummed,
// consuming the clear-to-send token) otherwise.
func (s *Session) Send(cmd string) error {
	s.mu.Lock()
	if s.printing {
		s.mainQueue = append(s.mainQueue, cmd)
		s.mu.Unlock()
		return nil
	}
	for !s.clearToSend && s.t != nil {
		s.cond.Wait()
	}
	if s.t == nil {
		s.mu.Unlock()
		return ErrNotConnected
	}
	s.clearToSend = false
	lineno := s.lineNo
	s.lineNo++
	t := s.t
	s.mu.Unlock()

	formatted := gcode.AddLineAndHash(lineno, cmd)
	if !gcode.IsLineReset(cmd) {
		s.mu.Lock()
		s.history[lineno] = formatted
		s.mu.Unlock()
	}
	return s.rawWrite(t, formatted)
}

// SendNow queues cmd on the priority queue if a print is running, or
// transmits it immediately and unnumbered otherwise (e.g. "M105" temperature
// polls), consuming the clear-to-send token exactly like Send.
func (s *Session) SendNow(cmd string) error {
	s.mu.Lock()
	if s.printing {
		s.priQueue = append(s.priQueue, cmd)
		s.mu.Unlock()
		return nil
	}
	for !s.clearToSend && s.t != nil {
		s.cond.Wait()
	}
	if s.t == nil {
		s.mu.Unlock()
		return ErrNotConnected
	}
	s.clearToSend = false
	t := s.t
	s.mu.Unlock()

	return s.rawWrite(t, cmd)
}

// rawWrite writes a fully-formatted line to t and reports it to the
// observer. It never waits on the clear-to-send token: that wait, if any,
// already happened in the caller.
func (s *Session) rawWrite(t transport.Transport, line string) error {
	if err := t.Write([]byte(line + "\n")); err != nil {
		return err
	}
	s.observer.OnSend(line)
	return nil
}
