package transport

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Serial is a Transport backed by go.bug.st/serial, the portable serial
// library used across the pack (see therealisc-xtermost's main.go). It is
// the default backend: it works the same way on Linux, macOS and Windows.
type Serial struct {
	mu      sync.Mutex
	port    serial.Port
	pending []byte
	buf     [256]byte
}

// OpenSerial opens name at baud 8N1 with the given initial read timeout.
// Spec §4.1 calls for a finite initial timeout (5s in the reference).
func OpenSerial(name string, baud int, timeout time.Duration) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s at %d bps: %w", name, baud, err)
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", name, err)
	}
	return &Serial{port: port}, nil
}

func (s *Serial) Write(data []byte) error {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		return ErrClosed
	}
	_, err := port.Write(data)
	return err
}

// ReadLine blocks for up to the configured read timeout. go.bug.st/serial
// reports a timeout as (0, nil), not an error, so a read that finds no
// complete line yet returns ("", nil): the "no line" case from spec §6,
// not a failure. Bytes read past the last newline are retained across
// calls, so a line split across two reads is still assembled correctly.
func (s *Serial) ReadLine() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return "", ErrClosed
	}
	if line, ok := takeLine(&s.pending); ok {
		return line, nil
	}
	n, err := s.port.Read(s.buf[:])
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	s.pending = append(s.pending, s.buf[:n]...)
	line, _ := takeLine(&s.pending)
	return line, nil
}

func (s *Serial) SetReadTimeout(d time.Duration) error {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		return ErrClosed
	}
	return port.SetReadTimeout(d)
}

func (s *Serial) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port != nil
}

func (s *Serial) Close() error {
	s.mu.Lock()
	port := s.port
	s.port = nil
	s.mu.Unlock()
	if port == nil {
		return nil
	}
	return port.Close()
}

// takeLine extracts the first '\n'-terminated line from *pending, if any,
// and leaves the remainder in *pending.
func takeLine(pending *[]byte) (string, bool) {
	buf := *pending
	for i, b := range buf {
		if b == '\n' {
			line := string(buf[:i])
			*pending = append([]byte(nil), buf[i+1:]...)
			return trimCR(line), true
		}
	}
	return "", false
}

func trimCR(line string) string {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}
