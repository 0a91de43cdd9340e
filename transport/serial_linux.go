//go:build linux

package transport

import (
	"fmt"
	"sync"
	"time"

	nativeserial "github.com/daedaluz/goserial"
)

// NativeLinux is a Transport backed by github.com/daedaluz/goserial's raw
// termios ioctls. It opens the device without cgo and sets the baud rate
// via SetCustomSpeed, which accepts arbitrary integer rates that a fixed
// POSIX speed table (B9600, B115200, ...) would reject. Prefer Serial
// unless a non-standard baud rate or direct line-discipline control is
// required.
type NativeLinux struct {
	mu      sync.Mutex
	port    *nativeserial.Port
	pending []byte
	buf     [256]byte
}

// OpenNativeLinux opens name, puts it into raw mode, sets its speed to baud
// and applies the initial read timeout.
func OpenNativeLinux(name string, baud int, timeout time.Duration) (*NativeLinux, error) {
	opts := nativeserial.NewOptions().SetReadTimeout(timeout)
	port, err := nativeserial.Open(name, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s at %d bps: %w", name, baud, err)
	}
	if err := port.MakeRaw(); err != nil {
		port.Close()
		return nil, fmt.Errorf("set %s raw: %w", name, err)
	}
	attrs, err := port.GetAttr2()
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("read termios for %s: %w", name, err)
	}
	attrs.SetCustomSpeed(uint32(baud))
	if err := port.SetAttr2(nativeserial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, fmt.Errorf("set speed %d on %s: %w", baud, name, err)
	}
	return &NativeLinux{port: port}, nil
}

func (t *NativeLinux) Write(data []byte) error {
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()
	if port == nil {
		return ErrClosed
	}
	_, err := port.Write(data)
	return err
}

// ReadLine blocks for up to the configured read timeout. Unlike
// go.bug.st/serial, the underlying ioctl read signals a timeout as an
// error rather than (0, nil); per spec §5 that is swallowed here as "no
// line yet". IsOpen reports only whether Close has been called, so a
// device that goes away is not detected: ReadLine keeps returning
// ("", nil).
func (t *NativeLinux) ReadLine() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return "", ErrClosed
	}
	if line, ok := takeLine(&t.pending); ok {
		return line, nil
	}
	n, err := t.port.Read(t.buf[:])
	if n == 0 {
		// A read timeout or any read error with no data is treated as
		// "no line". A port closed through Close is reported via IsOpen.
		_ = err
		return "", nil
	}
	t.pending = append(t.pending, t.buf[:n]...)
	line, _ := takeLine(&t.pending)
	return line, nil
}

func (t *NativeLinux) SetReadTimeout(d time.Duration) error {
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()
	if port == nil {
		return ErrClosed
	}
	port.SetReadTimeout(d)
	return nil
}

func (t *NativeLinux) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}

func (t *NativeLinux) Close() error {
	t.mu.Lock()
	port := t.port
	t.port = nil
	t.mu.Unlock()
	if port == nil {
		return nil
	}
	return port.Close()
}
