package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/robodone/printline/gcode"
	"github.com/robodone/printline/transport"
)

// TestStartPrintLineNumbering checks two of the protocol's core invariants
// against randomly generated programs: non-blank, non-comment lines are
// numbered consecutively from 0, and every numbered line the Sender wrote
// carries a checksum that recomputes correctly. Blank and comment lines
// must vanish from the wire without costing a number.
func TestStartPrintLineNumbering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// n starts at 1: an empty program is StartPrint's own documented
		// edge case (no Sender spawned, a single M110 write) and is covered
		// separately in session_test.go.
		n := rapid.IntRange(1, 12).Draw(t, "n")
		lines := make([]string, n)
		var wantNonBlank []string
		for i := range lines {
			if rapid.Bool().Draw(t, "blank") {
				if rapid.Bool().Draw(t, "comment") {
					lines[i] = ";skip"
				} else {
					lines[i] = ""
				}
				continue
			}
			cmd := rapid.StringMatching(`[A-Z][0-9 .]{0,12}`).Draw(t, "cmd")
			lines[i] = cmd
			wantNonBlank = append(wantNonBlank, cmd)
		}

		m := transport.NewMock()
		sess := NewSession(nil)
		sess.SetProbeOnConnect(false)
		sess.Connect(m)

		m.Reply("start")
		waitUntilT(t, sess.Online, 2*time.Second)

		assert.True(t, sess.StartPrint(lines))

		// Firmware that always says yes, one "ok" per write once that write
		// has landed: clear-to-send is a single slot, so oks queued ahead of
		// the writes they acknowledge would collapse into one token. Each ok
		// releases one write: the next numbered line, or the final M110 once
		// the queue is drained.
		for n := 2; n <= len(wantNonBlank)+2; n++ {
			m.Reply("ok")
			waitUntilT(t, func() bool { return len(m.Writes()) >= n }, 2*time.Second)
		}
		waitUntilT(t, func() bool { return !sess.Printing() }, 2*time.Second)

		writes := m.Writes()
		if assert.GreaterOrEqual(t, len(writes), 2) {
			assert.Equal(t, gcode.FormatReset(), writes[0])
			assert.Equal(t, gcode.FormatReset(), writes[len(writes)-1])
		}

		body := writes[1 : len(writes)-1]
		if assert.Len(t, body, len(wantNonBlank)) {
			for i, cmd := range wantNonBlank {
				want := gcode.AddLineAndHash(i, cmd)
				assert.Equal(t, want, body[i])

				prefix := strings.TrimSuffix(want, want[strings.LastIndex(want, "*"):])
				assert.Equal(t, gcode.Checksum(prefix), mustChecksumOf(want))
			}
		}
	})
}

// mustChecksumOf decodes the checksum byte encoded in a formatted line
// of the form "N<i> <cmd>*<checksum>" and returns it as a byte for
// comparison against gcode.Checksum of the same prefix.
func mustChecksumOf(formatted string) byte {
	idx := strings.LastIndex(formatted, "*")
	if idx < 0 {
		return 0
	}
	var v int
	for _, c := range formatted[idx+1:] {
		v = v*10 + int(c-'0')
	}
	return byte(v)
}

// waitUntilT is waitUntil adapted for *rapid.T, which doesn't share a
// common interface with *testing.T for Fatalf.
func waitUntilT(t *rapid.T, pred func() bool, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	if !pred() {
		t.Fatalf("condition not met within %s", timeout)
	}
}
