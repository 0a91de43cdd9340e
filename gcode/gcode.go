// Package gcode formats the lines a Session writes to a printer's serial
// link. It knows nothing about G-code semantics: a line is opaque text,
// except for the `;` comment prefix and the protocol-reserved M110 command
// that the session uses to reset the firmware's line counter.
package gcode

import (
	"fmt"
	"strings"
)

// ResetCommand is the protocol-reserved command that resets the firmware's
// line-number counter. It is sent with line number -1 at print start and
// again at print end, and its formatted form is never recorded in history.
const ResetCommand = "M110"

// AddLineAndHash takes a raw command, such as "G28 Z0 F150", and transforms
// it into the defensive form that includes the desired line number and a
// checksum, for example "N9 G28 Z0 F150*2". The checksum is the XOR of the
// byte values of "N<lineno> <command>" (no trailing newline); the caller is
// responsible for framing the result with "\n".
func AddLineAndHash(lineno int, command string) string {
	prefix := fmt.Sprintf("N%d %s", lineno, command)
	return fmt.Sprintf("%s*%d", prefix, Checksum(prefix))
}

// FormatReset returns the formatted line-counter reset command, "N-1
// M110*<checksum>", sent at the start and end of every print.
func FormatReset() string {
	return AddLineAndHash(-1, ResetCommand)
}

// Checksum returns the XOR of the byte values of s.
func Checksum(s string) byte {
	var sum byte
	for i := 0; i < len(s); i++ {
		sum ^= s[i]
	}
	return sum
}

// IsBlankOrComment reports whether a raw main-queue line should be skipped
// by the sender rather than transmitted: empty, or starting with ';'.
// Skipped lines never reach the transport and never consume a line number.
func IsBlankOrComment(line string) bool {
	return len(line) == 0 || line[0] == ';'
}

// IsLineReset reports whether command mentions M110, the one command whose
// formatted, numbered form is never recorded in history.
func IsLineReset(command string) bool {
	return strings.Contains(command, ResetCommand)
}
