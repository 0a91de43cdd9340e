// Package gcodefile loads a print job off disk. It performs no G-code
// validation: a line is whatever text sat between two newlines. Comment
// and blank-line handling belongs to the gcode package, at send time.
package gcodefile

import (
	"fmt"
	"os"
	"strings"
)

// Load reads path and splits it into raw lines, stripping only the
// trailing newline and carriage return from each. The result is handed
// to Session.StartPrint unchanged; blank lines and ';' comments are kept
// so the Sender can skip them without the caller needing to pre-filter.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gcodefile: read %s: %w", path, err)
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}
