package cmd

import (
	"fmt"
	"io"
	"os"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// mark renders a check or cross for path existence.
func mark(path string) string {
	if _, err := os.Stat(path); err == nil {
		return colorGreen + "✓" + colorReset
	}
	return colorGray + "·" + colorReset
}

// field prints an aligned "label: value" line.
func field(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "  %-11s %v\n", label+":", value)
}
