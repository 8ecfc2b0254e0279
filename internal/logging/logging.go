// Package logging wires up the process-wide zerolog logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds a logger writing to w. When pretty is true (an interactive
// terminal), output goes through zerolog's ConsoleWriter; otherwise it is
// newline-delimited JSON suitable for piping into log aggregation.
func New(w io.Writer, level zerolog.Level, pretty bool) zerolog.Logger {
	var out io.Writer = w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// ParseLevel maps a config/flag string to a zerolog.Level, defaulting to
// Info on an empty or unrecognised value.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// IsTerminal reports whether f looks like an interactive terminal, used to
// decide between console and JSON output.
func IsTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
