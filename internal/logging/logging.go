// Package logging configures the diagnostic logger. Diagnostics go to
// stderr so they never mix with table output on stdout.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// New returns a console logger at the named level. Unknown or empty
// levels fall back to info. Colors are used only when w is a terminal.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: !IsTerminal(w)}).
		Level(lvl).
		With().
		Timestamp().
		Str("component", "opfyx").
		Logger()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
