// Package log configures structured logging for the pipeline on top of
// zerolog. Each pipeline stage obtains a component logger via For and
// emits structured fields (row counts, fold scores, chosen parameters)
// rather than formatted strings.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	root = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
)

// Setup installs the root logger. When console is true output goes through
// zerolog's ConsoleWriter, otherwise raw JSON is written to w.
func Setup(w io.Writer, level string, console bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	mu.Lock()
	defer mu.Unlock()
	root = zerolog.New(w).With().Timestamp().Logger().Level(lvl)
	return nil
}

// ParseLevel converts a level name to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level: %q", level)
	}
}

// For returns a logger tagged with the given component name. The pointer
// return lets call sites chain level methods directly.
func For(component string) *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := root.With().Str("component", component).Logger()
	return &l
}

// Root returns the current root logger.
func Root() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := root
	return &l
}
