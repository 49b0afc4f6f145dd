// Package logging builds the zerolog logger shared by gridfind's components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// New returns a logger that writes JSON to file. If file is empty, logs go to
// stderr so they never mix with report output on stdout.
//
// The level parameter can be one of: trace, debug, info, warn, error, fatal.
func New(level string, file string) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, closer, fmt.Errorf("parse log level: %w", err)
	}

	var writer io.Writer = os.Stderr
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create logs dir: %w", err)
		}
		osFile, err := os.Create(file)
		if err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create log file: %w", err)
		}
		closer = func() { _ = osFile.Close() }
		writer = osFile
	}

	return NewWithWriter(writer, lvl), closer, nil
}

// NewWithWriter returns a timestamped logger on w.
func NewWithWriter(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		With().
		Timestamp().
		Logger().
		Level(lvl)
}

// Component returns a child logger tagged with a component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
