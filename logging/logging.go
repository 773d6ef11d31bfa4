// Package logging configures the zerolog logger used by the command line
// programs.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Name is the logger field identifying this program's log lines
const Name = "cvtrack"

// Level maps a command line verbosity of 0 to 3 to error, warn, info and
// debug levels
func Level(verbosity int) (zerolog.Level, error) {

	switch verbosity {
	case 0:
		return zerolog.ErrorLevel, nil
	case 1:
		return zerolog.WarnLevel, nil
	case 2:
		return zerolog.InfoLevel, nil
	case 3:
		return zerolog.DebugLevel, nil
	}

	return zerolog.NoLevel, fmt.Errorf("invalid verbosity %d, expected 0 to 3", verbosity)
}

// New returns a logger writing human readable lines to out and, when
// logFile is not empty, JSON lines to that file as well.  The returned
// closer closes the log file and must be called when done.
func New(out io.Writer, verbosity int, logFile string) (zerolog.Logger, io.Closer, error) {

	level, err := Level(verbosity)

	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var (
		w      io.Writer = zerolog.ConsoleWriter{Out: out, NoColor: out != os.Stdout && out != os.Stderr}
		closer io.Closer = nopCloser{}
	)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)

		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("error opening log file: %w", err)
		}

		w = zerolog.MultiLevelWriter(w, f)
		closer = f
	}

	logger := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("logger", Name).
		Logger()

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error {
	return nil
}
