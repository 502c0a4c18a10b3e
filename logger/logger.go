// Package logger - Structured logging setup shared by the binaries.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options selects the level and optional file output.
type Options struct {
	// Level is a logrus level name such as "debug" or "info".
	Level string
	// File, when set, receives a copy of everything written to Output.
	File string
	// Output defaults to os.Stdout.
	Output io.Writer
}

// New creates a text logger with full timestamps.
//
// Returns:
//   - *logrus.Logger: The configured logger.
//   - io.Closer: Closes the log file; a no-op when no file is used.
//   - error: An error for an unknown level or an unwritable file.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		var err error
		level, err = logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, errors.Wrap(err, "invalid log level")
		}
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, errors.Wrap(err, "failed to create log directory")
		}
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to open log file %s", opts.File)
		}
		out = io.MultiWriter(out, file)
		closer = file
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
