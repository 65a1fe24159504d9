// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options selects the log destinations and format.
type Options struct {
	// Path, when set, receives every level in addition to stdout/stderr.
	Path string
	// Level is a zerolog level name; empty means info.
	Level string
	// Format is "console" or "json".
	Format string
}

// levelRouter writes info and warn entries to stdout and error entries and
// above to stderr.
type levelRouter struct {
	stdout io.Writer
	stderr io.Writer
}

func (lr levelRouter) Write(p []byte) (int, error) {
	return lr.stdout.Write(p)
}

func (lr levelRouter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel && level != zerolog.NoLevel {
		return lr.stderr.Write(p)
	}
	return lr.stdout.Write(p)
}

// New builds a logger writing to stdout and stderr, and to file if non-nil.
func New(opts Options, stdout, stderr, file io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("parsing log level: %w", err)
		}
		level = l
	}

	if file != nil {
		stdout = io.MultiWriter(stdout, file)
		stderr = io.MultiWriter(stderr, file)
	}

	switch opts.Format {
	case "", "console":
		stdout = zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.RFC3339, NoColor: file != nil}
		stderr = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339, NoColor: file != nil}
	case "json":
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log format %q", opts.Format)
	}

	return zerolog.New(levelRouter{stdout: stdout, stderr: stderr}).
		Level(level).With().Timestamp().Logger(), nil
}

// Setup installs the global logger. The returned function closes the log
// file, if one was opened.
func Setup(opts Options) (func(), error) {
	var file *os.File
	cleanup := func() {}
	if opts.Path != "" {
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		file = f
		cleanup = func() { f.Close() }
	}

	var fileWriter io.Writer
	if file != nil {
		fileWriter = file
	}
	logger, err := New(opts, os.Stdout, os.Stderr, fileWriter)
	if err != nil {
		cleanup()
		return nil, err
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = logger
	return cleanup, nil
}
