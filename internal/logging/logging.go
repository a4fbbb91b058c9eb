// Package logging builds the zerolog loggers used across the module and
// adapts them to the narrower logger interfaces of dependencies.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or a file path
}

// New builds a logger for cfg. An unknown level falls back to info. The
// returned Closer releases a file output and is a no-op for stdout and
// stderr.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	out, err := openOutput(cfg.Output)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return NewWithWriter(cfg, out), out, nil
}

// NewWithWriter builds a logger writing to w.
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

type stdStream struct {
	io.Writer
}

func (stdStream) Close() error { return nil }

func openOutput(output string) (io.WriteCloser, error) {
	switch strings.TrimSpace(output) {
	case "", "stderr":
		return stdStream{os.Stderr}, nil
	case "stdout":
		return stdStream{os.Stdout}, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log output: %w", err)
		}
		return f, nil
	}
}

// WithComponent returns a child logger annotated with the component name.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

// Warner adapts a zerolog logger to the Warnf-only logger interface of the
// public client package.
type Warner struct {
	Logger zerolog.Logger
}

// Warnf logs a formatted warning.
func (w Warner) Warnf(format string, args ...any) {
	w.Logger.Warn().Msgf(format, args...)
}

// Leveled adapts a zerolog logger to go-retryablehttp's LeveledLogger.
type Leveled struct {
	Logger zerolog.Logger
}

func (l Leveled) Error(msg string, keysAndValues ...interface{}) {
	l.event(l.Logger.Error(), msg, keysAndValues)
}

func (l Leveled) Info(msg string, keysAndValues ...interface{}) {
	l.event(l.Logger.Info(), msg, keysAndValues)
}

func (l Leveled) Debug(msg string, keysAndValues ...interface{}) {
	l.event(l.Logger.Debug(), msg, keysAndValues)
}

func (l Leveled) Warn(msg string, keysAndValues ...interface{}) {
	l.event(l.Logger.Warn(), msg, keysAndValues)
}

func (Leveled) event(e *zerolog.Event, msg string, kv []interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}
