package client

import (
	"bytes"

	"github.com/rs/zerolog"

	"github.com/famomatic/waisitv/internal/logging"
)

// Logger is an optional package logger used for non-fatal warnings.
type Logger interface {
	// Warnf logs a formatted warning message.
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

// structuredLogger returns the zerolog logger behind l. Other Logger
// implementations receive warnings and errors as single formatted lines.
func structuredLogger(l Logger) zerolog.Logger {
	switch v := l.(type) {
	case nil, nopLogger:
		return zerolog.Nop()
	case logging.Warner:
		return v.Logger
	case *logging.Warner:
		return v.Logger
	default:
		return zerolog.New(warnfWriter{l}).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	}
}

type warnfWriter struct {
	logger Logger
}

func (w warnfWriter) Write(p []byte) (int, error) {
	w.logger.Warnf("%s", bytes.TrimSpace(p))
	return len(p), nil
}
