package client

import (
	"errors"

	"github.com/famomatic/waisitv/internal/envelope"
	"github.com/famomatic/waisitv/internal/gateway"
	"github.com/famomatic/waisitv/internal/playback"
)

var (
	// ErrInvalidInput indicates malformed input (not a slug or stream URL).
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable indicates no stream URL could be resolved.
	ErrUnavailable = errors.New("stream link unavailable")
	// ErrClosed indicates the client was closed.
	ErrClosed = errors.New("client closed")
)

// ErrorCategory is a coarse classification of client errors.
type ErrorCategory string

const (
	ErrorCategoryInvalidInput  ErrorCategory = "invalid_input"
	ErrorCategoryUnavailable   ErrorCategory = "unavailable"
	ErrorCategoryClosed        ErrorCategory = "closed"
	ErrorCategoryUnknownLevel  ErrorCategory = "unknown_level"
	ErrorCategoryGatewayStatus ErrorCategory = "gateway_status"
	ErrorCategoryTransport     ErrorCategory = "transport"
	ErrorCategoryDecrypt       ErrorCategory = "decrypt"
	ErrorCategoryUnknown       ErrorCategory = "unknown"
)

// ClassifyError maps err onto an ErrorCategory.
func ClassifyError(err error) ErrorCategory {
	var statusErr *gateway.StatusError
	var transportErr *gateway.TransportError
	switch {
	case errors.Is(err, ErrInvalidInput):
		return ErrorCategoryInvalidInput
	case errors.Is(err, ErrUnavailable):
		return ErrorCategoryUnavailable
	case errors.Is(err, ErrClosed), errors.Is(err, playback.ErrSessionClosed):
		return ErrorCategoryClosed
	case errors.Is(err, playback.ErrUnknownLevel):
		return ErrorCategoryUnknownLevel
	case errors.As(err, &statusErr):
		return ErrorCategoryGatewayStatus
	case errors.As(err, &transportErr):
		return ErrorCategoryTransport
	case errors.Is(err, envelope.ErrDecrypt), errors.Is(err, gateway.ErrMissingEnvelope), errors.Is(err, gateway.ErrMalformedResponse):
		return ErrorCategoryDecrypt
	default:
		return ErrorCategoryUnknown
	}
}
