package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEndpoint indicates a name missing from the registry.
	ErrUnknownEndpoint = errors.New("unknown gateway endpoint")
	// ErrMalformedResponse indicates a response body that is not a JSON object.
	ErrMalformedResponse = errors.New("malformed gateway response")
	// ErrMissingEnvelope indicates a response without the ciphertext field.
	ErrMissingEnvelope = errors.New("gateway response has no envelope")
)

// StatusError indicates a non-2xx gateway response.
type StatusError struct {
	Endpoint   EndpointName
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway http status=%d endpoint=%s", e.StatusCode, e.Endpoint)
}

// TransportError wraps a failure to complete the HTTP exchange.
type TransportError struct {
	Endpoint EndpointName
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway transport endpoint=%s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
