package errors

import (
	"errors"
	"fmt"
)

// ErrRedirectNotSupported is returned when the API answers with a 3xx status.
// The decodevin endpoint never redirects, so this is treated as fatal.
var ErrRedirectNotSupported = errors.New("no support for HTTP redirection from NHTSA API")

// TransportKind classifies a failed fetch.
type TransportKind int

const (
	KindNetwork TransportKind = iota
	KindClient
	KindServer
)

func (k TransportKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// TransportError is a network failure or a non-2xx status without a usable payload.
type TransportError struct {
	Kind       TransportKind
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface, returning the classified message.
func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewStatusError classifies a non-2xx, non-3xx response.
func NewStatusError(code int, status, reason string) *TransportError {
	if code >= 400 && code < 500 {
		return &TransportError{
			Kind:       KindClient,
			StatusCode: code,
			Message:    fmt.Sprintf("Client error: %s", status),
		}
	}
	return &TransportError{
		Kind:       KindServer,
		StatusCode: code,
		Message:    reason,
	}
}

// NewNetworkError wraps a socket-level failure keeping its message.
func NewNetworkError(err error) *TransportError {
	return &TransportError{
		Kind:    KindNetwork,
		Message: err.Error(),
		Err:     err,
	}
}

// ParseFault reports a payload that violates the API contract.
// The raw body is kept so the caller can see what the API sent.
type ParseFault struct {
	Raw string
	Err error
}

func (e *ParseFault) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Raw)
}

func (e *ParseFault) Unwrap() error {
	return e.Err
}

// NewParseFault creates a ParseFault for the given raw body.
func NewParseFault(raw string, err error) *ParseFault {
	return &ParseFault{Raw: raw, Err: err}
}

// CommandError represents an error that occurred during command execution, carrying the exit code.
type CommandError struct {
	ExitCode    int
	CommonError string
	Err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError instance with the given exit code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Err:         err,
	}
}

// Decode outcomes reported through the query state rather than returned.
var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrRemoteRejection   = errors.New("request rejected by NHTSA API")
	ErrDecodeFailure     = errors.New("VIN could not be decoded")
)
