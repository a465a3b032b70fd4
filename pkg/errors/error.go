package errors

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// These are the Codes reported to the operator alongside every failure
const (
	remoteRequestError = "RemoteRequestError"
	transportError     = "TransportError"
	configurationError = "ConfigurationError"
	policyViolation    = "PolicyViolation"
	validationError    = "RequestValidationError"
	usageError         = "UsageError"
)

// Process exit statuses
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

type detailError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// StatusError is the custom error type we are using.
// Should satisfy errors interface
type StatusError struct {
	httpCode int
	exitCode int
	body     string
	cause    error
	Details  detailError `json:"error"`
	stack    *stack
}

func (e *StatusError) Error() string { return e.Details.Message }

// OriginalError provides the underlying error
func (e *StatusError) OriginalError() error { return e.cause }

// Unwrap lets the standard library walk to the underlying error
func (e *StatusError) Unwrap() error { return e.cause }

// HTTPCode returns the status the remote service responded with, 0 if the
// failure never reached the service
func (e *StatusError) HTTPCode() int { return e.httpCode }

// ExitCode returns the process exit status for the error
func (e *StatusError) ExitCode() int { return e.exitCode }

// Body returns the response body of a failed remote request
func (e *StatusError) Body() string { return e.body }

// StackTrace returns the frames for a stack trace
func (e *StatusError) StackTrace() errors.StackTrace {
	return e.stack.StackTrace()
}

// Format for the standard format library
func (e *StatusError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			if e.cause != nil {
				fmt.Fprintf(s, "%s: %+v", e.Error(), e.cause)
			} else {
				io.WriteString(s, e.Error())
			}
			e.stack.Format(s, verb)
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// Is checks to see if the errors match
func (e *StatusError) Is(err error) bool {
	s, ok := err.(*StatusError)
	if ok {
		if s.Details.Code == e.Details.Code && e.Error() == err.Error() {
			return true
		}
	}
	return false
}

// HTTPCode returns the remote status
type HTTPCode interface {
	HTTPCode() int
}

// HTTPCodeForError returns the remote status carried by an error, 0 if there is none.
func HTTPCodeForError(err error) int {
	var t HTTPCode
	if As(err, &t) {
		return t.HTTPCode()
	}
	return 0
}

// ExitCode returns the process exit status
type ExitCode interface {
	ExitCode() int
}

// ExitCodeForError returns the process exit status for a particular error.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var t ExitCode
	if As(err, &t) {
		return t.ExitCode()
	}
	return ExitFailure
}

// GetStackTrace returns the stack trace
type GetStackTrace interface {
	StackTrace() errors.StackTrace
}

// GetStackTraceForError returns the stack trace for a particular error.
func GetStackTraceForError(err error) errors.StackTrace {
	switch t := err.(type) {
	case GetStackTrace:
		return t.StackTrace()
	}
	return nil
}

// IsRemoteRequest reports whether the error came from a non-success response
func IsRemoteRequest(err error) bool {
	var s *StatusError
	return As(err, &s) && s.Details.Code == remoteRequestError
}

// IsPolicyViolation reports whether the error is a rejected environment pairing
func IsPolicyViolation(err error) bool {
	var s *StatusError
	return As(err, &s) && s.Details.Code == policyViolation
}

// IsConfiguration reports whether the error is a configuration failure
func IsConfiguration(err error) bool {
	var s *StatusError
	return As(err, &s) && s.Details.Code == configurationError
}

// NewRemoteRequest creates an error for a non-success response from the service.
// The body is kept verbatim.
func NewRemoteRequest(method string, endpoint string, statusCode int, body string) *StatusError {
	return &StatusError{
		httpCode: statusCode,
		exitCode: ExitFailure,
		body:     body,
		Details: detailError{
			Message: fmt.Sprintf("%s %s responded with status %d: %s", method, endpoint, statusCode, body),
			Code:    remoteRequestError,
		},
		stack: callers(),
	}
}

// NewTransport returns an error for requests that never produced a usable response
func NewTransport(m string, err error) *StatusError {
	return &StatusError{
		exitCode: ExitFailure,
		cause:    err,
		Details: detailError{
			Message: withCause(m, err),
			Code:    transportError,
		},
		stack: callers(),
	}
}

// NewConfiguration returns an error for missing or malformed configuration
func NewConfiguration(m string, err error) *StatusError {
	return &StatusError{
		exitCode: ExitFailure,
		cause:    err,
		Details: detailError{
			Message: withCause(m, err),
			Code:    configurationError,
		},
		stack: callers(),
	}
}

// NewPolicyViolation returns an error for an environment pairing that is never allowed
func NewPolicyViolation(m string, err error) *StatusError {
	return &StatusError{
		exitCode: ExitUsage,
		cause:    err,
		Details: detailError{
			Message: withCause(m, err),
			Code:    policyViolation,
		},
		stack: callers(),
	}
}

// NewValidation creates a validation error
func NewValidation(group string, err error) *StatusError {
	return &StatusError{
		exitCode: ExitUsage,
		cause:    err,
		Details: detailError{
			Message: fmt.Sprintf("%s validation error: %v", group, err),
			Code:    validationError,
		},
		stack: callers(),
	}
}

// NewUsage wraps a command line parsing error
func NewUsage(err error) *StatusError {
	return &StatusError{
		exitCode: ExitUsage,
		cause:    err,
		Details: detailError{
			Message: err.Error(),
			Code:    usageError,
		},
		stack: callers(),
	}
}

// NewStepFailure prefixes an error with the workflow step that failed. Remote
// failures are reported with the response body only. The status, exit code and
// error code of err are kept.
func NewStepFailure(step string, err error) *StatusError {
	detail := err.Error()
	code := transportError
	body := ""
	var s *StatusError
	if As(err, &s) {
		code = s.Details.Code
		if code == remoteRequestError {
			body = s.body
			detail = s.body
		}
	}

	return &StatusError{
		httpCode: HTTPCodeForError(err),
		exitCode: ExitCodeForError(err),
		body:     body,
		cause:    err,
		Details: detailError{
			Message: fmt.Sprintf("%s - %s", step, detail),
			Code:    code,
		},
		stack: callers(),
	}
}

func withCause(m string, err error) string {
	if err == nil {
		return m
	}
	return fmt.Sprintf("%s: %v", m, err)
}

// Cause gets the original error
func Cause(err error) error {
	type unwraper interface {
		Unwrap() error
	}

	for err != nil {
		cause, ok := err.(unwraper)
		if !ok {
			break
		}
		next := cause.Unwrap()
		if next == nil {
			break
		}
		err = next
	}
	return err
}
