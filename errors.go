package jsend

import (
	"errors"
	"net/http"
	"runtime"
)

// Sentinels for variant checks with errors.Is. Every *Error matches ErrJSend;
// a validation error matches both ErrValidation and ErrClient.
var (
	ErrJSend      = errors.New("jsend error")
	ErrClient     = errors.New("jsend client error")
	ErrValidation = errors.New("jsend validation error")
	ErrServer     = errors.New("jsend server error")
)

// ErrMissingCode is wrapped by a ParseError when a pass-through envelope has
// no integer code.
var ErrMissingCode = errors.New("missing integer code")

// Kind identifies an Error variant.
type Kind uint8

// Error variants.
const (
	KindGeneric Kind = iota
	KindClient
	KindValidation
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "generic"
	}
}

// Default display messages used when an envelope carries no message.
const (
	DefaultErrorMessage           = "Error"
	DefaultClientErrorMessage     = "Client Error"
	DefaultValidationErrorMessage = "Validation Error"
	DefaultServerErrorMessage     = "Server Error"
)

const maxStackDepth = 32

// StatusCoder is implemented by errors or responses that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// Error is an error that carries an Envelope so it can be returned up the
// call stack and delivered as a response by whoever handles it.
type Error struct {
	kind     Kind
	envelope Envelope
	message  string
	cause    error
	stack    []uintptr
}

var _ StatusCoder = (*Error)(nil)

// NewError wraps an arbitrary envelope. The display message is the
// envelope's message, or "Error" if it has none.
//
// Only the four envelope fields are carried. A third-party payload with
// other top-level keys loses them when decoded into an Envelope; forward
// such payloads verbatim with Responder.PassThrough, or move the extra keys
// into Data.
func NewError(env Envelope) *Error {
	return newError(KindGeneric, env, DefaultErrorMessage)
}

// NewClientError returns an error carrying a ClientError envelope.
func NewClientError(message string, data any, httpStatus ...int) *Error {
	return newError(KindClient, ClientError(message, data, httpStatus...), DefaultClientErrorMessage)
}

// NewClientValidationError returns an error carrying a ClientValidationError
// envelope (code 422).
func NewClientValidationError(message string, data any) *Error {
	return newError(KindValidation, ClientValidationError(message, data), DefaultValidationErrorMessage)
}

// NewServerError returns an error carrying a ServerError envelope.
func NewServerError(message string, data any, httpStatus ...int) *Error {
	return newError(KindServer, ServerError(message, data, httpStatus...), DefaultServerErrorMessage)
}

// newError must be called directly from an exported constructor so the
// captured stack starts at the constructor's caller.
func newError(kind Kind, env Envelope, fallback string) *Error {
	e := &Error{
		kind:     kind,
		envelope: env,
		message:  env.Message,
	}
	if e.message == "" {
		e.message = fallback
	}

	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(3, pcs)
	e.stack = pcs[:n]

	return e
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.message
}

// Kind returns the variant.
func (e *Error) Kind() Kind { return e.kind }

// Envelope returns the carried envelope.
func (e *Error) Envelope() Envelope { return e.envelope }

// StatusCode returns the envelope's code.
func (e *Error) StatusCode() int { return e.envelope.Code }

// Unwrap returns the cause set with WithCause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// WithCause records the underlying error for errors.Is / errors.As and
// returns the same receiver. The cause is never serialized.
func (e *Error) WithCause(cause error) *Error {
	if e == nil {
		return nil
	}
	e.cause = cause
	return e
}

// Is matches the variant sentinels.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrJSend:
		return true
	case ErrClient:
		return e.kind == KindClient || e.kind == KindValidation
	case ErrValidation:
		return e.kind == KindValidation
	case ErrServer:
		return e.kind == KindServer
	}
	return false
}

// Stack returns the frames captured when the error was constructed,
// innermost first.
func (e *Error) Stack() []runtime.Frame {
	if e == nil || len(e.stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(e.stack)
	out := make([]runtime.Frame, 0, len(e.stack))
	for {
		f, more := frames.Next()
		out = append(out, f)
		if !more {
			break
		}
	}
	return out
}

// AsError finds the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsClientError reports whether err is a client or validation error.
func IsClientError(err error) bool { return errors.Is(err, ErrClient) }

// IsValidationError reports whether err is a validation error.
func IsValidationError(err error) bool { return errors.Is(err, ErrValidation) }

// IsServerError reports whether err is a server error.
func IsServerError(err error) bool { return errors.Is(err, ErrServer) }

// Ensure converts any error to *Error.
//
//   - nil input => nil output
//   - an *Error in the chain is returned as-is
//   - anything else becomes a 500 server error with a client-safe message and
//     err as its cause
func Ensure(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := AsError(err); ok {
		return e
	}
	return newError(
		KindServer,
		ServerError(http.StatusText(http.StatusInternalServerError), nil),
		DefaultServerErrorMessage,
	).WithCause(err)
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement StatusCoder.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// ParseError reports a pass-through envelope that could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "jsend: parse envelope: " + e.Err.Error() }

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error { return e.Err }
