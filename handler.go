package jsend

import (
	"log/slog"
	"net/http"
)

// HandlerFunc is an HTTP handler that responds through a Responder. A
// returned error is delivered as an envelope unless the handler already
// sent a response.
type HandlerFunc func(w *Responder, r *http.Request) error

// ErrorHandler delivers an error returned by a HandlerFunc.
type ErrorHandler func(w *Responder, r *http.Request, err error)

// Option configures Handle, New, and Recovery.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	encoders     []Encoder
	errorHandler ErrorHandler
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.errorHandler == nil {
		o.errorHandler = DefaultErrorHandler(o.logger)
	}
	return o
}

// WithLogger sets the logger used for error and panic reporting.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEncoder registers an additional response encoder.
func WithEncoder(enc Encoder) Option {
	return func(o *options) {
		o.encoders = append(o.encoders, enc)
	}
}

// WithErrorHandler replaces DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) {
		o.errorHandler = h
	}
}

// Handle adapts h to an http.Handler.
func Handle(h HandlerFunc, opts ...Option) http.Handler {
	o := newOptions(opts)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := Decorate(NewHTTPTransport(w, r, o.encoders...))

		err := h(rw, r)
		if err == nil {
			return
		}

		if rw.Sent() {
			o.logger.LogAttrs(r.Context(), slog.LevelWarn, "handler error after response was sent", errorAttrs(r, err)...)
			return
		}

		o.errorHandler(rw, r, err)
	})
}

// DefaultErrorHandler converts err with Ensure and sends its envelope.
// Server-attributable errors are logged at ERROR, everything else at DEBUG.
func DefaultErrorHandler(logger *slog.Logger) ErrorHandler {
	return func(w *Responder, r *http.Request, err error) {
		e := Ensure(err)

		attrs := append(errorAttrs(r, err),
			slog.Int("status", e.StatusCode()),
			slog.String("kind", e.Kind().String()),
		)
		logger.LogAttrs(r.Context(), ErrorLevel(e), "request failed", attrs...)

		if sendErr := w.Send(e.Envelope()); sendErr != nil {
			logger.LogAttrs(r.Context(), slog.LevelError, "write error response",
				slog.String("path", r.URL.Path),
				slog.Any("err", sendErr),
			)
		}
	}
}

// ErrorLevel is the level error handlers log e at: ERROR for server errors
// and 5xx codes, DEBUG for everything the client caused.
func ErrorLevel(e *Error) slog.Level {
	if IsServerError(e) || StatusForCode(e.StatusCode()) == StatusFail {
		return slog.LevelError
	}
	return slog.LevelDebug
}

func errorAttrs(r *http.Request, err error) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("err", err),
	}
	if e, ok := AsError(err); ok && e.Unwrap() != nil {
		attrs = append(attrs, slog.Any("cause", e.Unwrap()))
	}
	if id := GetRequestID(r); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	return attrs
}
