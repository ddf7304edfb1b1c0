// Package jsendfasthttp delivers jsend envelopes through a fasthttp
// RequestCtx.
package jsendfasthttp

import (
	"encoding/json"
	"log/slog"

	"github.com/valyala/fasthttp"

	"github.com/bjaus/jsend"
)

// Transport is a jsend.Transport over a fasthttp.RequestCtx.
type Transport struct {
	ctx    *fasthttp.RequestCtx
	status int
}

var _ jsend.Transport = (*Transport)(nil)

// NewTransport returns a transport writing to ctx's response.
func NewTransport(ctx *fasthttp.RequestCtx) *Transport {
	return &Transport{ctx: ctx, status: fasthttp.StatusOK}
}

// New decorates ctx with a Responder.
func New(ctx *fasthttp.RequestCtx) *jsend.Responder {
	return jsend.Decorate(NewTransport(ctx))
}

// SetStatus records the status code written by the next SendJSON.
func (t *Transport) SetStatus(code int) { t.status = code }

// SendJSON sets the status and Content-Type and writes v as JSON. Codes
// outside 100-999 are sent as 500. HEAD requests get no body.
func (t *Transport) SendJSON(v any) error {
	status := t.status
	if status < 100 || status > 999 {
		status = fasthttp.StatusInternalServerError
	}

	t.ctx.SetContentType("application/json")
	t.ctx.SetStatusCode(status)

	if t.ctx.IsHead() {
		return nil
	}
	return json.NewEncoder(t.ctx).Encode(v)
}

// HandlerFunc is a fasthttp handler that responds through a Responder.
type HandlerFunc func(w *jsend.Responder, ctx *fasthttp.RequestCtx) error

// ErrorHandler delivers an error returned by a HandlerFunc.
type ErrorHandler func(w *jsend.Responder, ctx *fasthttp.RequestCtx, err error)

// Option configures Handle.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	errorHandler ErrorHandler
}

// WithLogger sets the logger used for error reporting.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithErrorHandler replaces DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) { o.errorHandler = h }
}

// Handle adapts h to a fasthttp.RequestHandler. A returned error is passed
// to the error handler unless h already sent a response, in which case it
// is only logged.
func Handle(h HandlerFunc, opts ...Option) fasthttp.RequestHandler {
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

	return func(ctx *fasthttp.RequestCtx) {
		w := New(ctx)

		err := h(w, ctx)
		if err == nil {
			return
		}

		if w.Sent() {
			o.logger.LogAttrs(ctx, slog.LevelWarn, "handler error after response was sent", errorAttrs(ctx, err)...)
			return
		}

		o.errorHandler(w, ctx, err)
	}
}

// DefaultErrorHandler converts err with jsend.Ensure and sends its envelope,
// logging at jsend.ErrorLevel.
func DefaultErrorHandler(logger *slog.Logger) ErrorHandler {
	return func(w *jsend.Responder, ctx *fasthttp.RequestCtx, err error) {
		e := jsend.Ensure(err)

		attrs := append(errorAttrs(ctx, err),
			slog.Int("status", e.StatusCode()),
			slog.String("kind", e.Kind().String()),
		)
		logger.LogAttrs(ctx, jsend.ErrorLevel(e), "request failed", attrs...)

		if sendErr := w.Send(e.Envelope()); sendErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "write error response", slog.Any("err", sendErr))
		}
	}
}

func errorAttrs(ctx *fasthttp.RequestCtx, err error) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("method", string(ctx.Method())),
		slog.String("path", string(ctx.Path())),
		slog.Any("err", err),
	}
	if e, ok := jsend.AsError(err); ok && e.Unwrap() != nil {
		attrs = append(attrs, slog.Any("cause", e.Unwrap()))
	}
	return attrs
}
