package jsend

import (
	"bytes"
	"encoding/json"
)

// Transport is the host response capability a Responder decorates: it sets
// the status code and serializes a value to the wire.
type Transport interface {
	SetStatus(code int)
	SendJSON(v any) error
}

// Responder builds envelopes and delivers them through a Transport. Each
// delivering method sets the status to the envelope's code and sends it
// exactly once, returning the Transport's result.
//
// A Responder belongs to one in-flight request and is not safe for
// concurrent use.
type Responder struct {
	t    Transport
	sent bool
}

// Decorate returns a Responder over t.
func Decorate(t Transport) *Responder {
	return &Responder{t: t}
}

// Transport returns the decorated transport.
func (r *Responder) Transport() Transport { return r.t }

// Sent reports whether a delivering method has been called.
func (r *Responder) Sent() bool { return r.sent }

// Success sends a success envelope. httpStatus defaults to 200.
func (r *Responder) Success(data any, httpStatus ...int) error {
	return r.Send(Success(data, httpStatus...))
}

// ClientError sends a client error envelope. httpStatus defaults to 400.
func (r *Responder) ClientError(message string, data any, httpStatus ...int) error {
	return r.Send(ClientError(message, data, httpStatus...))
}

// ClientValidationError sends a client error envelope with code 422.
func (r *Responder) ClientValidationError(message string, data any) error {
	return r.Send(ClientValidationError(message, data))
}

// ServerError sends a server error envelope. httpStatus defaults to 500.
func (r *Responder) ServerError(message string, data any, httpStatus ...int) error {
	return r.Send(ServerError(message, data, httpStatus...))
}

// Send delivers env with its own code.
func (r *Responder) Send(env Envelope) error {
	return r.deliver(env.Code, env)
}

// Error delivers the envelope carried by err, converting it with Ensure
// first. A nil err sends nothing.
func (r *Responder) Error(err error) error {
	e := Ensure(err)
	if e == nil {
		return nil
	}
	return r.Send(e.Envelope())
}

// PassThrough forwards an envelope produced elsewhere, typically by a third
// party system. v may be an Envelope, *Envelope, or its serialized form as
// string, []byte, or json.RawMessage; any other value is marshalled to JSON
// first. Serialized input is sent verbatim once its code has been read; its
// shape is not otherwise checked.
//
// Malformed input, or input without an integer code, returns a *ParseError
// and sends nothing.
func (r *Responder) PassThrough(v any) error {
	switch env := v.(type) {
	case Envelope:
		return r.Send(env)
	case *Envelope:
		if env == nil {
			return &ParseError{Err: ErrMissingCode}
		}
		return r.Send(*env)
	case json.RawMessage:
		return r.passThroughRaw(env)
	case []byte:
		return r.passThroughRaw(env)
	case string:
		return r.passThroughRaw([]byte(env))
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return &ParseError{Err: err}
		}
		return r.passThroughRaw(b)
	}
}

func (r *Responder) passThroughRaw(b []byte) error {
	var head struct {
		Code *int `json:"code"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return &ParseError{Err: err}
	}
	if head.Code == nil {
		return &ParseError{Err: ErrMissingCode}
	}
	return r.deliver(*head.Code, json.RawMessage(bytes.Clone(b)))
}

func (r *Responder) deliver(code int, v any) error {
	r.sent = true
	r.t.SetStatus(code)
	return r.t.SendJSON(v)
}
