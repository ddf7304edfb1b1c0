package jsend

import "net/http"

// HTTPTransport is a Transport over an http.ResponseWriter. The encoder is
// negotiated from the request's Accept header, falling back to JSON when
// nothing matches.
type HTTPTransport struct {
	w      http.ResponseWriter
	r      *http.Request
	status int
	codecs *codecRegistry
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport returns a transport writing to w. r may be nil, in which
// case JSON is always used. encoders are offered after the built-in JSON
// and YAML encoders.
func NewHTTPTransport(w http.ResponseWriter, r *http.Request, encoders ...Encoder) *HTTPTransport {
	return &HTTPTransport{
		w:      w,
		r:      r,
		status: http.StatusOK,
		codecs: newCodecRegistry(encoders),
	}
}

// New decorates w with a Responder for the request r.
func New(w http.ResponseWriter, r *http.Request, opts ...Option) *Responder {
	o := newOptions(opts)
	return Decorate(NewHTTPTransport(w, r, o.encoders...))
}

// SetStatus records the status code written by the next SendJSON.
func (t *HTTPTransport) SetStatus(code int) { t.status = code }

// SendJSON writes the status line, Content-Type, and the encoded value.
// Codes net/http cannot write (outside 100-999) are sent as 500. HEAD
// requests get no body.
func (t *HTTPTransport) SendJSON(v any) error {
	var accept string
	if t.r != nil {
		accept = t.r.Header.Get("Accept")
	}

	enc, ok := t.codecs.negotiate(accept)
	if !ok {
		enc = t.codecs.encoders[0]
	}

	status := t.status
	if status < 100 || status > 999 {
		status = http.StatusInternalServerError
	}

	t.w.Header().Set("Content-Type", enc.ContentType())
	t.w.WriteHeader(status)

	if t.r != nil && t.r.Method == http.MethodHead {
		return nil
	}
	return enc.Encode(t.w, v)
}
