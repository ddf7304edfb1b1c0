// Package jsendtest provides test helpers for code that responds with jsend
// envelopes.
package jsendtest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bjaus/jsend"
)

// Recorder is a jsend.Transport that records what it was asked to send.
type Recorder struct {
	Status int    // last code passed to SetStatus
	Value  any    // last value passed to SendJSON
	Body   []byte // Value marshalled to JSON
	Calls  int    // number of SendJSON calls

	// Err, if set, is returned from SendJSON.
	Err error
}

var _ jsend.Transport = (*Recorder)(nil)

// NewResponder returns a Responder over a fresh Recorder.
func NewResponder() (*jsend.Responder, *Recorder) {
	rec := &Recorder{}
	return jsend.Decorate(rec), rec
}

// SetStatus implements jsend.Transport.
func (r *Recorder) SetStatus(code int) { r.Status = code }

// SendJSON implements jsend.Transport.
func (r *Recorder) SendJSON(v any) error {
	r.Calls++
	r.Value = v
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.Body = b
	return r.Err
}

// Envelope decodes the recorded body.
func (r *Recorder) Envelope(t testing.TB) jsend.Envelope {
	t.Helper()
	var env jsend.Envelope
	if err := json.Unmarshal(r.Body, &env); err != nil {
		t.Fatalf("jsendtest: decode recorded body: %v", err)
	}
	return env
}

// Client wraps an httptest.Server for convenient API testing.
type Client struct {
	Server *httptest.Server
}

// NewClient creates a test client serving h.
func NewClient(t testing.TB, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Response holds a decoded envelope response.
type Response struct {
	Status   int
	Headers  http.Header
	Body     []byte
	Envelope jsend.Envelope
}

// Get sends a GET request.
func (c *Client) Get(t testing.TB, path string) *Response {
	t.Helper()
	return c.Do(t, http.MethodGet, path, nil)
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(t testing.TB, path string, body any) *Response {
	t.Helper()
	return c.Do(t, http.MethodPost, path, body)
}

// Do sends a request and decodes the response body as an envelope. A nil
// body sends no request body.
func (c *Client) Do(t testing.TB, method, path string, body any) *Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("jsendtest: marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("jsendtest: create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("jsendtest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("jsendtest: close body: %v", closeErr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("jsendtest: read body: %v", err)
	}

	result := &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    raw,
	}

	if len(raw) > 0 {
		if decErr := json.Unmarshal(raw, &result.Envelope); decErr != nil {
			t.Fatalf("jsendtest: decode envelope: %v", decErr)
		}
	}

	return result
}

// Data re-decodes the envelope's data into T.
func Data[T any](t testing.TB, resp *Response) T {
	t.Helper()

	var out T
	b, err := json.Marshal(resp.Envelope.Data)
	if err != nil {
		t.Fatalf("jsendtest: marshal data: %v", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("jsendtest: decode data: %v", err)
	}
	return out
}
