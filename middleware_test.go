package jsend_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bjaus/jsend"
	"github.com/bjaus/jsend/jsendtest"
)

func TestRecovery(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := jsend.Recovery(jsend.WithLogger(debugLogger(&buf)))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}),
	)

	c := jsendtest.NewClient(t, h)
	resp := c.Get(t, "/panic")

	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, jsend.ServerError("Internal Server Error", nil), resp.Envelope)
}

func TestRecovery_logs_panic(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := jsend.Recovery(jsend.WithLogger(debugLogger(&buf)))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("kaboom")
		}),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/explode", nil))

	out := buf.String()
	assert.Contains(t, out, "panic recovered")
	assert.Contains(t, out, "kaboom")
	assert.Contains(t, out, "path=/explode")
	assert.Contains(t, out, "stack=")
}

func TestRecovery_repanics_abort_handler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := jsend.Recovery(jsend.WithLogger(debugLogger(&buf)))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic(http.ErrAbortHandler)
		}),
	)

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Empty(t, buf.String())
}

func TestRecovery_yaml_client(t *testing.T) {
	t.Parallel()

	h := jsend.Recovery(jsend.WithLogger(debugLogger(&bytes.Buffer{})))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}),
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/yaml")
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "status: fail")
}

func TestChain_ordering(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) jsend.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := jsend.Chain(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		}),
		mark("first"), mark("second"),
	)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"first", "second", "handler"}, order)
}
