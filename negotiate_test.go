package jsend_test

import (
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bjaus/jsend"
)

type csvEncoder struct{}

func (csvEncoder) ContentType() string { return "text/csv" }

func (csvEncoder) Encode(w io.Writer, v any) error {
	env, _ := v.(jsend.Envelope)
	_, err := io.WriteString(w, "code,status\n"+strconv.Itoa(env.Code)+","+string(env.Status)+"\n")
	return err
}

func TestNegotiate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		accept string
		extra  []jsend.Encoder
		want   string
		wantOK bool
	}{
		"empty accept is json":          {accept: "", want: "application/json", wantOK: true},
		"wildcard is json":              {accept: "*/*", want: "application/json", wantOK: true},
		"application wildcard is json":  {accept: "application/*", want: "application/json", wantOK: true},
		"explicit json":                 {accept: "application/json", want: "application/json", wantOK: true},
		"explicit yaml":                 {accept: "application/yaml", want: "application/yaml", wantOK: true},
		"quality prefers json":          {accept: "application/yaml;q=0.5, application/json;q=0.9", want: "application/json", wantOK: true},
		"quality prefers yaml":          {accept: "application/json;q=0.1, application/yaml", want: "application/yaml", wantOK: true},
		"skips malformed parts":         {accept: ";;;, application/yaml", want: "application/yaml", wantOK: true},
		"unsupported":                   {accept: "text/html", wantOK: false},
		"custom encoder":                {accept: "text/csv", extra: []jsend.Encoder{csvEncoder{}}, want: "text/csv", wantOK: true},
		"custom encoder not registered": {accept: "text/csv", wantOK: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := jsend.Negotiate(tc.accept, tc.extra...)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCodeOrDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 200, jsend.CodeOrDefault(nil, 200))
	assert.Equal(t, 200, jsend.CodeOrDefault([]int{0}, 200))
	assert.Equal(t, 204, jsend.CodeOrDefault([]int{204}, 200))
}
