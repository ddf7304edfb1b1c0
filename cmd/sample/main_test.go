package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/jsend"
	"github.com/bjaus/jsend/jsendtest"
)

func newTestClient(t *testing.T) *jsendtest.Client {
	t.Helper()
	cfg := config{RateLimit: 1000, RateBurst: 1000}
	return jsendtest.NewClient(t, newHandler(cfg, newUserStore()))
}

func TestSample_health(t *testing.T) {
	t.Parallel()

	resp := newTestClient(t).Get(t, "/v1/health")

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, jsend.StatusSuccess, resp.Envelope.Status)
	assert.NotEmpty(t, resp.Headers.Get("X-Request-ID"))
}

func TestSample_users(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)

	resp := c.Post(t, "/v1/users", createUserBody{Name: "Grace", Email: "grace@example.com"})
	require.Equal(t, http.StatusCreated, resp.Status)
	created := jsendtest.Data[User](t, resp)
	assert.Equal(t, "Grace", created.Name)
	assert.Equal(t, "member", created.Role)

	resp = c.Get(t, "/v1/users/"+created.ID)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, created.Email, jsendtest.Data[User](t, resp).Email)

	resp = c.Get(t, "/v1/users?role=admin")
	assert.Equal(t, http.StatusOK, resp.Status)
	list := jsendtest.Data[struct {
		Users []User `json:"users"`
		Total int    `json:"total"`
	}](t, resp)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "Ada Lovelace", list.Users[0].Name)
}

func TestSample_errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		method     string
		path       string
		body       any
		wantStatus int
		wantEnv    jsend.Status
		wantMsg    string
	}{
		"unknown user": {
			method: http.MethodGet, path: "/v1/users/u99",
			wantStatus: http.StatusNotFound, wantEnv: jsend.StatusError, wantMsg: "User not found",
		},
		"invalid user": {
			method: http.MethodPost, path: "/v1/users", body: createUserBody{Email: "nope", Role: "root"},
			wantStatus: http.StatusUnprocessableEntity, wantEnv: jsend.StatusError, wantMsg: "Invalid user",
		},
		"malformed body": {
			method: http.MethodPost, path: "/v1/users", body: []int{1},
			wantStatus: http.StatusBadRequest, wantEnv: jsend.StatusError, wantMsg: "Malformed JSON body",
		},
		"upstream pass-through": {
			method: http.MethodGet, path: "/v1/upstream",
			wantStatus: http.StatusServiceUnavailable, wantEnv: jsend.StatusFail, wantMsg: "Billing is down for maintenance",
		},
		"panic": {
			method: http.MethodGet, path: "/v1/panic",
			wantStatus: http.StatusInternalServerError, wantEnv: jsend.StatusFail, wantMsg: "Internal Server Error",
		},
		"not found": {
			method: http.MethodGet, path: "/nowhere",
			wantStatus: http.StatusNotFound, wantEnv: jsend.StatusError, wantMsg: "Not Found",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			resp := newTestClient(t).Do(t, tc.method, tc.path, tc.body)

			assert.Equal(t, tc.wantStatus, resp.Status)
			assert.Equal(t, tc.wantStatus, resp.Envelope.Code)
			assert.Equal(t, tc.wantEnv, resp.Envelope.Status)
			assert.Equal(t, tc.wantMsg, resp.Envelope.Message)
		})
	}
}

func TestSample_validation_fields(t *testing.T) {
	t.Parallel()

	resp := newTestClient(t).Post(t, "/v1/users", createUserBody{Email: "nope", Role: "root"})

	assert.Equal(t, map[string]string{
		"name":  "is required",
		"email": "must be a valid email address",
		"role":  "must be admin or member",
	}, jsendtest.Data[map[string]string](t, resp))
}

func TestLoadConfig_defaults(t *testing.T) {
	t.Setenv("SAMPLE_ADDR", "")
	t.Setenv("SAMPLE_RATE_BURST", "7")
	t.Setenv("SAMPLE_LOG_LEVEL", "warn")

	cfg := loadConfig()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 7, cfg.RateBurst)
	assert.Equal(t, 50.0, cfg.RateLimit)
}
