// Command sample demonstrates github.com/bjaus/jsend with a small API.
//
// Run:
//
//	go run ./cmd/sample
//
// Settings come from the environment or a .env file: SAMPLE_ADDR,
// SAMPLE_LOG_LEVEL, SAMPLE_RATE_LIMIT, SAMPLE_RATE_BURST,
// SAMPLE_SHUTDOWN_TIMEOUT.
//
// Then explore:
//
//	GET  http://localhost:8080/v1/health         # success envelope
//	GET  http://localhost:8080/v1/users          # list users
//	POST http://localhost:8080/v1/users          # create user (422 on bad input)
//	GET  http://localhost:8080/v1/users/{id}     # get user (404 client error)
//	GET  http://localhost:8080/v1/upstream       # pass-through of a third-party envelope
//	GET  http://localhost:8080/v1/panic          # recovered panic (500 fail)
//
// Send "Accept: application/yaml" to get YAML envelopes.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bjaus/jsend"
)

func main() {
	cfg := loadConfig()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(cfg, newUserStore()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting server", "addr", cfg.Addr)

	if err := serve(ctx, srv, cfg.ShutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// serve blocks until the context is cancelled, then shuts down gracefully.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newHandler(cfg config, store *userStore) http.Handler {
	logger := slog.Default()
	opts := []jsend.Option{jsend.WithLogger(logger)}

	mux := http.NewServeMux()
	mux.Handle("GET /v1/health", jsend.Handle(handleHealth, opts...))
	mux.Handle("GET /v1/users", jsend.Handle(store.handleList, opts...))
	mux.Handle("POST /v1/users", jsend.Handle(store.handleCreate, opts...))
	mux.Handle("GET /v1/users/{id}", jsend.Handle(store.handleGet, opts...))
	mux.Handle("GET /v1/upstream", jsend.Handle(handleUpstream, opts...))
	mux.Handle("GET /v1/panic", jsend.Handle(func(*jsend.Responder, *http.Request) error {
		panic("boom")
	}, opts...))
	mux.Handle("/", jsend.Handle(func(w *jsend.Responder, r *http.Request) error {
		return w.ClientError("Not Found", map[string]string{"path": r.URL.Path}, http.StatusNotFound)
	}, opts...))

	return jsend.Chain(mux,
		jsend.RequestID(),
		jsend.Logger(logger),
		jsend.Recovery(opts...),
		jsend.RateLimit(jsend.RateLimitConfig{Rate: cfg.RateLimit, Burst: cfg.RateBurst}, opts...),
	)
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func handleHealth(w *jsend.Responder, _ *http.Request) error {
	return w.Success(map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// upstreamBody stands in for a response body received from another service
// that speaks the same envelope.
const upstreamBody = `{"code":503,"status":"fail","data":{"service":"billing"},"message":"Billing is down for maintenance"}`

func handleUpstream(w *jsend.Responder, _ *http.Request) error {
	if err := w.PassThrough(upstreamBody); err != nil {
		return jsend.NewServerError("Bad upstream response", nil, http.StatusBadGateway).WithCause(err)
	}
	return nil
}

func (s *userStore) handleList(w *jsend.Responder, r *http.Request) error {
	users := s.list(r.URL.Query().Get("role"))
	return w.Success(map[string]any{"users": users, "total": len(users)})
}

func (s *userStore) handleGet(w *jsend.Responder, r *http.Request) error {
	id := r.PathValue("id")
	u, ok := s.get(id)
	if !ok {
		return jsend.NewClientError("User not found", map[string]string{"id": id}, http.StatusNotFound)
	}
	return w.Success(u)
}

type createUserBody struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *userStore) handleCreate(w *jsend.Responder, r *http.Request) error {
	var body createUserBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return jsend.NewClientError("Malformed JSON body", nil).WithCause(err)
	}

	if fields := body.validate(); len(fields) > 0 {
		return jsend.NewClientValidationError("Invalid user", fields)
	}

	u := s.create(body)
	return w.Success(u, http.StatusCreated)
}

func (b *createUserBody) validate() map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(b.Name) == "" {
		fields["name"] = "is required"
	}
	if _, err := mail.ParseAddress(b.Email); err != nil {
		fields["email"] = "must be a valid email address"
	}
	switch b.Role {
	case "":
		b.Role = "member"
	case "admin", "member":
	default:
		fields["role"] = "must be admin or member"
	}
	return fields
}

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

// User is the core domain entity.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type userStore struct {
	mu     sync.RWMutex
	users  map[string]User
	nextID int
}

func newUserStore() *userStore {
	s := &userStore{users: make(map[string]User)}
	s.create(createUserBody{Name: "Ada Lovelace", Email: "ada@example.com", Role: "admin"})
	return s
}

func (s *userStore) create(b createUserBody) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u := User{
		ID:        fmt.Sprintf("u%d", s.nextID),
		Name:      b.Name,
		Email:     b.Email,
		Role:      b.Role,
		CreatedAt: time.Now().UTC(),
	}
	s.users[u.ID] = u
	return u
}

func (s *userStore) get(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *userStore) list(role string) []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
