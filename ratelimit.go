package jsend

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the RateLimit middleware.
type RateLimitConfig struct {
	Rate    float64                      // requests per second per key
	Burst   int                          // max burst per key
	KeyFunc func(r *http.Request) string // default: remote IP

	// OnLimit answers a rejected request. retryAfter is how long the caller
	// should wait and is already set as the Retry-After header. Defaults to
	// a 429 client error envelope with data {"retry_after": seconds}.
	OnLimit func(w *Responder, r *http.Request, retryAfter time.Duration) error

	// IdleTTL drops limiters whose key has not been seen for this long.
	// Defaults to 5m.
	IdleTTL time.Duration
}

// RateLimit returns middleware that applies per-key rate limiting. Options
// select the logger for rejections and the encoders offered to rejected
// clients.
func RateLimit(cfg RateLimitConfig, opts ...Option) Middleware {
	o := newOptions(opts)

	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = remoteHost
	}
	onLimit := cfg.OnLimit
	if onLimit == nil {
		onLimit = tooManyRequests
	}

	set := newLimiterSet(rate.Limit(cfg.Rate), cfg.Burst, cfg.IdleTTL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)

			wait, ok := set.take(key, time.Now())
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Retry-After", strconv.Itoa(retrySeconds(wait)))
			o.logger.LogAttrs(r.Context(), slog.LevelDebug, "rate limited",
				slog.String("key", key),
				slog.String("path", r.URL.Path),
				slog.Duration("retry_after", wait),
			)

			rw := Decorate(NewHTTPTransport(w, r, o.encoders...))
			if err := onLimit(rw, r, wait); err != nil {
				o.logger.LogAttrs(r.Context(), slog.LevelError, "write rate limit response",
					slog.String("path", r.URL.Path),
					slog.Any("err", err),
				)
			}
		})
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func tooManyRequests(w *Responder, _ *http.Request, retryAfter time.Duration) error {
	return w.ClientError(
		http.StatusText(http.StatusTooManyRequests),
		map[string]int{"retry_after": retrySeconds(retryAfter)},
		http.StatusTooManyRequests,
	)
}

// retrySeconds rounds d up to whole seconds, never below one.
func retrySeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// limiterSet holds one token bucket per key and drops idle ones lazily.
type limiterSet struct {
	limit rate.Limit
	burst int
	ttl   time.Duration

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastSweep time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterSet(limit rate.Limit, burst int, ttl time.Duration) *limiterSet {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &limiterSet{
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
		entries: make(map[string]*limiterEntry),
	}
}

// take spends one token for key. When none is available it reports how
// long until one will be. A zero rate never refills, so the wait is the
// idle TTL.
func (s *limiterSet) take(key string, now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	if now.Sub(s.lastSweep) >= s.ttl {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) > s.ttl {
				delete(s.entries, k)
			}
		}
		s.lastSweep = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	s.mu.Unlock()

	if e.limiter.AllowN(now, 1) {
		return 0, true
	}
	if s.limit <= 0 {
		return s.ttl, false
	}
	missing := 1 - e.limiter.TokensAt(now)
	return time.Duration(missing / float64(s.limit) * float64(time.Second)), false
}
