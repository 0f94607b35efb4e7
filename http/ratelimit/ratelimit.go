// Package ratelimit throttles requests per client and answers rejected ones
// with a too_many_requests envelope.
package ratelimit

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/surazdott/api-response/http/responder"
	"github.com/surazdott/api-response/logging"
)

const (
	APIKeyHeader = "X-API-Key"

	headerLimit      = "X-RateLimit-Limit"
	headerRemaining  = "X-RateLimit-Remaining"
	headerRetryAfter = "Retry-After"
)

// Config is the default allowance for every client.
type Config struct {
	Enabled bool          `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Limit   int           `mapstructure:"limit" json:"limit" yaml:"limit" default:"60"`
	Window  time.Duration `mapstructure:"window" json:"window" yaml:"window" default:"1m"`
	// Store is "memory" or "redis".
	Store string `mapstructure:"store" json:"store" yaml:"store" default:"memory"`
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// LimitStore counts requests per key.
type LimitStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// Rule overrides the default allowance for paths under Prefix.
type Rule struct {
	Prefix string
	Limit  int
	Window time.Duration
}

// KeyFunc names the bucket a request is counted in.
type KeyFunc func(*http.Request) string

type RateLimiter struct {
	store   LimitStore
	limit   int
	window  time.Duration
	rules   []Rule
	keyFn   KeyFunc
	factory *responder.ResponderFactory
	logger  logging.Logger
}

type Option func(*RateLimiter)

// WithRule adds a per-prefix allowance. The longest matching prefix wins.
func WithRule(prefix string, limit int, window time.Duration) Option {
	return func(rl *RateLimiter) {
		rl.rules = append(rl.rules, Rule{Prefix: prefix, Limit: limit, Window: window})
	}
}

func WithKeyFunc(fn KeyFunc) Option {
	return func(rl *RateLimiter) {
		if fn != nil {
			rl.keyFn = fn
		}
	}
}

// WithFactory writes rejections with f instead of the default factory.
func WithFactory(f *responder.ResponderFactory) Option {
	return func(rl *RateLimiter) {
		rl.factory = f
	}
}

func WithLogger(l logging.Logger) Option {
	return func(rl *RateLimiter) {
		rl.logger = l
	}
}

// New creates a limiter allowing cfg.Limit requests per cfg.Window and key.
func New(store LimitStore, cfg Config, opts ...Option) *RateLimiter {
	rl := &RateLimiter{
		store:  store,
		limit:  cfg.Limit,
		window: cfg.Window,
		keyFn:  ClientKey,
	}
	if rl.limit <= 0 {
		rl.limit = 60
	}
	if rl.window <= 0 {
		rl.window = time.Minute
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// ClientKey uses the X-API-Key header, or the client IP without port.
func ClientKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(APIKeyHeader)); key != "" {
		return "key:" + key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		host = "anonymous"
	}
	return "ip:" + host
}

func (rl *RateLimiter) ruleFor(path string) (string, int, time.Duration) {
	best := -1
	for i, rule := range rl.rules {
		if strings.HasPrefix(path, rule.Prefix) && (best < 0 || len(rule.Prefix) > len(rl.rules[best].Prefix)) {
			best = i
		}
	}
	if best < 0 {
		return "", rl.limit, rl.window
	}
	rule := rl.rules[best]
	return rule.Prefix, rule.Limit, rule.Window
}

// Middleware rejects requests over the allowance with 429. Store failures let
// the request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix, limit, window := rl.ruleFor(r.URL.Path)
		key := rl.keyFn(r)
		if prefix != "" {
			key = prefix + "|" + key
		}

		d, err := rl.store.Allow(r.Context(), key, limit, window)
		if err != nil {
			rl.log(r).Warn("rate limit store failed",
				zap.String("key", key),
				zap.Error(err),
			)
			next.ServeHTTP(w, r)
			return
		}

		header := w.Header()
		header.Set(headerLimit, strconv.Itoa(d.Limit))
		header.Set(headerRemaining, strconv.Itoa(max(d.Remaining, 0)))
		if d.Allowed {
			next.ServeHTTP(w, r)
			return
		}

		header.Set(headerRetryAfter, strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
		rl.responder(w, r).TooManyRequests("")
	})
}

func (rl *RateLimiter) responder(w http.ResponseWriter, r *http.Request) *responder.Responder {
	if rl.factory != nil {
		return rl.factory.FromRequest(w, r)
	}
	return responder.Default().FromRequest(w, r)
}

func (rl *RateLimiter) log(r *http.Request) logging.Logger {
	if rl.logger != nil {
		return logging.WithContext(rl.logger, r.Context())
	}
	return logging.FromContext(r.Context())
}
