package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/surazdott/api-response/http/responder"
	"github.com/surazdott/api-response/logging"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(time.Minute)
	store.now = clock.now
	return store, clock
}

func TestMemoryStoreAllowsBurstThenRefills(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := store.Allow(ctx, "k", 3, 3*time.Second)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := store.Allow(ctx, "k", 3, 3*time.Second)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Second, d.RetryAfter)

	clock.t = clock.t.Add(time.Second)
	d, err = store.Allow(ctx, "k", 3, 3*time.Second)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = store.Allow(ctx, "other", 3, 3*time.Second)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestMemoryStoreSweep(t *testing.T) {
	store, clock := newTestStore()
	_, _ = store.Allow(context.Background(), "a", 1, time.Second)
	clock.t = clock.t.Add(2 * time.Minute)
	_, _ = store.Allow(context.Background(), "b", 1, time.Second)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreZeroLimitAllows(t *testing.T) {
	store, _ := newTestStore()
	d, err := store.Allow(context.Background(), "k", 0, time.Second)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func request(path, apiKey string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}
	return req
}

func TestMiddlewareRejectsWithEnvelope(t *testing.T) {
	store, _ := newTestStore()
	rl := New(store, Config{Limit: 2, Window: time.Minute}, WithFactory(responder.NewResponderFactory()))
	h := rl.Middleware(okHandler())

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, request("/orders", "abc"))
		require.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, request("/orders", "abc"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "30", rr.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"message":"Too many requests were sent in a given amount of time."}`, rr.Body.String())

	// another client has its own bucket
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, request("/orders", "xyz"))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestMiddlewareRules(t *testing.T) {
	store, _ := newTestStore()
	rl := New(store, Config{Limit: 100, Window: time.Minute},
		WithRule("/auth", 1, time.Minute),
		WithRule("/auth/login", 2, time.Minute),
	)
	h := rl.Middleware(okHandler())

	codes := func(path string, n int) []int {
		var out []int
		for i := 0; i < n; i++ {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, request(path, ""))
			out = append(out, rr.Code)
		}
		return out
	}

	assert.Equal(t, []int{204, 204, 429}, codes("/auth/login", 3))
	assert.Equal(t, []int{204, 429}, codes("/auth/logout", 2))
	assert.Equal(t, []int{204, 204, 204}, codes("/users", 3))
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (Decision, error) {
	return Decision{}, errors.New("store down")
}

func TestMiddlewareFailsOpen(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rl := New(failingStore{}, Config{}, WithLogger(logging.FromZap(zap.New(core))))

	rr := httptest.NewRecorder()
	rl.Middleware(okHandler()).ServeHTTP(rr, request("/", ""))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 1, logs.FilterMessage("rate limit store failed").Len())
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "ip:10.0.0.7", ClientKey(req))

	req.Header.Set(APIKeyHeader, " secret ")
	assert.Equal(t, "key:secret", ClientKey(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ""
	assert.Equal(t, "ip:anonymous", ClientKey(req))
}

func TestNewAppliesDefaults(t *testing.T) {
	rl := New(NewMemoryStore(0), Config{})
	assert.Equal(t, 60, rl.limit)
	assert.Equal(t, time.Minute, rl.window)
}
