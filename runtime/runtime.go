// Package runtime assembles the envelope stack from a config.Config: logger,
// message table, metrics, error reporting, responder factory, exception
// renderer and router.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	redis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/surazdott/api-response/config"
	"github.com/surazdott/api-response/exception"
	"github.com/surazdott/api-response/http/ratelimit"
	"github.com/surazdott/api-response/http/responder"
	"github.com/surazdott/api-response/http/router"
	"github.com/surazdott/api-response/locale"
	"github.com/surazdott/api-response/logging"
	"github.com/surazdott/api-response/metrics"
	"github.com/surazdott/api-response/redis_client"
	"github.com/surazdott/api-response/reporting"
)

// Runtime owns the wired components. Build it once at startup and call
// Shutdown on exit.
type Runtime struct {
	cfg *config.Config

	logger   logging.Logger
	messages *locale.Table
	registry *prometheus.Registry
	metrics  *metrics.ResponseMetrics
	reporter *reporting.SentryReporter
	factory  *responder.ResponderFactory
	renderer *exception.Renderer
	limiter  *ratelimit.RateLimiter
	redis    *redis.Client
	router   chi.Router

	stopSweep context.CancelFunc
}

type options struct {
	logger      logging.Logger
	registry    *prometheus.Registry
	sentryOpts  []reporting.ClientOption
	routerOpts  []router.Option
	limitStore  ratelimit.LimitStore
	keepDefault bool
}

type Option func(*options)

// WithLogger uses l instead of building a logger from cfg.Logging.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithSentryOptions adjusts the Sentry client before it is built.
func WithSentryOptions(opts ...reporting.ClientOption) Option {
	return func(o *options) {
		o.sentryOpts = append(o.sentryOpts, opts...)
	}
}

// WithRouterOptions passes extra options to router.New.
func WithRouterOptions(opts ...router.Option) Option {
	return func(o *options) {
		o.routerOpts = append(o.routerOpts, opts...)
	}
}

// WithLimitStore counts rate limited requests in store instead of the one
// named by cfg.RateLimit.Store.
func WithLimitStore(store ratelimit.LimitStore) Option {
	return func(o *options) {
		o.limitStore = store
	}
}

// WithoutGlobals leaves the package-level responder and logger untouched.
func WithoutGlobals() Option {
	return func(o *options) {
		o.keepDefault = true
	}
}

// New wires every component described by cfg. Unless WithoutGlobals is given
// the responder factory and logger also become the package-level defaults.
// The logger is closed when New fails, including one passed by WithLogger.
func New(cfg *config.Config, opts ...Option) (_ *Runtime, err error) {
	if cfg == nil {
		return nil, errors.New("runtime: nil config")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	rt := &Runtime{cfg: cfg, logger: o.logger}
	if rt.logger == nil {
		rt.logger = logging.NewLogger(cfg.Logging)
	}
	defer func() {
		if err != nil {
			rt.release()
		}
	}()

	if err := rt.initMessages(); err != nil {
		return nil, err
	}

	if cfg.Metrics.Enabled {
		rt.registry = o.registry
		if rt.registry == nil {
			rt.registry = prometheus.NewRegistry()
		}
		rt.metrics = metrics.NewResponseMetrics(rt.registry, cfg.Metrics.Namespace)
	}

	reporter, err := reporting.NewSentryReporter(cfg.Sentry, o.sentryOpts...)
	if err != nil {
		return nil, err
	}
	rt.reporter = reporter

	rt.factory = rt.newFactory()

	rendererOpts := []exception.RendererOption{
		exception.WithFactory(rt.factory),
		exception.WithLogger(rt.logger),
	}
	if rt.reporter.Enabled() {
		rendererOpts = append(rendererOpts, exception.WithReporter(rt.reporter))
	}
	rt.renderer = exception.NewRenderer(rendererOpts...)

	routerOpts := []router.Option{router.WithLogger(rt.logger)}
	if cfg.RateLimit.Enabled {
		if err := rt.initRateLimit(o.limitStore); err != nil {
			return nil, err
		}
		routerOpts = append(routerOpts, router.WithMiddleware(rt.limiter.Middleware))
	}
	rt.router = router.New(rt.renderer, append(routerOpts, o.routerOpts...)...)
	if rt.registry != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		rt.router.Method(http.MethodGet, path, metrics.Handler(rt.registry))
	}

	if !o.keepDefault {
		responder.SetDefault(rt.factory)
		logging.SetGlobal(rt.logger)
	}

	rt.logger.Info("api response runtime ready",
		zap.Strings("languages", languageNames(rt.messages.Languages())),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("sentry", rt.reporter.Enabled()),
		zap.Bool("rate_limit", rt.limiter != nil),
	)
	return rt, nil
}

func (rt *Runtime) initMessages() error {
	fallback, err := language.Parse(rt.cfg.Locale.Default)
	if err != nil {
		return fmt.Errorf("locale default %q: %w", rt.cfg.Locale.Default, err)
	}

	messages, err := locale.NewBundled(fallback)
	if err != nil {
		return err
	}
	if rt.cfg.Locale.Path != "" {
		if err := messages.LoadDir(rt.cfg.Locale.Path); err != nil {
			return fmt.Errorf("load locale path: %w", err)
		}
	}
	rt.messages = messages
	return nil
}

const sweepInterval = time.Minute

func (rt *Runtime) initRateLimit(store ratelimit.LimitStore) error {
	if store == nil {
		switch rt.cfg.RateLimit.Store {
		case "", "memory":
			mem := ratelimit.NewMemoryStore(0)
			ctx, cancel := context.WithCancel(context.Background())
			rt.stopSweep = cancel
			go sweep(ctx, mem)
			store = mem
		case "redis":
			ctx, cancel := context.WithTimeout(context.Background(), rt.cfg.Redis.DialTimeout+time.Second)
			defer cancel()
			client, err := redis_client.NewRedis(ctx, rt.cfg.Redis, rt.logger)
			if err != nil {
				return err
			}
			rt.redis = client
			store = redis_client.NewRateLimitStore(client, rt.cfg.Redis.KeyPrefix)
		default:
			return fmt.Errorf("unknown rate limit store %q", rt.cfg.RateLimit.Store)
		}
	}

	rt.limiter = ratelimit.New(store, rt.cfg.RateLimit,
		ratelimit.WithFactory(rt.factory),
		ratelimit.WithLogger(rt.logger),
	)
	return nil
}

// release undoes the parts of New that already ran.
func (rt *Runtime) release() {
	if rt.stopSweep != nil {
		rt.stopSweep()
	}
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	_ = rt.logger.Close()
}

func sweep(ctx context.Context, store *ratelimit.MemoryStore) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Sweep()
		}
	}
}

func (rt *Runtime) newFactory() *responder.ResponderFactory {
	opts := []responder.FactoryOption{
		responder.WithMessages(rt.messages),
		responder.WithTraceHeader(!rt.cfg.Responder.DisableTraceHeader),
		responder.WithPanicFn(rt.writeFailed),
	}
	if rt.metrics != nil {
		opts = append(opts, responder.WithObserver(rt.metrics))
	}
	return responder.NewResponderFactory(opts...)
}

// writeFailed logs and reports envelopes that could not be encoded or written
// instead of panicking inside a request.
func (rt *Runtime) writeFailed(_ http.ResponseWriter, r *http.Request, err error) {
	logging.WithContext(rt.logger, r.Context()).Error("envelope write failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	rt.reporter.Report(r, err)
}

func (rt *Runtime) Config() *config.Config               { return rt.cfg }
func (rt *Runtime) Logger() logging.Logger               { return rt.logger }
func (rt *Runtime) Messages() *locale.Table              { return rt.messages }
func (rt *Runtime) Factory() *responder.ResponderFactory { return rt.factory }
func (rt *Runtime) Renderer() *exception.Renderer        { return rt.renderer }
func (rt *Runtime) Router() chi.Router                   { return rt.router }
func (rt *Runtime) Reporter() *reporting.SentryReporter  { return rt.reporter }

// Limiter returns the rate limiter, nil when rate limiting is disabled.
func (rt *Runtime) Limiter() *ratelimit.RateLimiter { return rt.limiter }

// Registry returns the metrics registry, nil when metrics are disabled.
func (rt *Runtime) Registry() *prometheus.Registry { return rt.registry }

// Shutdown flushes pending Sentry events and closes the logger. It gives up
// waiting when ctx is done.
func (rt *Runtime) Shutdown(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		var errs []error
		if rt.stopSweep != nil {
			rt.stopSweep()
		}
		if rt.redis != nil {
			if err := rt.redis.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close redis: %w", err))
			}
		}
		if !rt.reporter.Flush() {
			errs = append(errs, errors.New("sentry flush timed out"))
		}
		rt.logger.Info("api response runtime stopped")
		if err := rt.logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close logger: %w", err))
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown canceled: %w", ctx.Err())
	}
}

func languageNames(tags []language.Tag) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.String()
	}
	return names
}
