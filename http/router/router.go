// Package router wires the envelope middleware stack onto a chi router.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/surazdott/api-response/exception"
	"github.com/surazdott/api-response/http/middleware"
	"github.com/surazdott/api-response/logging"
)

type options struct {
	logger      logging.Logger
	middlewares []func(http.Handler) http.Handler
}

type Option func(*options)

// WithLogger sets the logger used for request logging.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMiddleware appends middlewares after the built-in stack.
func WithMiddleware(mws ...func(http.Handler) http.Handler) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, mws...)
	}
}

// New returns a chi router that assigns trace ids, logs requests, renders
// panics through rd and answers unknown routes and methods with envelopes.
func New(rd *exception.Renderer, opts ...Option) chi.Router {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.Global()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.TraceIDMiddleware(),
		logging.HTTPMiddleware(o.logger),
		rd.Recover,
	)
	if len(o.middlewares) > 0 {
		r.Use(o.middlewares...)
	}

	Install(r, rd)
	return r
}

// Install sets the not_found and not_allowed envelopes as r's fallback handlers.
func Install(r chi.Router, rd *exception.Renderer) {
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		rd.Responder(w, req).NotFound("")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		rd.Responder(w, req).NotAllowed("")
	})
}

// Handle registers an error-returning handler for method and pattern.
func Handle(r chi.Router, rd *exception.Renderer, method, pattern string, h exception.HandlerFunc) {
	r.Method(method, pattern, rd.Handle(h))
}
