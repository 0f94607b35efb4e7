package responder

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/surazdott/api-response/http/middleware"
	"github.com/surazdott/api-response/json"
	"github.com/surazdott/api-response/locale"
	"github.com/surazdott/api-response/pagination"
)

const (
	contentTypeJSON = "application/json"
	traceIDHeader   = middleware.TraceIDHeader
)

var encodeFailedBody = []byte(`{"success":false,"message":"encode failed"}`)

// ============================================
// Factory
// ============================================

type ResponderFactory struct {
	panicFn     PanicFn
	messages    *locale.Table
	observers   []Observer
	traceHeader bool
	traceIDFn   func(*http.Request) string
}

// FactoryOption configures a ResponderFactory.
type FactoryOption func(*ResponderFactory)

// WithPanicFn sets the handler for encode and write failures.
func WithPanicFn(panicFn PanicFn) FactoryOption {
	return func(f *ResponderFactory) {
		if panicFn != nil {
			f.panicFn = panicFn
		}
	}
}

// WithMessages sets the table default messages are resolved from.
func WithMessages(messages *locale.Table) FactoryOption {
	return func(f *ResponderFactory) {
		if messages != nil {
			f.messages = messages
		}
	}
}

// WithObserver registers an observer for every written envelope.
func WithObserver(o Observer) FactoryOption {
	return func(f *ResponderFactory) {
		if o != nil {
			f.observers = append(f.observers, o)
		}
	}
}

// WithTraceHeader toggles echoing the request trace id as X-Trace-ID.
func WithTraceHeader(enabled bool) FactoryOption {
	return func(f *ResponderFactory) {
		f.traceHeader = enabled
	}
}

// WithTraceIDFunc replaces how the trace id is read from a request.
func WithTraceIDFunc(fn func(*http.Request) string) FactoryOption {
	return func(f *ResponderFactory) {
		if fn != nil {
			f.traceIDFn = fn
		}
	}
}

// NewResponderFactory creates a factory. Without options it panics on encode
// failures, uses the bundled English messages and echoes trace ids.
func NewResponderFactory(opts ...FactoryOption) *ResponderFactory {
	f := &ResponderFactory{
		panicFn:     DefaultPanicFn,
		messages:    locale.Default(),
		traceHeader: true,
		traceIDFn:   middleware.GetTraceIDFromRequest,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Messages returns the table used for default messages.
func (f *ResponderFactory) Messages() *locale.Table {
	return f.messages
}

func (f *ResponderFactory) FromRequest(w http.ResponseWriter, r *http.Request) *Responder {
	return &Responder{
		w:       w,
		r:       r,
		factory: f,
		panicFn: f.panicFn,
	}
}

// Message resolves the default message for key in the language of r.
func (f *ResponderFactory) Message(r *http.Request, key locale.Key, opts ...Option) string {
	s := newSettings(KindResponse, opts...)
	return f.message(r, key, s)
}

func (f *ResponderFactory) message(r *http.Request, key locale.Key, s *settings) string {
	if s.pinned {
		return f.messages.Message(s.language, key)
	}
	return f.messages.ForRequest(r, key)
}

// Build returns the status and envelope for kind without writing anything.
// r only supplies the language for default messages and may be nil.
func (f *ResponderFactory) Build(r *http.Request, kind Kind, message string, payload any, opts ...Option) (int, Envelope) {
	s := newSettings(kind, opts...)
	return s.status, f.build(r, kind, message, payload, s)
}

func (f *ResponderFactory) build(r *http.Request, kind Kind, message string, payload any, s *settings) Envelope {
	if message == "" {
		key := kind.MessageKey()
		if kind == KindResponse {
			key = MessageKeyForStatus(s.status)
		}
		message = f.message(r, key, s)
	}
	return NewEnvelope(kind, s.status, message, payload)
}

func (f *ResponderFactory) notify(kind Kind, status int) {
	for _, o := range f.observers {
		o.Observe(kind, status)
	}
}

var (
	defaultFactory   *ResponderFactory
	defaultFactoryMu sync.RWMutex
	defaultOnce      sync.Once
)

// Default returns the factory behind the package-level functions.
func Default() *ResponderFactory {
	defaultOnce.Do(func() {
		defaultFactoryMu.Lock()
		if defaultFactory == nil {
			defaultFactory = NewResponderFactory()
		}
		defaultFactoryMu.Unlock()
	})

	defaultFactoryMu.RLock()
	defer defaultFactoryMu.RUnlock()
	return defaultFactory
}

// SetDefault replaces the factory behind the package-level functions.
func SetDefault(f *ResponderFactory) {
	if f == nil {
		return
	}
	defaultOnce.Do(func() {})
	defaultFactoryMu.Lock()
	defer defaultFactoryMu.Unlock()
	defaultFactory = f
}

// ============================================
// Responder Instance
// ============================================

type Responder struct {
	w       http.ResponseWriter
	r       *http.Request
	factory *ResponderFactory
	panicFn PanicFn
}

// New creates a responder backed by the default factory. A nil panicFn panics.
func New(w http.ResponseWriter, r *http.Request, panicFn PanicFn) *Responder {
	res := Default().FromRequest(w, r)
	if panicFn != nil {
		res.panicFn = panicFn
	}
	return res
}

// Request returns the request the responder answers.
func (r *Responder) Request() *http.Request {
	return r.r
}

// Message resolves the default message for key in the request's language.
func (r *Responder) Message(key locale.Key, opts ...Option) string {
	return r.factory.Message(r.r, key, opts...)
}

func (r *Responder) writeRaw(status int, payload []byte, s *settings) {
	header := r.w.Header()
	for key, values := range s.headers {
		for _, v := range values {
			header.Add(key, v)
		}
	}
	if traceID := r.traceID(s); traceID != "" {
		header.Set(traceIDHeader, traceID)
	}
	header.Set("Content-Type", contentTypeJSON)
	r.w.WriteHeader(status)
	if _, err := r.w.Write(payload); err != nil {
		r.panicFn(r.w, r.r, err)
	}
}

func (r *Responder) writeJson(kind Kind, s *settings, env *Envelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		r.writeRaw(http.StatusInternalServerError, encodeFailedBody, s)
		r.factory.notify(kind, http.StatusInternalServerError)
		r.panicFn(r.w, r.r, err)
		return
	}
	r.writeRaw(s.status, raw, s)
	r.factory.notify(kind, s.status)
}

func (r *Responder) traceID(s *settings) string {
	if s.traceID != "" {
		return s.traceID
	}
	if !r.factory.traceHeader || r.r == nil {
		return ""
	}
	return r.factory.traceIDFn(r.r)
}

// Write sends an envelope of the given kind. An empty message is replaced by
// the kind's localized default.
func (r *Responder) Write(kind Kind, message string, payload any, opts ...Option) {
	s := newSettings(kind, opts...)
	env := r.factory.build(r.r, kind, message, payload, s)
	r.writeJson(kind, s, &env)
}

// Send writes a prebuilt envelope. Observers see it as kind.
func (r *Responder) Send(kind Kind, status int, env Envelope, opts ...Option) {
	s := newSettings(kind, append([]Option{WithStatus(status)}, opts...)...)
	r.writeJson(kind, s, &env)
}

// WriteList sends a paginated envelope with links built from the request URL.
func (r *Responder) WriteList(message string, page pagination.Page, opts ...Option) {
	s := newSettings(KindPaginate, opts...)
	if message == "" {
		message = r.factory.message(r.r, KindPaginate.MessageKey(), s)
	}
	env := NewPaginatedEnvelope(s.status, message, page, requestURL(r.r))
	r.writeJson(KindPaginate, s, &env)
}

// requestURL reconstructs the absolute URL of r for pagination links.
func requestURL(r *http.Request) *url.URL {
	if r == nil || r.URL == nil {
		return &url.URL{}
	}
	u := *r.URL
	if u.Host == "" && r.Host != "" {
		u.Host = r.Host
		u.Scheme = "http"
		if r.TLS != nil {
			u.Scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			u.Scheme = proto
		}
	}
	return &u
}

// ============================================
// Global Convenience Functions
// ============================================

// Write sends an envelope of the given kind using the default factory.
func Write(w http.ResponseWriter, r *http.Request, kind Kind, message string, payload any, opts ...Option) {
	Default().FromRequest(w, r).Write(kind, message, payload, opts...)
}

// Respond sends a generic envelope; data is included only when non-empty.
func Respond(w http.ResponseWriter, r *http.Request, message string, data any, status int, opts ...Option) {
	Default().FromRequest(w, r).Respond(message, data, status, opts...)
}

// Success responds with 200 OK and data.
func Success(w http.ResponseWriter, r *http.Request, message string, data any, opts ...Option) {
	Default().FromRequest(w, r).Success(message, data, opts...)
}

// Created responds with 201 Created and data.
func Created(w http.ResponseWriter, r *http.Request, message string, data any, opts ...Option) {
	Default().FromRequest(w, r).Created(message, data, opts...)
}

// Paginate responds with 200 OK, the page items, links and meta.
func Paginate(w http.ResponseWriter, r *http.Request, message string, page pagination.Page, opts ...Option) {
	Default().FromRequest(w, r).Paginate(message, page, opts...)
}

// Validation responds with 422 Unprocessable Entity and the validation errors.
func Validation(w http.ResponseWriter, r *http.Request, message string, errors any, opts ...Option) {
	Default().FromRequest(w, r).Validation(message, errors, opts...)
}

// Unprocessable responds with 422 Unprocessable Entity.
func Unprocessable(w http.ResponseWriter, r *http.Request, message string, errors any, opts ...Option) {
	Default().FromRequest(w, r).Unprocessable(message, errors, opts...)
}

// Error responds with 400 Bad Request unless WithStatus says otherwise.
func Error(w http.ResponseWriter, r *http.Request, message string, errors any, opts ...Option) {
	Default().FromRequest(w, r).Error(message, errors, opts...)
}

// Unauthorized responds with 401 Unauthorized.
func Unauthorized(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	Default().FromRequest(w, r).Unauthorized(message, opts...)
}

// Forbidden responds with 403 Forbidden.
func Forbidden(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	Default().FromRequest(w, r).Forbidden(message, opts...)
}

// NotFound responds with 404 Not Found.
func NotFound(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	Default().FromRequest(w, r).NotFound(message, opts...)
}

// NotAllowed responds with 405 Method Not Allowed.
func NotAllowed(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	Default().FromRequest(w, r).NotAllowed(message, opts...)
}

// Conflict responds with 409 Conflict.
func Conflict(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	Default().FromRequest(w, r).Conflict(message, opts...)
}

// TooManyRequests responds with 429 Too Many Requests.
func TooManyRequests(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	Default().FromRequest(w, r).TooManyRequests(message, opts...)
}

// ServerError responds with 500 Internal Server Error.
func ServerError(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	Default().FromRequest(w, r).ServerError(message, opts...)
}

// ServiceUnavailable responds with 503 Service Unavailable.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	Default().FromRequest(w, r).ServiceUnavailable(message, opts...)
}
