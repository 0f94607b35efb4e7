package exception

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/surazdott/api-response/http/responder"
	"github.com/surazdott/api-response/logging"
)

// HandlerFunc is an http.HandlerFunc that may return an error instead of
// writing a response.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// FallbackFunc writes a response for an error the renderer does not recognize.
type FallbackFunc func(w http.ResponseWriter, r *http.Request, err error)

type Renderer struct {
	factory  *responder.ResponderFactory
	logger   logging.Logger
	reporter Reporter
	fallback FallbackFunc
}

type RendererOption func(*Renderer)

// WithFactory renders through f instead of the default responder factory.
func WithFactory(f *responder.ResponderFactory) RendererOption {
	return func(rd *Renderer) {
		rd.factory = f
	}
}

// WithLogger logs through l instead of the request-scoped logger.
func WithLogger(l logging.Logger) RendererOption {
	return func(rd *Renderer) {
		rd.logger = l
	}
}

func WithReporter(rep Reporter) RendererOption {
	return func(rd *Renderer) {
		rd.reporter = rep
	}
}

// WithFallback replaces the server_error envelope written for unknown errors.
func WithFallback(fn FallbackFunc) RendererOption {
	return func(rd *Renderer) {
		rd.fallback = fn
	}
}

func NewRenderer(opts ...RendererOption) *Renderer {
	rd := &Renderer{}
	for _, opt := range opts {
		opt(rd)
	}
	return rd
}

// Responder returns a responder from the renderer's factory.
func (rd *Renderer) Responder(w http.ResponseWriter, r *http.Request) *responder.Responder {
	f := rd.factory
	if f == nil {
		f = responder.Default()
	}
	return f.FromRequest(w, r)
}

func (rd *Renderer) log(r *http.Request) logging.Logger {
	if rd.logger != nil {
		return logging.WithContext(rd.logger, r.Context())
	}
	return logging.FromContext(r.Context())
}

func (rd *Renderer) report(r *http.Request, err error) {
	if rd.reporter != nil {
		rd.reporter.Report(r, err)
	}
}

// Render writes the envelope for the outermost APIError or ValidationError
// in err's chain and reports true. Other errors are left untouched.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, err error) bool {
	switch e := renderable(err).(type) {
	case *ValidationError:
		rd.Responder(w, r).Write(responder.KindValidation, e.Message, e.Errors,
			responder.WithStatus(e.StatusCode()))
		return true
	case *APIError:
		rd.renderAPIError(w, r, err, e)
		return true
	}
	return false
}

// renderable walks err's chain depth first and returns the first APIError or
// ValidationError it meets, nil when there is none.
func renderable(err error) error {
	for err != nil {
		switch e := err.(type) {
		case *APIError, *ValidationError:
			return e
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				if found := renderable(inner); found != nil {
					return found
				}
			}
			return nil
		}
		err = errors.Unwrap(err)
	}
	return nil
}

func (rd *Renderer) renderAPIError(w http.ResponseWriter, r *http.Request, err error, aerr *APIError) {
	status := aerr.StatusCode()
	kind := responder.KindForStatus(status)

	if status >= http.StatusInternalServerError {
		rd.log(r).Error("api error", zap.Int("status", status), zap.Error(err))
		rd.report(r, err)
	}

	res := rd.Responder(w, r)
	message := aerr.Message
	if message == "" {
		message = res.Message(responder.MessageKeyForStatus(status))
	}

	env := responder.Envelope{
		Success: responder.IsSuccess(status),
		Message: message,
	}
	if !responder.IsEmpty(aerr.Errors) {
		env.Errors = aerr.Errors
	}
	res.Send(kind, status, env)
}

// Handle adapts h to http.HandlerFunc, rendering any error it returns. An
// error returned after h already wrote to w is logged and reported only.
func (rd *Renderer) Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tw := &trackingWriter{ResponseWriter: w}
		err := h(tw, r)
		if err == nil {
			return
		}
		if tw.written {
			rd.log(r).Error("error after response written", zap.Error(err))
			rd.report(r, err)
			return
		}
		if !rd.Render(w, r, err) {
			rd.unknown(w, r, err)
		}
	}
}

// Recover renders panics raised by next. Panicked APIError and
// ValidationError values render like returned ones; anything else goes to the
// fallback. http.ErrAbortHandler is re-panicked. When next wrote to the
// response before panicking nothing more is written; the panic is logged and
// reported.
func (rd *Renderer) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := &trackingWriter{ResponseWriter: w}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", rec)
			}

			rd.log(r).Error("http.panic.recovered",
				zap.Error(err),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Bool("response_written", tw.written),
				zap.Stack("stack"),
			)

			if tw.written {
				rd.report(r, err)
				return
			}
			if !rd.Render(w, r, err) {
				rd.unknown(w, r, err)
			}
		}()
		next.ServeHTTP(tw, r)
	})
}

func (rd *Renderer) unknown(w http.ResponseWriter, r *http.Request, err error) {
	rd.log(r).Error("unhandled error", zap.Error(err))
	rd.report(r, err)

	if rd.fallback != nil {
		rd.fallback(w, r, err)
		return
	}
	rd.Responder(w, r).ServerError("")
}

// trackingWriter records whether the header or any body bytes went out.
type trackingWriter struct {
	http.ResponseWriter
	written bool
}

func (tw *trackingWriter) WriteHeader(code int) {
	tw.written = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *trackingWriter) Write(b []byte) (int, error) {
	tw.written = true
	return tw.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (tw *trackingWriter) Unwrap() http.ResponseWriter {
	return tw.ResponseWriter
}
