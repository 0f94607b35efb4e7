package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/surazdott/api-response/logging"
)

const (
	// TraceIDHeader is the HTTP header name for trace ID
	TraceIDHeader = "X-Trace-ID"

	maxTraceIDLength = 128
)

// TraceIDMiddleware adds a trace ID to each request.
// A well-formed X-Trace-ID request header is reused, otherwise a new UUID is
// generated. The id is echoed on the response and stored on the context where
// both the logger and the responder pick it up.
func TraceIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceIDHeader)
			if !validTraceID(traceID) {
				traceID = uuid.New().String()
			}

			w.Header().Set(TraceIDHeader, traceID)

			ctx := logging.SetTraceID(r.Context(), traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	return logging.GetTraceID(ctx)
}

// GetTraceIDFromRequest retrieves the trace ID from request context
func GetTraceIDFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	return GetTraceID(r.Context())
}

// validTraceID accepts non-empty printable ASCII ids of bounded length.
func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
