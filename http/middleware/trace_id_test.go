package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surazdott/api-response/logging"
)

func serveTrace(t *testing.T, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var seen string
	handler := TraceIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTraceIDFromRequest(r)
		assert.Equal(t, seen, logging.GetTraceID(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(TraceIDHeader, header)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr, seen
}

func TestTraceIDMiddlewareReusesHeader(t *testing.T) {
	rr, seen := serveTrace(t, "client-trace-1")

	assert.Equal(t, "client-trace-1", seen)
	assert.Equal(t, "client-trace-1", rr.Header().Get(TraceIDHeader))
}

func TestTraceIDMiddlewareGenerates(t *testing.T) {
	rr, seen := serveTrace(t, "")

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rr.Header().Get(TraceIDHeader))
}

func TestTraceIDMiddlewareRejectsMalformedHeader(t *testing.T) {
	for _, bad := range []string{"has space", strings.Repeat("a", maxTraceIDLength+1), "tab\tid"} {
		_, seen := serveTrace(t, bad)
		assert.NotEqual(t, bad, seen)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err, "header %q", bad)
	}
}

func TestGetTraceIDFromNilRequest(t *testing.T) {
	assert.Empty(t, GetTraceIDFromRequest(nil))
}
