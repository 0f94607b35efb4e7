// Package testing has helpers for asserting on envelopes in handler tests.
package testing

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/surazdott/api-response/json"
	"github.com/surazdott/api-response/logging"
	"github.com/surazdott/api-response/pagination"
)

// Envelope is the decoded form of a response body. Data and Errors stay raw
// so callers can decode them into their own types.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data,omitempty"`
	Errors  json.RawMessage   `json:"errors,omitempty"`
	Links   *pagination.Links `json:"links,omitempty"`
	Meta    *pagination.Meta  `json:"meta,omitempty"`

	raw map[string]json.RawMessage
}

// Has reports whether field was present in the body.
func (e *Envelope) Has(field string) bool {
	_, ok := e.raw[field]
	return ok
}

// DecodeData unmarshals the data member into v.
func (e *Envelope) DecodeData(t testing.TB, v any) {
	t.Helper()
	require.True(t, e.Has("data"), "envelope has no data")
	require.NoError(t, json.Unmarshal(e.Data, v))
}

// DecodeErrors unmarshals the errors member into v.
func (e *Envelope) DecodeErrors(t testing.TB, v any) {
	t.Helper()
	require.True(t, e.Has("errors"), "envelope has no errors")
	require.NoError(t, json.Unmarshal(e.Errors, v))
}

// DecodeEnvelope parses body and fails the test when it is not an envelope.
func DecodeEnvelope(t testing.TB, body []byte) *Envelope {
	t.Helper()

	env := &Envelope{}
	require.NoError(t, json.Unmarshal(body, env), "body: %s", body)
	require.NoError(t, json.Unmarshal(body, &env.raw))
	require.Contains(t, env.raw, "success", "body: %s", body)
	require.Contains(t, env.raw, "message", "body: %s", body)
	return env
}

// AssertEnvelope checks the status code, content type and the success and
// message members of a recorded response, and returns the decoded envelope.
func AssertEnvelope(t testing.TB, rr *httptest.ResponseRecorder, status int, success bool, message string) *Envelope {
	t.Helper()

	assert.Equal(t, status, rr.Code, "status")
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	env := DecodeEnvelope(t, rr.Body.Bytes())
	assert.Equal(t, success, env.Success, "success")
	if message != "" {
		assert.Equal(t, message, env.Message, "message")
	}
	return env
}

// Record serves req on h and returns the recorder.
func Record(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// NewJSONRequest builds a request with body encoded as JSON. A nil body sends
// no body at all.
func NewJSONRequest(t testing.TB, method, target string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req
}

// HTTPTestClient runs a handler behind a real listener.
type HTTPTestClient struct {
	server *httptest.Server
	client *http.Client
}

func NewHTTPTestClient(handler http.Handler) *HTTPTestClient {
	server := httptest.NewServer(handler)
	return &HTTPTestClient{
		server: server,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Do sends a request and returns the response with its body already read.
func (c *HTTPTestClient) Do(method, path string, body any, headers map[string]string) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	return resp, respBody, nil
}

func (c *HTTPTestClient) Get(path string, headers map[string]string) (*http.Response, []byte, error) {
	return c.Do(http.MethodGet, path, nil, headers)
}

func (c *HTTPTestClient) Post(path string, body any, headers map[string]string) (*http.Response, []byte, error) {
	return c.Do(http.MethodPost, path, body, headers)
}

func (c *HTTPTestClient) Put(path string, body any, headers map[string]string) (*http.Response, []byte, error) {
	return c.Do(http.MethodPut, path, body, headers)
}

func (c *HTTPTestClient) Delete(path string, headers map[string]string) (*http.Response, []byte, error) {
	return c.Do(http.MethodDelete, path, nil, headers)
}

// URL returns the base URL of the test server.
func (c *HTTPTestClient) URL() string {
	return c.server.URL
}

func (c *HTTPTestClient) Close() {
	if c.server != nil {
		c.server.Close()
	}
}

// NewObservedLogger returns a logger that records entries at or above level.
func NewObservedLogger(level zapcore.Level) (logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return logging.FromZap(zap.New(core)), logs
}
