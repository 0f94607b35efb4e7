package responder

import (
	"net/http"

	"golang.org/x/text/language"
)

// Option adjusts a single response.
type Option func(*settings)

type settings struct {
	status   int
	headers  http.Header
	traceID  string
	language language.Tag
	pinned   bool
}

// WithStatus overrides the kind's default status. Success is always derived
// from the final status.
func WithStatus(status int) Option {
	return func(s *settings) {
		if status > 0 {
			s.status = status
		}
	}
}

// WithHeader adds a response header.
func WithHeader(key, value string) Option {
	return func(s *settings) {
		s.headers.Add(key, value)
	}
}

// WithTraceID sets the X-Trace-ID header, overriding the request's trace id.
func WithTraceID(id string) Option {
	return func(s *settings) {
		s.traceID = id
	}
}

// WithLanguage picks the language of default messages, ignoring Accept-Language.
func WithLanguage(tag language.Tag) Option {
	return func(s *settings) {
		s.language = tag
		s.pinned = true
	}
}

func newSettings(kind Kind, opts ...Option) *settings {
	s := &settings{
		status:  kind.Status(),
		headers: make(http.Header),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
