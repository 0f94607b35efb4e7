// Package reporting forwards server-side failures to Sentry.
package reporting

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/surazdott/api-response/exception"
	"github.com/surazdott/api-response/logging"
)

const defaultFlushTimeout = 2 * time.Second

type Config struct {
	Enabled     bool    `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	DSN         string  `mapstructure:"dsn" json:"dsn" yaml:"dsn"`
	Environment string  `mapstructure:"environment" json:"environment" yaml:"environment"`
	Release     string  `mapstructure:"release" json:"release" yaml:"release"`
	Debug       bool    `mapstructure:"debug" json:"debug" yaml:"debug"`
	SampleRate  float64 `mapstructure:"sample-rate" json:"sampleRate" yaml:"sample-rate" default:"1"`
}

// ClientOption adjusts the Sentry client options before the client is built.
type ClientOption func(*sentry.ClientOptions)

// SentryReporter implements exception.Reporter with its own Sentry hub, so it
// never touches the global sentry client.
type SentryReporter struct {
	hub          *sentry.Hub
	flushTimeout time.Duration
}

// NewSentryReporter builds a reporter. A disabled config yields a reporter
// that drops everything.
func NewSentryReporter(cfg Config, opts ...ClientOption) (*SentryReporter, error) {
	if !cfg.Enabled {
		return &SentryReporter{}, nil
	}

	options := sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		Debug:            cfg.Debug,
		SampleRate:       cfg.SampleRate,
		AttachStacktrace: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	client, err := sentry.NewClient(options)
	if err != nil {
		return nil, fmt.Errorf("sentry initialization failed: %w", err)
	}

	return &SentryReporter{
		hub:          sentry.NewHub(client, sentry.NewScope()),
		flushTimeout: defaultFlushTimeout,
	}, nil
}

// Enabled reports whether events are sent anywhere.
func (s *SentryReporter) Enabled() bool {
	return s != nil && s.hub != nil
}

// Report captures err with the request and trace id attached to the event.
func (s *SentryReporter) Report(r *http.Request, err error) {
	if !s.Enabled() || err == nil {
		return
	}

	hub := s.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		if r != nil {
			scope.SetRequest(r)
			if traceID := logging.GetTraceID(r.Context()); traceID != "" {
				scope.SetTag("trace_id", traceID)
			}
		}
		hub.CaptureException(err)
	})
}

// Flush waits up to two seconds for buffered events to be sent.
func (s *SentryReporter) Flush() bool {
	if !s.Enabled() {
		return true
	}
	return s.hub.Flush(s.flushTimeout)
}

var _ exception.Reporter = (*SentryReporter)(nil)
