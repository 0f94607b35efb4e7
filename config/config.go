// Package config loads library settings from YAML files, the environment and
// struct defaults.
package config

import (
	"github.com/surazdott/api-response/http/ratelimit"
	"github.com/surazdott/api-response/logging"
	"github.com/surazdott/api-response/redis_client"
	"github.com/surazdott/api-response/reporting"
)

type Config struct {
	Locale    LocaleConfig     `mapstructure:"locale" yaml:"locale"`
	Logging   logging.Config   `mapstructure:"logging" yaml:"logging"`
	Responder ResponderConfig  `mapstructure:"responder" yaml:"responder"`
	Metrics   MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
	Sentry    reporting.Config `mapstructure:"sentry" yaml:"sentry"`
	RateLimit ratelimit.Config `mapstructure:"rate-limit" yaml:"rate-limit"`
	// Redis is only dialed when RateLimit.Store is "redis".
	Redis redis_client.Config `mapstructure:"redis" yaml:"redis"`
}

type LocaleConfig struct {
	// Default is the fallback language, a BCP 47 tag.
	Default string `mapstructure:"default" yaml:"default" default:"en"`
	// Path is a directory of <language>.yaml files loaded over the bundled messages.
	Path string `mapstructure:"path" yaml:"path"`
}

type ResponderConfig struct {
	// DisableTraceHeader stops echoing the request trace id as X-Trace-ID.
	DisableTraceHeader bool `mapstructure:"disable-trace-header" yaml:"disable-trace-header"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
	// Path is where the router serves the Prometheus scrape endpoint.
	Path string `mapstructure:"path" yaml:"path" default:"/metrics"`
}

type Options struct {
	// BasePath is the directory searched for config files.
	BasePath string
	// FileName is the base name; <name>.local, <name>.<mode> and
	// <name>.<mode>.local overlays are merged in that order.
	FileName string
	FileType string
	// EnvPrefix namespaces environment overrides, e.g. API_LOGGING_LEVEL.
	EnvPrefix string
}

func DefaultOptions() Options {
	return Options{
		BasePath:  "config",
		FileName:  "api-response",
		FileType:  "yaml",
		EnvPrefix: "API",
	}
}

func (o *Options) applyDefaults() {
	d := DefaultOptions()
	if o.BasePath == "" {
		o.BasePath = d.BasePath
	}
	if o.FileName == "" {
		o.FileName = d.FileName
	}
	if o.FileType == "" {
		o.FileType = d.FileType
	}
}
