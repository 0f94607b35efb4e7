package binding

import (
	"io"

	"github.com/surazdott/api-response/json"
)

// DecodeOptions configures how request bodies are decoded.
type DecodeOptions struct {
	useNumber             bool
	disallowUnknownFields bool
}

// Option is a decode option.
type Option func(*DecodeOptions)

// WithUseNumber decodes numbers into json.Number instead of float64 so large
// integers keep their precision.
func WithUseNumber() Option {
	return func(opts *DecodeOptions) {
		opts.useNumber = true
	}
}

// WithDisallowUnknownFields rejects bodies with fields the target does not declare.
func WithDisallowUnknownFields() Option {
	return func(opts *DecodeOptions) {
		opts.disallowUnknownFields = true
	}
}

func applyDecodeOptions(opts ...Option) *DecodeOptions {
	options := &DecodeOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

func decodeJson(r io.Reader, v any, opts ...Option) error {
	options := applyDecodeOptions(opts...)

	decoder := json.NewDecoder(r)
	if options.useNumber {
		decoder.Decoder.UseNumber()
	}
	if options.disallowUnknownFields {
		decoder.Decoder.DisallowUnknownFields()
	}

	return decoder.Decode(v)
}
