package json

import (
	stdjson "encoding/json"
	"io"

	"github.com/creasty/defaults"
	jsoniter "github.com/json-iterator/go"
)

// api is the codec used for every envelope the library writes. It mirrors
// encoding/json so map keys are sorted and HTML is escaped.
var api = jsoniter.ConfigCompatibleWithStandardLibrary

// Number is what numbers decode into when UseNumber is set.
type Number = stdjson.Number

// RawMessage is a pre-encoded JSON value that is written verbatim.
type RawMessage = jsoniter.RawMessage

type Encoder struct {
	*jsoniter.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		Encoder: api.NewEncoder(w),
	}
}

// Encode fills `default` struct tags before encoding.
func (e *Encoder) Encode(v any) error {
	if err := setDefaults(v); err != nil {
		return err
	}
	return e.Encoder.Encode(v)
}

type Decoder struct {
	*jsoniter.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		Decoder: api.NewDecoder(r),
	}
}

// Decode fills `default` struct tags, then lets the payload override them.
func (d *Decoder) Decode(v any) error {
	if err := setDefaults(v); err != nil {
		return err
	}
	return d.Decoder.Decode(v)
}

func Marshal(v any) ([]byte, error) {
	if err := setDefaults(v); err != nil {
		return nil, err
	}
	return api.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	if err := setDefaults(v); err != nil {
		return nil, err
	}
	return api.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error {
	if err := setDefaults(v); err != nil {
		return err
	}
	return api.Unmarshal(data, v)
}

// Valid reports whether data is a syntactically valid JSON document.
func Valid(data []byte) bool {
	return api.Valid(data)
}

// setDefaults only touches pointers to structs; envelopes carry maps, slices
// and scalars that defaults.Set would reject.
func setDefaults(v any) error {
	if !isStructPtr(v) {
		return nil
	}
	return defaults.Set(v)
}
