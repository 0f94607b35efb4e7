package json

import "reflect"

type EncoderInterface interface {
	Encode(any) error
}

type DecoderInterface interface {
	Decode(any) error
}

var (
	_ EncoderInterface = (*Encoder)(nil)
	_ DecoderInterface = (*Decoder)(nil)
)

func isStructPtr(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct
}
