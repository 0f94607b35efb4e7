package responder

import (
	"net/url"
	"reflect"

	"github.com/surazdott/api-response/pagination"
)

// NewEnvelope builds the body for kind. The payload lands in data or errors
// according to the kind; kinds that carry neither ignore it.
func NewEnvelope(kind Kind, status int, message string, payload any) Envelope {
	env := Envelope{
		Success: IsSuccess(status),
		Message: message,
	}

	switch kind.info().field {
	case fieldData:
		if !IsEmpty(payload) {
			env.Data = payload
		}
	case fieldDataAlways:
		env.Data = orEmptyList(payload)
	case fieldErrors:
		if !IsEmpty(payload) {
			env.Errors = payload
		}
	}
	return env
}

// NewPaginatedEnvelope builds a paginated body whose links are derived from base.
func NewPaginatedEnvelope(status int, message string, page pagination.Page, base *url.URL) Envelope {
	env := NewEnvelope(KindPaginate, status, message, page.Items)
	links := pagination.LinksFor(base, page)
	meta := pagination.MetaFor(page)
	env.Links = &links
	env.Meta = &meta
	return env
}

// IsEmpty reports whether v counts as an absent payload: nil, a nil
// reference, a zero-length string, slice, map or array, false, or numeric
// zero. Structs are never empty.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return rv.IsZero()
	}
	return false
}

func orEmptyList(v any) any {
	if isNil(v) {
		return []any{}
	}
	return v
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
