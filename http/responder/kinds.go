package responder

import (
	"net/http"

	"github.com/surazdott/api-response/locale"
)

// Kind names a response convention: its default status, default message and
// which payload field it carries.
type Kind string

const (
	KindResponse           Kind = "response"
	KindSuccess            Kind = "success"
	KindCreated            Kind = "created"
	KindPaginate           Kind = "paginate"
	KindValidation         Kind = "validation"
	KindUnprocessable      Kind = "unprocessable"
	KindError              Kind = "error"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindNotAllowed         Kind = "not_allowed"
	KindConflict           Kind = "conflict"
	KindTooManyRequests    Kind = "too_many_requests"
	KindServerError        Kind = "server_error"
	KindServiceUnavailable Kind = "service_unavailable"
)

type payloadField int

const (
	// fieldNone writes success and message only.
	fieldNone payloadField = iota
	// fieldData writes data when the payload is non-empty.
	fieldData
	// fieldDataAlways writes data even when empty; nil becomes [].
	fieldDataAlways
	// fieldErrors writes errors when the payload is non-empty.
	fieldErrors
)

type kindInfo struct {
	status int
	key    locale.Key
	field  payloadField
}

var kinds = map[Kind]kindInfo{
	KindResponse:           {http.StatusOK, locale.KeySuccess, fieldData},
	KindSuccess:            {http.StatusOK, locale.KeySuccess, fieldDataAlways},
	KindCreated:            {http.StatusCreated, locale.KeyCreated, fieldDataAlways},
	KindPaginate:           {http.StatusOK, locale.KeySuccess, fieldDataAlways},
	KindValidation:         {http.StatusUnprocessableEntity, locale.KeyValidation, fieldErrors},
	KindUnprocessable:      {http.StatusUnprocessableEntity, locale.KeyUnprocessable, fieldErrors},
	KindError:              {http.StatusBadRequest, locale.KeyError, fieldErrors},
	KindUnauthorized:       {http.StatusUnauthorized, locale.KeyUnauthorized, fieldNone},
	KindForbidden:          {http.StatusForbidden, locale.KeyForbidden, fieldNone},
	KindNotFound:           {http.StatusNotFound, locale.KeyNotFound, fieldNone},
	KindNotAllowed:         {http.StatusMethodNotAllowed, locale.KeyNotAllowed, fieldNone},
	KindConflict:           {http.StatusConflict, locale.KeyConflict, fieldNone},
	KindTooManyRequests:    {http.StatusTooManyRequests, locale.KeyTooManyRequests, fieldNone},
	KindServerError:        {http.StatusInternalServerError, locale.KeyServerError, fieldNone},
	KindServiceUnavailable: {http.StatusServiceUnavailable, locale.KeyServiceUnavailable, fieldNone},
}

func (k Kind) info() kindInfo {
	if s, ok := kinds[k]; ok {
		return s
	}
	return kinds[KindResponse]
}

// Status returns the default HTTP status for k.
func (k Kind) Status() int {
	return k.info().status
}

// MessageKey returns the locale key used when no message is given.
func (k Kind) MessageKey() locale.Key {
	return k.info().key
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Kinds returns every known kind.
func Kinds() []Kind {
	return []Kind{
		KindResponse, KindSuccess, KindCreated, KindPaginate,
		KindValidation, KindUnprocessable, KindError,
		KindUnauthorized, KindForbidden, KindNotFound, KindNotAllowed,
		KindConflict, KindTooManyRequests, KindServerError, KindServiceUnavailable,
	}
}

// KindForStatus maps an arbitrary status to the kind whose message best
// describes it.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusCreated:
		return KindCreated
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusMethodNotAllowed:
		return KindNotAllowed
	case http.StatusConflict:
		return KindConflict
	case http.StatusUnprocessableEntity:
		return KindUnprocessable
	case http.StatusTooManyRequests:
		return KindTooManyRequests
	case http.StatusServiceUnavailable:
		return KindServiceUnavailable
	}

	switch {
	case status >= 500:
		return KindServerError
	case status >= 400:
		return KindError
	case IsSuccess(status):
		return KindSuccess
	default:
		return KindResponse
	}
}

// MessageKeyForStatus returns the default message key for status. Statuses
// outside the 2xx and error ranges get a neutral message.
func MessageKeyForStatus(status int) locale.Key {
	if kind := KindForStatus(status); kind != KindResponse {
		return kind.MessageKey()
	}
	return locale.KeyResponse
}

// IsSuccess reports whether status is in [200,300).
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
