// Package binding decodes and validates request bodies, reporting failures as
// errors the exception renderer understands.
package binding

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	validatorV10 "github.com/go-playground/validator/v10"

	"github.com/surazdott/api-response/exception"
)

const (
	EmptyBodyMessage     = "Request body is empty."
	MalformedBodyMessage = "Request body is not valid JSON."
)

// ValidationErrors maps a JSON field path to its failure messages.
type ValidationErrors map[string][]string

// JSON decodes the request body into v, then validates v when it is a
// struct. An empty or malformed body yields a 400 *exception.APIError; failed
// rules yield a *exception.ValidationError carrying ValidationErrors.
func JSON(r *http.Request, v any, opts ...Option) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return exception.NewBadRequest(EmptyBodyMessage)
	}
	defer r.Body.Close()

	if err := decodeJson(r.Body, v, opts...); err != nil {
		if errors.Is(err, io.EOF) {
			return exception.NewBadRequest(EmptyBodyMessage).WithInner(err)
		}
		return exception.NewBadRequest(MalformedBodyMessage).WithInner(err)
	}

	return Validate(v)
}

// Validate runs the validate struct tags of v. Non-struct values pass.
func Validate(v any) error {
	if !isStruct(v) {
		return nil
	}

	err := validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validatorV10.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return exception.Wrap(err, "").WithStatus(http.StatusInternalServerError)
	}

	details := make(ValidationErrors, len(fieldErrors))
	for _, fe := range fieldErrors {
		path := fieldPath(fe)
		details[path] = append(details[path], getValidationMessage(fe))
	}
	return exception.NewValidation(details)
}

// ExpectsJSON reports whether the client sent or accepts JSON.
func ExpectsJSON(r *http.Request) bool {
	if r == nil {
		return false
	}
	if strings.Contains(strings.ToLower(r.Header.Get("Accept")), "json") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.Struct
}
