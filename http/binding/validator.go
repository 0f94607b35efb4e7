package binding

import (
	"fmt"
	"reflect"
	"strings"

	validatorV10 "github.com/go-playground/validator/v10"
)

var validator *validatorV10.Validate

func init() {
	validator = validatorV10.New(validatorV10.WithRequiredStructEnabled())
	// report fields by their JSON name
	validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
}

// Validator returns the shared validator so applications can register
// custom tags.
func Validator() *validatorV10.Validate {
	return validator
}

// fieldPath returns the dotted JSON path of fe without the root struct name.
func fieldPath(fe validatorV10.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func getValidationMessage(fe validatorV10.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters long.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s field must be at most %s characters long.", field, fe.Param())
	case "len":
		return fmt.Sprintf("The %s field must be exactly %s characters long.", field, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s field must be greater than or equal to %s.", field, fe.Param())
	case "lte":
		return fmt.Sprintf("The %s field must be less than or equal to %s.", field, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s field must be greater than %s.", field, fe.Param())
	case "lt":
		return fmt.Sprintf("The %s field must be less than %s.", field, fe.Param())
	case "alphanum":
		return fmt.Sprintf("The %s field must contain only alphanumeric characters.", field)
	case "alpha":
		return fmt.Sprintf("The %s field must contain only alphabetic characters.", field)
	case "numeric":
		return fmt.Sprintf("The %s field must be a valid number.", field)
	case "url":
		return fmt.Sprintf("The %s field must be a valid URL.", field)
	case "uri":
		return fmt.Sprintf("The %s field must be a valid URI.", field)
	case "oneof":
		return fmt.Sprintf("The %s field must be one of: %s.", field, fe.Param())
	default:
		return fmt.Sprintf("The %s field failed the %s rule.", field, fe.Tag())
	}
}
