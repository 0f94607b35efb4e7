package responder

import (
	"github.com/surazdott/api-response/pagination"
)

// Envelope is the JSON body written for every response.
//
// Success is true iff the status is in [200,300). Which of Data and Errors
// appear depends on the Kind that produced the envelope; Links and Meta are
// only set for paginated responses.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Errors  any               `json:"errors,omitempty"`
	Links   *pagination.Links `json:"links,omitempty"`
	Meta    *pagination.Meta  `json:"meta,omitempty"`
}

// FieldError is a convenience shape for field-level validation failures.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
