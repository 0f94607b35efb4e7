package responder

import (
	"github.com/surazdott/api-response/pagination"
)

// Respond sends a generic envelope with the given status. Data is included
// only when non-empty; a status <= 0 means 200.
func (r *Responder) Respond(message string, data any, status int, opts ...Option) {
	r.Write(KindResponse, message, data, append([]Option{WithStatus(status)}, opts...)...)
}

// ============================================
// Success Responses
// ============================================

func (r *Responder) Success(message string, data any, opts ...Option) {
	r.Write(KindSuccess, message, data, opts...)
}

func (r *Responder) Created(message string, data any, opts ...Option) {
	r.Write(KindCreated, message, data, opts...)
}

func (r *Responder) Paginate(message string, page pagination.Page, opts ...Option) {
	r.WriteList(message, page, opts...)
}

// ============================================
// Error Responses
// ============================================

func (r *Responder) Validation(message string, errors any, opts ...Option) {
	r.Write(KindValidation, message, errors, opts...)
}

func (r *Responder) Unprocessable(message string, errors any, opts ...Option) {
	r.Write(KindUnprocessable, message, errors, opts...)
}

// Error defaults to 400; pass WithStatus for other client or server errors.
func (r *Responder) Error(message string, errors any, opts ...Option) {
	r.Write(KindError, message, errors, opts...)
}

func (r *Responder) Unauthorized(message string, opts ...Option) {
	r.Write(KindUnauthorized, message, nil, opts...)
}

func (r *Responder) Forbidden(message string, opts ...Option) {
	r.Write(KindForbidden, message, nil, opts...)
}

func (r *Responder) NotFound(message string, opts ...Option) {
	r.Write(KindNotFound, message, nil, opts...)
}

func (r *Responder) NotAllowed(message string, opts ...Option) {
	r.Write(KindNotAllowed, message, nil, opts...)
}

func (r *Responder) Conflict(message string, opts ...Option) {
	r.Write(KindConflict, message, nil, opts...)
}

func (r *Responder) TooManyRequests(message string, opts ...Option) {
	r.Write(KindTooManyRequests, message, nil, opts...)
}

func (r *Responder) ServerError(message string, opts ...Option) {
	r.Write(KindServerError, message, nil, opts...)
}

func (r *Responder) ServiceUnavailable(message string, opts ...Option) {
	r.Write(KindServiceUnavailable, message, nil, opts...)
}
