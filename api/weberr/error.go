package weberr

import (
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationResponse carries one message per offending form field, so
// the UI can surface errors inline next to the inputs.
type ValidationResponse struct {
	Error  string                 `json:"error"`
	Fields map[string]interface{} `json:"fields"`
}

type RequestError struct {
	Err error
}

func (r *RequestError) Error() string { return r.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

func NewError(err error, msg string, status int, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts, WithResponse(
		&ErrorResponse{msg},
		status,
	))

	return Wrap(e, opts...)
}

func NotFound(err error, opts ...Opt) error {
	return NewError(
		err,
		"the resource could not be found",
		http.StatusNotFound,
		opts...,
	)
}

func NotAuthorized(err error, opts ...Opt) error {
	return NewError(
		err,
		"not authorized to access resource",
		http.StatusUnauthorized,
		opts...,
	)
}

func InternalError(err error, opts ...Opt) error {
	return NewError(
		err,
		"the server encountered a problem and could not process your request",
		http.StatusInternalServerError,
		opts...,
	)
}

func BadRequest(err error, opts ...Opt) error {
	return NewError(
		err,
		"bad request",
		http.StatusBadRequest,
		opts...,
	)
}

// Validation builds a 422 whose body names every invalid field.
func Validation(err error, fields map[string]interface{}, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts,
		WithFields(fields),
		WithResponse(
			&ValidationResponse{Error: "validation failed", Fields: fields},
			http.StatusUnprocessableEntity,
		),
	)

	return Wrap(e, opts...)
}
