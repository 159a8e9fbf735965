package domain

import (
	"errors"
	"net/http"
)

// Error codes carried by AppError. The numbering is part of the JSON API.
const (
	CodeNotFound   = 1
	CodeValidation = 3
	CodeInternal   = 4
	// CodeUpstream marks a failure of the remote content API that the caller
	// must report, such as a rejected job application.
	CodeUpstream = 5
)

// codeStatus maps each code to the HTTP status the handlers answer with.
var codeStatus = map[int]int{
	CodeNotFound:   http.StatusNotFound,
	CodeValidation: http.StatusBadRequest,
	CodeInternal:   http.StatusInternalServerError,
	CodeUpstream:   http.StatusBadGateway,
}

// AppError is an error the HTTP layer can show to a visitor. Message is safe
// to display; Err holds the cause for logs.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any *AppError with the same code, so errors.Is(err,
// &AppError{Code: CodeNotFound}) works through wrapping.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func IsNotFound(err error) bool   { return errorCode(err) == CodeNotFound }
func IsValidation(err error) bool { return errorCode(err) == CodeValidation }
func IsInternal(err error) bool   { return errorCode(err) == CodeInternal }
func IsUpstream(err error) bool   { return errorCode(err) == CodeUpstream }

// errorCode returns the code of the first AppError in err's chain, or 0.
func errorCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

// HTTPStatusCode maps err to an HTTP status. Anything that is not a known
// AppError is a 500.
func HTTPStatusCode(err error) int {
	if status, ok := codeStatus[errorCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
