package errors

import "net/http"

// Codes returned in the "code" field of error bodies.
const (
	CodeInternal        = "internal_error"
	CodeUnauthorized    = "unauthorized"
	CodeInvalidJSON     = "invalid_json"
	CodeEmptySelection  = "empty_selection"
	CodeSessionActive   = "session_active"
	CodeInvalidExercise = "invalid_exercise"
	CodeInvalidPain     = "invalid_pain_entry"
	CodeInvalidProfile  = "invalid_profile"
	CodeInvalidTemplate = "invalid_template"
	CodeNotFound        = "not_found"
)

type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func New(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

func Internal(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return New(http.StatusInternalServerError, CodeInternal, message)
}

func BadRequest(code, message string) *APIError {
	return New(http.StatusBadRequest, code, message)
}

func Unauthorized(message string) *APIError {
	if message == "" {
		message = "unauthorized"
	}
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

func NotFound(code, message string) *APIError {
	if code == "" {
		code = CodeNotFound
	}
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string, details any) *APIError {
	err := New(http.StatusConflict, code, message)
	err.Details = details
	return err
}

func BadGateway(code, message string) *APIError {
	return New(http.StatusBadGateway, code, message)
}
