package errors

import "errors"

// Codes shared between the domain services and the HTTP transport.
const (
	CodeInvalidInput      = "invalid_input"
	CodeInvalidClient     = "invalid_client"
	CodeLimitExceeded     = "limit_exceeded"
	CodeNotFound          = "location_not_found"
	CodeUpstream          = "weather_upstream_error"
	CodeForecastMalformed = "forecast_malformed"
	CodeStorage           = "storage_error"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
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

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the outermost AppError, or "" when there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
