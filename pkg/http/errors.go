package http

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RetryAfterParam is the AppError param mirrored into the Retry-After header.
const RetryAfterParam = "retry_after_seconds"

// Handler registers its routes on the server's Echo instance.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

// AppError is an error with an HTTP status and a stable code. It is written
// to clients inside the envelope's data array.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// WithParam sets a single error param.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithField names the offending request field.
func (e *AppError) WithField(field string) *AppError {
	e.Field = field
	return e
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// WithRetryAfter hints when the client may retry, rounded up to whole
// seconds. Non-positive durations are ignored.
func (e *AppError) WithRetryAfter(d time.Duration) *AppError {
	if d <= 0 {
		return e
	}
	return e.WithParam(RetryAfterParam, int(math.Ceil(d.Seconds())))
}

func NotFoundError(message string) *AppError {
	return newAppError("ERR_NOT_FOUND", message, http.StatusNotFound)
}

func BadRequestError(message string) *AppError {
	return newAppError("ERR_BAD_REQUEST", message, http.StatusBadRequest)
}

func BadRequestErrorf(format string, a ...interface{}) *AppError {
	return BadRequestError(fmt.Sprintf(format, a...))
}

// UnprocessableError is for well-formed input a model cannot use.
func UnprocessableError(message string) *AppError {
	return newAppError("ERR_UNPROCESSABLE", message, http.StatusUnprocessableEntity)
}

func TooManyRequestsError(message string) *AppError {
	return newAppError("ERR_RATE_LIMITED", message, http.StatusTooManyRequests)
}

func ServiceUnavailableError(message string) *AppError {
	return newAppError("ERR_SERVICE_UNAVAILABLE", message, http.StatusServiceUnavailable)
}

func InternalError(message string) *AppError {
	return newAppError("ERR_INTERNAL", message, http.StatusInternalServerError)
}
