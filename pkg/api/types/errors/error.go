// Package errors builds error responses of the analysis API.
package errors

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorMessage is the body of error responses.
type ErrorMessage struct {
	Reason string `json:"reason"`
	Advice string `json:"advice,omitempty"`

	// Cause is logged, but not sent to clients.
	Cause error `json:"-"`
}

func (e ErrorMessage) Error() string {
	msg := e.Reason
	if e.Advice != "" {
		msg += " (" + e.Advice + ")"
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Cause)
	}
	return msg
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}

type Option func(*ErrorMessage)

func WithAdvice(advice string) Option {
	return func(m *ErrorMessage) {
		m.Advice = advice
	}
}

func WithError(err error) Option {
	return func(m *ErrorMessage) {
		m.Cause = err
	}
}

// New makes an HTTPError carrying ErrorMessage as both of the response and the internal error.
func New(code int, reason string, options ...Option) *echo.HTTPError {
	msg := ErrorMessage{Reason: reason}
	for _, opt := range options {
		opt(&msg)
	}
	return echo.NewHTTPError(code, msg).SetInternal(msg)
}

func NotFound(options ...Option) *echo.HTTPError {
	return New(http.StatusNotFound, "not found", options...)
}

func BadRequest(advice string, err error) *echo.HTTPError {
	return New(http.StatusBadRequest, "bad request", WithAdvice(advice), WithError(err))
}

// UnprocessableEntity is for analyses which are well formed but can not be run.
func UnprocessableEntity(reason string, err error) *echo.HTTPError {
	return New(http.StatusUnprocessableEntity, reason, WithError(err))
}

func InternalServerError(err error) *echo.HTTPError {
	return New(http.StatusInternalServerError, "unexpected error", WithError(err))
}
