package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/drugex/internal/generator"
	"github.com/samcharles93/drugex/internal/vocab"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// ErrorBody is the payload under the "error" key of every failed response.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

// clientErrors are caller mistakes and map to 400.
var clientErrors = []error{
	ErrInvalidRequest,
	generator.ErrShape,
	generator.ErrToken,
	generator.ErrNonFinite,
	vocab.ErrUnknownToken,
	vocab.ErrTooLong,
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "", "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "", "")
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

// writeServiceError maps a service error onto the error envelope.
func writeServiceError(c *echo.Context, err error) error {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), "", errorCode(err))
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return writeError(c, http.StatusServiceUnavailable, "server_error", err.Error(), "", "cancelled")
	}
	return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, generator.ErrShape):
		return "shape_mismatch"
	case errors.Is(err, generator.ErrToken), errors.Is(err, vocab.ErrUnknownToken):
		return "unknown_token"
	case errors.Is(err, generator.ErrNonFinite):
		return "non_finite"
	case errors.Is(err, vocab.ErrTooLong):
		return "too_long"
	}
	return ""
}
