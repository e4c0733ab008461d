package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/accounts-api/internal/api/handler"
	"github.com/sirpyerre/accounts-api/internal/core/domain"
)

// Stable values of the "error" field.
const (
	codeValidation         = "validation_error"
	codeConflict           = "conflict"
	codeNotFound           = "not_found"
	codeInvalidCredentials = "invalid_credentials"
	codeUnexpected         = "unexpected_error"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "...", "error": "<code>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	// Echo's own errors (404 from router, body too large, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorResponse{
			Message: fmt.Sprintf("%v", he.Message),
			Error:   statusCode(he.Code),
		}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrValidation):
		msg := err.Error()
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			msg = ve.Detail
		}
		return http.StatusBadRequest, handler.ErrorResponse{Message: msg, Error: codeValidation}
	case errors.Is(err, domain.ErrAccountExists):
		return http.StatusBadRequest, handler.ErrorResponse{
			Message: "User already exists with the given email/phone number.",
			Error:   codeConflict,
		}
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Message: "User not found", Error: codeNotFound}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, handler.ErrorResponse{Message: "Invalid credentials", Error: codeInvalidCredentials}
	}

	// Unexpected error: log the real cause, return the operation's message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	msg := "Internal server error"
	var opErr *handler.OperationError
	if errors.As(err, &opErr) {
		msg = opErr.Message
	}
	return http.StatusInternalServerError, handler.ErrorResponse{Message: msg, Error: codeUnexpected}
}

// statusCode derives an error code from an HTTP status: "Not Found" becomes
// "not_found". Server errors all report codeUnexpected.
func statusCode(status int) string {
	if status >= http.StatusInternalServerError {
		return codeUnexpected
	}
	text := http.StatusText(status)
	if text == "" {
		return codeValidation
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
