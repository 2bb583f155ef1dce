package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/api/handler"
	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

var kindStatus = map[domain.ErrKind]int{
	domain.KindValidation:  http.StatusBadRequest,
	domain.KindAuth:        http.StatusUnauthorized,
	domain.KindForbidden:   http.StatusForbidden,
	domain.KindNotFound:    http.StatusNotFound,
	domain.KindConflict:    http.StatusConflict,
	domain.KindRateLimited: http.StatusTooManyRequests,
	domain.KindConfig:      http.StatusInternalServerError,
	domain.KindInternal:    http.StatusInternalServerError,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to HTTP status codes by kind.
//   - Logs configuration and unexpected errors without leaking details to the client.
//   - Renders {"success": false, "message": ..., "error": {"code": ..., "details": ...}}.
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
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprintf("%v", he.Message)
		if m, ok := he.Message.(string); ok {
			msg = m
		}
		return he.Code, handler.ErrorResponse{Message: msg, Error: handler.ErrorDetail{Code: httpCode(he.Code)}}
	}

	var de *domain.Error
	if errors.As(err, &de) {
		status, ok := kindStatus[de.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		if status < http.StatusInternalServerError {
			return status, handler.ErrorResponse{
				Message: de.Message,
				Error:   handler.ErrorDetail{Code: de.Code, Details: de.Details},
			}
		}
		if de.Kind == domain.KindConfig {
			logError(log, c, err, "configuration error")
			return status, internalError()
		}
	}

	logError(log, c, err, "unhandled error")
	return http.StatusInternalServerError, internalError()
}

func logError(log zerolog.Logger, c echo.Context, err error, msg string) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg(msg)
}

func internalError() handler.ErrorResponse {
	return handler.ErrorResponse{Message: "Internal server error", Error: handler.ErrorDetail{Code: "internal_error"}}
}

func httpCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusUnauthorized:
		return "auth_required"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	}
	if status >= http.StatusInternalServerError {
		return "internal_error"
	}
	return "bad_request"
}
