package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/botlab/robot-access/internal/api/handler"
	"github.com/botlab/robot-access/internal/core/domain"
)

var kindStatus = map[string]int{
	domain.KindInvalidCredentials: http.StatusUnauthorized,
	domain.KindInvalidToken:       http.StatusUnauthorized,
	domain.KindUnknownSubject:     http.StatusUnauthorized,
	domain.KindSessionSuperseded:  http.StatusUnauthorized,
	domain.KindAccountDisabled:    http.StatusForbidden,
	domain.KindNotAuthorized:      http.StatusForbidden,
	domain.KindWrongResource:      http.StatusForbidden,
	domain.KindOutsideWindow:      http.StatusForbidden,
	domain.KindUnallocated:        http.StatusForbidden,
	domain.KindAccountNotFound:    http.StatusNotFound,
	domain.KindDuplicateUsername:  http.StatusConflict,
	domain.KindOverlappingWindow:  http.StatusConflict,
	domain.KindInvalidInput:       http.StatusBadRequest,
	domain.KindStoreUnavailable:   http.StatusServiceUnavailable,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to a status code and their machine-readable kind.
//   - Adds the allocated window to OutsideWindow denials.
//   - Logs unexpected errors internally without leaking details to the client.
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

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorBody) {
	// Echo's own errors (bind failures, 404 from router, 502 from handlers).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(he.Internal).Int("status", he.Code).Str("path", c.Path()).Msg("request failed")
		}
		return he.Code, handler.ErrorBody{Error: statusKind(he.Code), Message: fmt.Sprintf("%v", he.Message)}
	}

	kind := domain.KindOf(err)
	code, known := kindStatus[kind]
	if !known {
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")
		return http.StatusInternalServerError, handler.ErrorBody{Error: domain.KindInternal, Message: "internal server error"}
	}

	if code == http.StatusServiceUnavailable {
		log.Error().Err(err).Str("path", c.Path()).Msg("credential store unavailable")
		return code, handler.ErrorBody{Error: kind, Message: domain.ErrStoreUnavailable.Error()}
	}

	body := handler.ErrorBody{Error: kind, Message: err.Error()}
	var denial *domain.DenialError
	if errors.As(err, &denial) {
		body.Resource = string(denial.Resource)
		if errors.Is(denial.Reason, domain.ErrOutsideWindow) {
			start, end := denial.Window.Start, denial.Window.End
			body.WindowStart, body.WindowEnd = &start, &end
		}
	}
	return code, body
}

func statusKind(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return "http_error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
