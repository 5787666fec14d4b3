package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Response is the uniform error body returned by every failing endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HTTPErrorHandler returns an echo error handler that maps classified errors
// to their status codes and everything else to a 500 with a generic message.
// Internal errors are logged with their cause; classified errors at info
// level only.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal Server Error"

		var appErr *Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.Kind.Status()
			message = appErr.Message
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(httpErr.Code)
			}
		}

		rid, _ := c.Get("request_id").(string)
		evt := logger.Info()
		if status >= http.StatusInternalServerError {
			evt = logger.Error().Err(err)
		}
		evt.
			Str("request_id", rid).
			Int("status", status).
			Str("path", c.Request().URL.Path).
			Msg("request failed")

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, Response{Success: false, Message: message})
	}
}
