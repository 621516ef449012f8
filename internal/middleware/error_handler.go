package middleware

import (
	"errors"
	"net/http"
	"strings"

	"agroMarket/pkg/logger"
	jsonres "agroMarket/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorPage is the data handed to the "error" template.
type ErrorPage struct {
	Code    int
	Message string
}

// ErrorHandler ends every failed request in a response: JSON for the API group,
// the error page for everything else.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("request failed", err, "path", c.Request().URL.Path)
	}

	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		if jerr := c.JSON(code, jsonres.Error(strings.ReplaceAll(strings.ToUpper(http.StatusText(code)), " ", "_"), message, nil)); jerr != nil {
			logger.Error("failed to write error response", jerr)
		}
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	if rerr := c.Render(code, "error", ErrorPage{Code: code, Message: message}); rerr != nil {
		logger.Error("failed to render error page", rerr)
		_ = c.String(code, message)
	}
}
