package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"agroMarket/internal/middleware"

	"github.com/labstack/echo/v4"
)

const defaultTimeout = 10 * time.Second

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

var errInvalidID = errors.New("invalid id")

func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// redirectWithFlash is how every mutating page handler finishes.
func redirectWithFlash(c echo.Context, to, category, message string) error {
	middleware.AddFlash(c, category, message)
	return c.Redirect(http.StatusFound, to)
}
