package rest

import (
	"context"
	"net/http"
	"time"

	"agroMarket/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

// Pinger is any dependency the health check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type PageHandler struct {
	version string
	checks  map[string]Pinger
}

func NewPageHandler(version string, checks map[string]Pinger) *PageHandler {
	return &PageHandler{
		version: version,
		checks:  checks,
	}
}

func (h *PageHandler) Home(c echo.Context) error {
	return c.Render(http.StatusOK, "home", nil)
}

func (h *PageHandler) About(c echo.Context) error {
	return c.Render(http.StatusOK, "about", nil)
}

type healthStatus struct {
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func (h *PageHandler) Healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := healthStatus{Version: h.version, Checks: make(map[string]string, len(h.checks))}
	healthy := true
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			logger.Warn("health check failed", "check", name, "error", err.Error())
			status.Checks[name] = "down"
			healthy = false
			continue
		}
		status.Checks[name] = "up"
	}

	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, status)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(status))
}
