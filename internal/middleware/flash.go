package middleware

import (
	"encoding/json"
	"net/http"

	"agroMarket/domain"

	"github.com/labstack/echo/v4"
	"github.com/pobyzaarif/goshortcute"
)

const (
	FlashCookie = "agro_flash"

	pendingFlashKey = "pending_flash"
)

// AddFlash queues a message for the next rendered page. Several calls in one request accumulate.
func AddFlash(c echo.Context, category, message string) {
	pending, _ := c.Get(pendingFlashKey).([]domain.Flash)
	pending = append(pending, domain.Flash{Category: category, Message: message})
	c.Set(pendingFlashKey, pending)

	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}

	c.SetCookie(&http.Cookie{
		Name:     FlashCookie,
		Value:    goshortcute.StringtoBase64Encode(string(raw)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlashes returns the messages left by the previous request and clears them.
// Messages queued during this request are included too, for pages rendered without a redirect.
func PopFlashes(c echo.Context) []domain.Flash {
	var flashes []domain.Flash

	if cookie, err := c.Cookie(FlashCookie); err == nil && cookie.Value != "" {
		decoded := goshortcute.StringtoBase64Decode(cookie.Value)
		if err := json.Unmarshal([]byte(decoded), &flashes); err != nil {
			flashes = nil
		}
	}

	if pending, ok := c.Get(pendingFlashKey).([]domain.Flash); ok {
		flashes = append(flashes, pending...)
		c.Set(pendingFlashKey, nil)
	}

	c.SetCookie(&http.Cookie{
		Name:     FlashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return flashes
}
