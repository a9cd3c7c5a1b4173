package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const flashCookie = "webshot_flash"

// maxFlashRunes keeps a pair of flashes well under the browser cookie limit
const maxFlashRunes = 512

// Flash categories
const (
	FlashSuccess = "success"
	FlashError   = "danger"
)

// Flash is a one-shot message shown on the next page render
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// AddFlash queues a message for the next request. Messages already queued in
// this response are kept.
func AddFlash(c echo.Context, category, message string) {
	flashes := pending(c)
	flashes = append(flashes, Flash{Category: category, Message: truncateRunes(message, maxFlashRunes)})
	c.Set(flashCookie, flashes)

	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	dropCookie(c.Response().Header(), flashCookie)
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// PopFlashes returns the messages sent by the previous response and clears them
func PopFlashes(c echo.Context) []Flash {
	cookie, err := c.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}

// dropCookie removes Set-Cookie headers already queued for name
func dropCookie(header http.Header, name string) {
	var kept []string
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, name+"=") {
			kept = append(kept, v)
		}
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}
}

func pending(c echo.Context) []Flash {
	if flashes, ok := c.Get(flashCookie).([]Flash); ok {
		return flashes
	}
	return nil
}
