package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, GetRequestID(c))
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	id := rec.Header().Get(echo.HeaderXRequestID)
	if len(id) != 36 {
		t.Fatalf("expected uuid request id, got %q", id)
	}
	if rec.Body.String() != id {
		t.Errorf("context id %q differs from header %q", rec.Body.String(), id)
	}
}

func TestRequestID_ReusesWellFormedHeader(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "trace-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(echo.HeaderXRequestID); got != "trace-42" {
		t.Errorf("request id = %q, want trace-42", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "bad id <script>")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(echo.HeaderXRequestID); got == "bad id <script>" {
		t.Error("malformed request id should be replaced")
	}
}

func TestRateLimit_DeniesBurstOverflow(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(1, 2))
	e.GET("/", okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v", codes)
	}
}

func TestRateLimit_DisabledWithZeroRate(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(0, 0))
	e.GET("/", okHandler)

	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d got %d", i, rec.Code)
		}
	}
}

func TestBodyLimit(t *testing.T) {
	e := echo.New()
	e.Use(BodyLimit("1K"))
	e.POST("/", func(c echo.Context) error {
		_ = c.Request().ParseForm()
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 4096)))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestSelectiveTimeout(t *testing.T) {
	e := echo.New()
	e.Use(SelectiveTimeoutConfig(20*time.Millisecond, time.Second))
	slow := func(c echo.Context) error {
		time.Sleep(100 * time.Millisecond)
		return c.NoContent(http.StatusOK)
	}
	e.GET("/screenshots/x", slow)
	e.POST("/api/v1/analyze", slow)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/screenshots/x", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("short route status = %d, want 503", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("long route status = %d, want 200", rec.Code)
	}
}
