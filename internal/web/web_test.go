package web

import (
	"bytes"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"webshot/internal/storage"
)

func TestRenderer_Index(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	page := IndexPage{
		Artifacts: []storage.Artifact{
			{Filename: "example.com__20240101_120000.png", SourceURL: "example.com", Type: "image", Size: 2048, Created: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
			{Filename: "example.com__20240101_120001.pdf", SourceURL: "example.com", Type: "pdf", Size: 10},
		},
		Flashes: []Flash{{Category: FlashSuccess, Message: "Screenshot of <b>x</b> taken"}},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, "index.html", page, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`/screenshots/example.com__20240101_120000.png`,
		`2.0 KB`,
		`2024-01-01 12:00:00`,
		`alert-success`,
		`&lt;b&gt;x&lt;/b&gt;`,
		`action="/delete/example.com__20240101_120001.pdf"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
}

func TestRenderer_EmptyIndex(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, "index.html", IndexPage{}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "No files yet.") {
		t.Error("empty state missing")
	}
}

func TestFlash_RoundTrip(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/pdf", nil), rec)
	AddFlash(c, FlashSuccess, "first")
	AddFlash(c, FlashError, "second")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("want one flash cookie, got %d", len(cookies))
	}
	last := cookies[0]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(last)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)

	flashes := PopFlashes(c)
	if len(flashes) != 2 || flashes[0].Message != "first" || flashes[1].Category != FlashError {
		t.Fatalf("flashes = %+v", flashes)
	}

	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("flash cookie not cleared: %+v", cleared)
	}
}

func TestFlash_LongMessageTruncated(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/screenshot", nil), rec)
	detail := strings.Repeat("é", 10000)
	AddFlash(c, FlashError, "Error: "+detail)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("want one flash cookie, got %d", len(cookies))
	}
	if n := len(cookies[0].String()); n >= 4096 {
		t.Fatalf("flash cookie is %d bytes, browsers drop cookies over 4KB", n)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	flashes := PopFlashes(e.NewContext(req, httptest.NewRecorder()))
	if len(flashes) != 1 {
		t.Fatalf("flashes = %+v", flashes)
	}
	msg := flashes[0].Message
	if !strings.HasPrefix(msg, "Error: éé") || !strings.HasSuffix(msg, "...") {
		t.Errorf("unexpected truncated message %q", msg[:32])
	}
	if n := utf8.RuneCountInString(msg); n != maxFlashRunes+3 {
		t.Errorf("message has %d runes, want %d", n, maxFlashRunes+3)
	}

	short := truncateRunes("kept as is", maxFlashRunes)
	if short != "kept as is" {
		t.Errorf("short message altered: %q", short)
	}
}

func TestPopFlashes_CorruptCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "!!not-base64"})
	c := e.NewContext(req, httptest.NewRecorder())

	if got := PopFlashes(c); got != nil {
		t.Errorf("expected no flashes, got %+v", got)
	}
}

func TestStaticFiles(t *testing.T) {
	if _, err := fs.Stat(StaticFiles(), "app.js"); err != nil {
		t.Errorf("app.js not embedded: %v", err)
	}
}
