package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"webshot/internal/config"
	"webshot/internal/logging"
	"webshot/internal/rendering"
	"webshot/internal/storage"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(logging.Nop())
	os.Exit(m.Run())
}

type stubRenderer struct{}

func (stubRenderer) CaptureScreenshot(ctx context.Context, target rendering.Target, opts rendering.Options) ([]byte, error) {
	return []byte("\x89PNG\r\n\x1a\n"), nil
}

func (stubRenderer) RenderPDF(ctx context.Context, target rendering.Target, opts rendering.Options) ([]byte, error) {
	return []byte("%PDF-1.7"), nil
}

func (stubRenderer) FetchRenderedHTML(ctx context.Context, url string, opts rendering.Options) (string, error) {
	return "<html></html>", nil
}

func (stubRenderer) ScrapeElements(ctx context.Context, url, selector string, opts rendering.Options) (interface{}, error) {
	return []interface{}{}, nil
}

func (stubRenderer) Forward(ctx context.Context, op rendering.Operation, body []byte) (*rendering.RawResponse, error) {
	return &rendering.RawResponse{StatusCode: http.StatusOK, ContentType: "application/json", Body: []byte(`{}`)}, nil
}

func (stubRenderer) Presets() rendering.Presets { return rendering.DefaultPresets() }

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	store, err := storage.NewStore(t.TempDir(), logging.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	cfg := config.Default()
	e := echo.New()
	if err := SetupRoutes(e, cfg, Dependencies{Renderer: stubRenderer{}, Store: store}); err != nil {
		t.Fatalf("SetupRoutes: %v", err)
	}
	return e
}

func TestSetupRoutes_Wiring(t *testing.T) {
	e := newServer(t)

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusOK},
		{http.MethodGet, "/health/config", http.StatusOK},
		{http.MethodGet, "/static/app.js", http.StatusOK},
		{http.MethodGet, "/api/v1/files", http.StatusOK},
		{http.MethodGet, "/api/v1/share/twitter-0000000000-1.jpg", http.StatusServiceUnavailable},
		{http.MethodPost, "/api/v1/review", http.StatusServiceUnavailable},
		{http.MethodGet, "/screenshots/missing.png", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.want {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.want)
		}
		if rec.Header().Get(echo.HeaderXRequestID) == "" {
			t.Errorf("%s %s: missing request id", tc.method, tc.path)
		}
	}
}

func TestSetupRoutes_ScreenshotStoresArtifact(t *testing.T) {
	e := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/screenshot", strings.NewReader("url=example.com"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/files", nil))
	if !strings.Contains(rec.Body.String(), `"filename":"example.com__`) {
		t.Errorf("files = %s", rec.Body.String())
	}
}
