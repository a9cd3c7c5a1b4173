package rendering

import (
	"time"

	"webshot/internal/config"
)

// Options are operation-specific request settings sent to the rendering service.
// Keys are the service's top-level JSON field names.
type Options map[string]interface{}

// MergeShallow copies every top-level key of src over dst. Nested objects are
// replaced whole, never merged key by key.
func MergeShallow(dst, src Options) Options {
	if dst == nil {
		dst = Options{}
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// NavigationPreset controls how the service waits for the page to load
type NavigationPreset struct {
	WaitUntil string
	Timeout   time.Duration
}

// Options renders the preset as the gotoOptions block
func (p NavigationPreset) Options() Options {
	return Options{
		"gotoOptions": map[string]interface{}{
			"waitUntil": p.WaitUntil,
			"timeout":   p.Timeout.Milliseconds(),
		},
	}
}

// ScreenshotPreset controls capture behaviour
type ScreenshotPreset struct {
	FullPage       bool
	OmitBackground bool
}

func (p ScreenshotPreset) Options() Options {
	return Options{
		"screenshotOptions": map[string]interface{}{
			"fullPage":       p.FullPage,
			"omitBackground": p.OmitBackground,
		},
	}
}

// ViewportPreset is the browser window size
type ViewportPreset struct {
	Width  int
	Height int
}

func (p ViewportPreset) Options() Options {
	return Options{
		"viewport": map[string]interface{}{
			"width":  p.Width,
			"height": p.Height,
		},
	}
}

// PDFPreset lists resources the service skips while rendering a PDF
type PDFPreset struct {
	RejectResourceTypes  []string
	RejectRequestPattern []string
}

func (p PDFPreset) Options() Options {
	opts := Options{}
	if len(p.RejectResourceTypes) > 0 {
		opts["rejectResourceTypes"] = append([]string(nil), p.RejectResourceTypes...)
	}
	if len(p.RejectRequestPattern) > 0 {
		opts["rejectRequestPattern"] = append([]string(nil), p.RejectRequestPattern...)
	}
	return opts
}

// Presets groups the default option blocks applied per operation
type Presets struct {
	Navigation NavigationPreset
	Screenshot ScreenshotPreset
	Viewport   ViewportPreset
	PDF        PDFPreset
}

// DefaultPresets returns the built-in defaults: full-page capture with background,
// 1280x720 viewport, networkidle0 with a 30s navigation timeout, and PDFs without
// images or stylesheets.
func DefaultPresets() Presets {
	return Presets{
		Navigation: NavigationPreset{WaitUntil: "networkidle0", Timeout: 30 * time.Second},
		Screenshot: ScreenshotPreset{FullPage: true, OmitBackground: false},
		Viewport:   ViewportPreset{Width: 1280, Height: 720},
		PDF: PDFPreset{
			RejectResourceTypes:  []string{"image"},
			RejectRequestPattern: []string{`/^.*\.(css)`},
		},
	}
}

// PresetsFromConfig reads presets from configuration, keeping defaults for unset or zero values
func PresetsFromConfig(cfg *config.Config) Presets {
	presets := DefaultPresets()
	p := cfg.Rendering.Presets

	if p.Navigation.WaitUntil != "" {
		presets.Navigation.WaitUntil = p.Navigation.WaitUntil
	}
	if p.Navigation.Timeout > 0 {
		presets.Navigation.Timeout = p.Navigation.Timeout
	}
	if p.Screenshot.FullPage != nil {
		presets.Screenshot.FullPage = *p.Screenshot.FullPage
	}
	if p.Screenshot.OmitBackground != nil {
		presets.Screenshot.OmitBackground = *p.Screenshot.OmitBackground
	}
	if p.Viewport.Width > 0 {
		presets.Viewport.Width = p.Viewport.Width
	}
	if p.Viewport.Height > 0 {
		presets.Viewport.Height = p.Viewport.Height
	}
	if p.PDF.RejectResourceTypes != nil {
		presets.PDF.RejectResourceTypes = p.PDF.RejectResourceTypes
	}
	if p.PDF.RejectRequestPattern != nil {
		presets.PDF.RejectRequestPattern = p.PDF.RejectRequestPattern
	}

	return presets
}
