package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"webshot/internal/api/middleware"
	"webshot/internal/logging"
	"webshot/internal/rendering"
	"webshot/internal/storage"
	"webshot/internal/web"
	"webshot/pkg/models"
	"webshot/pkg/utils"
)

func redirectHome(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/")
}

// IndexHandler renders the form page with the stored artifacts
func IndexHandler(store *storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		page := web.IndexPage{Flashes: web.PopFlashes(c)}

		artifacts, err := store.List()
		if err != nil {
			logging.GetGlobalLogger().Error("Failed to list artifacts", map[string]interface{}{
				"request_id": middleware.GetRequestID(c),
				"error":      err.Error(),
			})
			page.Flashes = append(page.Flashes, web.Flash{Category: web.FlashError, Message: "Error listing files: " + err.Error()})
		}
		page.Artifacts = artifacts

		return c.Render(http.StatusOK, "index.html", page)
	}
}

// ScreenshotFormHandler captures the submitted URL and stores the image
func ScreenshotFormHandler(renderer Renderer, store *storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.GetRequestID(c)
		logger := logging.GetGlobalLogger()

		url := utils.NormalizeURL(c.FormValue("url"))
		if url == "" {
			web.AddFlash(c, web.FlashError, "Please enter a URL")
			return redirectHome(c)
		}

		opts, err := screenshotFormOptions(c, renderer.Presets())
		if err != nil {
			web.AddFlash(c, web.FlashError, "Error taking screenshot: "+err.Error())
			return redirectHome(c)
		}

		logger.Info("Taking screenshot", map[string]interface{}{
			"request_id": requestID,
			"url":        url,
		})

		data, err := renderer.CaptureScreenshot(c.Request().Context(), rendering.Target{URL: url}, opts)
		if err != nil {
			logger.Error("Screenshot failed", map[string]interface{}{
				"request_id": requestID,
				"url":        url,
				"error":      err.Error(),
			})
			web.AddFlash(c, web.FlashError, "Error taking screenshot: "+err.Error())
			return redirectHome(c)
		}

		name := storage.FilenameFor(url, imageExtension(data), time.Now())
		if _, err := store.Save(name, data); err != nil {
			web.AddFlash(c, web.FlashError, "Error taking screenshot: "+err.Error())
			return redirectHome(c)
		}

		web.AddFlash(c, web.FlashSuccess, fmt.Sprintf("Screenshot of %s taken successfully!", url))
		return redirectHome(c)
	}
}

// screenshotFormOptions turns the optional width, height and full_page fields into
// viewport and screenshotOptions blocks built on top of the presets
func screenshotFormOptions(c echo.Context, presets rendering.Presets) (rendering.Options, error) {
	opts := rendering.Options{}

	width, err := optionalInt(c.FormValue("width"))
	if err != nil {
		return nil, errors.New("width must be a number")
	}
	height, err := optionalInt(c.FormValue("height"))
	if err != nil {
		return nil, errors.New("height must be a number")
	}
	if width > 0 || height > 0 {
		viewport := presets.Viewport
		if width > 0 {
			viewport.Width = width
		}
		if height > 0 {
			viewport.Height = height
		}
		opts = rendering.MergeShallow(opts, viewport.Options())
	}

	// The form pairs a hidden false with the checkbox, so an unchecked box still
	// submits full_page. Any true value wins.
	form, err := c.FormParams()
	if err != nil {
		return nil, errors.New("invalid form")
	}
	if values, ok := form["full_page"]; ok && len(values) > 0 {
		screenshot := presets.Screenshot
		screenshot.FullPage = false
		for _, raw := range values {
			if on, err := strconv.ParseBool(raw); (err == nil && on) || raw == "on" {
				screenshot.FullPage = true
			}
		}
		opts = rendering.MergeShallow(opts, screenshot.Options())
	}

	return opts, nil
}

func optionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}

// PDFFormHandler renders the submitted URL as a PDF and stores it
func PDFFormHandler(renderer Renderer, store *storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()

		url := utils.NormalizeURL(c.FormValue("url"))
		if url == "" {
			web.AddFlash(c, web.FlashError, "Please enter a URL")
			return redirectHome(c)
		}

		data, err := renderer.RenderPDF(c.Request().Context(), rendering.Target{URL: url}, nil)
		if err != nil {
			logger.Error("PDF generation failed", map[string]interface{}{
				"request_id": middleware.GetRequestID(c),
				"url":        url,
				"error":      err.Error(),
			})
			web.AddFlash(c, web.FlashError, "Error generating PDF: "+err.Error())
			return redirectHome(c)
		}

		name := storage.FilenameFor(url, "pdf", time.Now())
		if _, err := store.Save(name, data); err != nil {
			web.AddFlash(c, web.FlashError, "Error generating PDF: "+err.Error())
			return redirectHome(c)
		}

		web.AddFlash(c, web.FlashSuccess, fmt.Sprintf("PDF of %s generated successfully!", url))
		return redirectHome(c)
	}
}

// ScrapeFormHandler returns the elements matching the submitted selector as JSON
func ScrapeFormHandler(renderer Renderer) echo.HandlerFunc {
	return func(c echo.Context) error {
		url := utils.NormalizeURL(c.FormValue("url"))
		selector := strings.TrimSpace(c.FormValue("selector"))
		if url == "" || selector == "" {
			web.AddFlash(c, web.FlashError, "Please enter both URL and CSS selector")
			return redirectHome(c)
		}

		data, err := renderer.ScrapeElements(c.Request().Context(), url, selector, nil)
		if err != nil {
			logging.GetGlobalLogger().Error("Scrape failed", map[string]interface{}{
				"request_id": middleware.GetRequestID(c),
				"url":        url,
				"selector":   selector,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusOK, models.ScrapeResult{Success: false, Error: err.Error()})
		}

		return c.JSON(http.StatusOK, models.ScrapeResult{Success: true, Data: data})
	}
}

// HTMLFormHandler returns the rendered HTML of the submitted URL as JSON
func HTMLFormHandler(renderer Renderer) echo.HandlerFunc {
	return func(c echo.Context) error {
		url := utils.NormalizeURL(c.FormValue("url"))
		if url == "" {
			web.AddFlash(c, web.FlashError, "Please enter a URL")
			return redirectHome(c)
		}

		html, err := renderer.FetchRenderedHTML(c.Request().Context(), url, nil)
		if err != nil {
			logging.GetGlobalLogger().Error("HTML fetch failed", map[string]interface{}{
				"request_id": middleware.GetRequestID(c),
				"url":        url,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusOK, models.HTMLResult{Success: false, Error: err.Error()})
		}

		return c.JSON(http.StatusOK, models.HTMLResult{Success: true, HTML: html})
	}
}

// ServeArtifactHandler streams a stored file
func ServeArtifactHandler(store *storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		path, err := store.Path(c.Param("filename"))
		if err != nil {
			return respondError(c, utils.NewNotFoundError("File not found"))
		}
		return c.File(path)
	}
}

// DeleteArtifactHandler removes a stored file and returns to the index
func DeleteArtifactHandler(store *storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.Param("filename")

		err := store.Delete(name)
		switch {
		case err == nil:
			web.AddFlash(c, web.FlashSuccess, fmt.Sprintf("File %s deleted successfully!", name))
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidName):
			web.AddFlash(c, web.FlashError, fmt.Sprintf("File %s not found", name))
		default:
			web.AddFlash(c, web.FlashError, "Error deleting file: "+err.Error())
		}

		return redirectHome(c)
	}
}
