package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"webshot/internal/analysis"
	"webshot/internal/api/middleware"
	"webshot/internal/logging"
	"webshot/internal/rendering"
	"webshot/internal/sharecache"
	"webshot/internal/storage"
	"webshot/pkg/models"
	"webshot/pkg/utils"
)

// Social preview size
const (
	previewWidth  = 1200
	previewHeight = 630
)

// FilesHandler lists stored artifacts
func FilesHandler(store *storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		artifacts, err := store.List()
		if err != nil {
			return respondError(c, utils.NewInternalServerError("Failed to list files"))
		}
		if artifacts == nil {
			artifacts = []storage.Artifact{}
		}
		return c.JSON(http.StatusOK, models.FilesResponse{Success: true, Files: artifacts})
	}
}

// RenderSiteHandler captures a social preview sized JPEG and returns it inline as a data URL
func RenderSiteHandler(renderer Renderer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var query models.RenderSiteQuery
		if err := c.Bind(&query); err != nil {
			return respondError(c, utils.NewBadRequestError("Invalid query parameters"))
		}
		query.URL = utils.NormalizeURL(query.URL)
		if query.URL == "" {
			return respondError(c, utils.NewBadRequestError("No URL provided"))
		}
		if err := requestValidator.Struct(&query); err != nil {
			return respondError(c, utils.NewValidationError(err.Error()))
		}
		if query.Width == 0 {
			query.Width = previewWidth
		}
		if query.Height == 0 {
			query.Height = previewHeight
		}

		opts := rendering.MergeShallow(
			rendering.ViewportPreset{Width: query.Width, Height: query.Height}.Options(),
			rendering.Options{"screenshotOptions": map[string]interface{}{
				"fullPage":       false,
				"omitBackground": false,
				"type":           "jpeg",
			}},
		)

		data, err := renderer.CaptureScreenshot(c.Request().Context(), rendering.Target{URL: query.URL}, opts)
		if err != nil {
			logging.GetGlobalLogger().Error("Site render failed", map[string]interface{}{
				"request_id": middleware.GetRequestID(c),
				"url":        query.URL,
				"error":      err.Error(),
			})
			return respondError(c, utils.FromRenderError(err))
		}

		dataURL := "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)

		c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
		return c.JSON(http.StatusOK, models.RenderSiteResponse{
			Success: true,
			Result:  models.RenderSiteResult{ScreenshotURL: dataURL},
		})
	}
}

// ShareStoreHandler keeps a rendered image in the share cache and returns its download URL
func ShareStoreHandler(cache *sharecache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		if cache == nil {
			return respondError(c, utils.NewServiceUnavailableError("Image sharing is not configured"))
		}

		var req models.ShareRequest
		if err := c.Bind(&req); err != nil {
			return respondError(c, utils.NewBadRequestError("Invalid request body"))
		}
		if err := requestValidator.Struct(&req); err != nil {
			return respondError(c, utils.NewBadRequestError("Missing required parameters"))
		}

		filename, err := cache.Store(c.Request().Context(), req.ImageData, req.URL, req.Platform)
		if err != nil {
			if errors.Is(err, sharecache.ErrInvalidInput) {
				return respondError(c, utils.NewValidationError(err.Error()))
			}
			logging.GetGlobalLogger().Error("Failed to store shared image", map[string]interface{}{
				"request_id": middleware.GetRequestID(c),
				"error":      err.Error(),
			})
			return respondError(c, utils.NewInternalServerError("Failed to store image"))
		}

		return c.JSON(http.StatusOK, models.ShareResponse{
			Success:  true,
			ImageURL: baseURL(c) + "/api/v1/share/" + filename,
			Filename: filename,
		})
	}
}

// ShareFetchHandler downloads a shared image
func ShareFetchHandler(cache *sharecache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		if cache == nil {
			return respondError(c, utils.NewServiceUnavailableError("Image sharing is not configured"))
		}

		filename := c.Param("filename")
		data, err := cache.Fetch(c.Request().Context(), filename)
		if err != nil {
			if errors.Is(err, sharecache.ErrNotFound) {
				return respondError(c, utils.NewNotFoundError("Image not found"))
			}
			return respondError(c, utils.NewInternalServerError("Failed to retrieve image"))
		}

		header := c.Response().Header()
		header.Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		header.Set(echo.HeaderCacheControl, "public, max-age=86400")
		return c.Blob(http.StatusOK, "image/jpeg", data)
	}
}

// MetadataHandler returns the Open Graph metadata of a page
func MetadataHandler(fetcher *analysis.MetadataFetcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		url := utils.NormalizeURL(c.QueryParam("url"))
		if url == "" {
			return respondError(c, utils.NewBadRequestError("URL is required"))
		}

		meta, err := fetcher.Fetch(c.Request().Context(), url)
		if err != nil {
			logging.GetGlobalLogger().Warn("Metadata fetch failed", map[string]interface{}{
				"request_id": middleware.GetRequestID(c),
				"url":        url,
				"error":      err.Error(),
			})
			return respondError(c, &utils.CustomError{Code: http.StatusBadGateway, Message: "Failed to fetch metadata", Detail: err.Error()})
		}

		return c.JSON(http.StatusOK, meta)
	}
}

// AnalyzeHandler renders a landing page and asks the LLM for a competitor analysis
func AnalyzeHandler(renderer Renderer, analyzer *analysis.Analyzer, maxPageChars int) echo.HandlerFunc {
	return func(c echo.Context) error {
		if analyzer == nil {
			return respondError(c, utils.NewServiceUnavailableError("LLM analysis is not configured"))
		}

		var req models.AnalyzeRequest
		if cerr := bindAndValidate(c, &req); cerr != nil {
			return respondError(c, utils.NewBadRequestError("URL is required"))
		}
		url := utils.NormalizeURL(req.URL)
		ctx := c.Request().Context()

		html, err := renderer.FetchRenderedHTML(ctx, url, nil)
		if err != nil {
			return respondError(c, utils.FromRenderError(err))
		}

		text := analysis.ExtractText(html, url, maxPageChars)
		result, err := analyzer.AnalyzeLandingPage(ctx, url, text)
		if err != nil {
			return respondAnalysisError(c, err)
		}

		return c.JSON(http.StatusOK, struct {
			Success bool `json:"success"`
			*analysis.LandingPageAnalysis
		}{true, result})
	}
}

// SEOHandler generates social share copy for a page
func SEOHandler(analyzer *analysis.Analyzer) echo.HandlerFunc {
	return func(c echo.Context) error {
		if analyzer == nil {
			return respondError(c, utils.NewServiceUnavailableError("LLM analysis is not configured"))
		}

		var req models.SEORequest
		if cerr := bindAndValidate(c, &req); cerr != nil {
			return respondError(c, utils.NewBadRequestError("URL is required"))
		}

		content, err := analyzer.GenerateSocialContent(c.Request().Context(), utils.NormalizeURL(req.URL), req.Title, req.Description)
		if err != nil {
			var unparsed *analysis.UnparsedResponseError
			if errors.As(err, &unparsed) {
				return c.JSON(http.StatusOK, models.UnparsedResponse{
					Raw:   unparsed.Raw,
					Error: "Failed to parse structured content",
				})
			}
			return respondAnalysisError(c, err)
		}

		return c.JSON(http.StatusOK, content)
	}
}

// ReviewHandler returns a free-form SEO and performance review of a site
func ReviewHandler(analyzer *analysis.Analyzer) echo.HandlerFunc {
	return func(c echo.Context) error {
		if analyzer == nil {
			return respondError(c, utils.NewServiceUnavailableError("LLM analysis is not configured"))
		}

		var req models.ReviewRequest
		if cerr := bindAndValidate(c, &req); cerr != nil {
			return respondError(c, utils.NewBadRequestError("URL is required"))
		}
		url := utils.NormalizeURL(req.URL)

		review, err := analyzer.ReviewSite(c.Request().Context(), url)
		if err != nil {
			return respondAnalysisError(c, err)
		}

		return c.JSON(http.StatusOK, models.ReviewResponse{Success: true, URL: url, Review: review})
	}
}

func respondAnalysisError(c echo.Context, err error) error {
	logging.GetGlobalLogger().Error("Analysis failed", map[string]interface{}{
		"request_id": middleware.GetRequestID(c),
		"error":      err.Error(),
	})

	var unparsed *analysis.UnparsedResponseError
	if errors.As(err, &unparsed) {
		return respondError(c, utils.NewLLMError("Failed to parse structured content"))
	}
	return respondError(c, utils.NewLLMError(err.Error()))
}

// ProxyHandler forwards a JSON body to a rendering endpoint and relays the reply as-is
func ProxyHandler(renderer Renderer) echo.HandlerFunc {
	return func(c echo.Context) error {
		op := rendering.Operation(strings.ToLower(c.Param("operation")))
		if !op.Valid() {
			return respondError(c, utils.NewNotFoundError("Unknown rendering operation"))
		}

		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return respondError(c, utils.NewBadRequestError("Failed to read request body"))
		}

		resp, err := renderer.Forward(c.Request().Context(), op, body)
		if err != nil {
			return respondError(c, utils.FromRenderError(err))
		}

		contentType := resp.ContentType
		if contentType == "" {
			contentType = echo.MIMEOctetStream
		}
		return c.Blob(resp.StatusCode, contentType, resp.Body)
	}
}
