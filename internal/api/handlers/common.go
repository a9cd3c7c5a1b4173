package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"webshot/internal/api/middleware"
	"webshot/internal/rendering"
	"webshot/pkg/models"
	"webshot/pkg/utils"
)

// Renderer is the part of the rendering client the handlers depend on
type Renderer interface {
	CaptureScreenshot(ctx context.Context, target rendering.Target, opts rendering.Options) ([]byte, error)
	RenderPDF(ctx context.Context, target rendering.Target, opts rendering.Options) ([]byte, error)
	FetchRenderedHTML(ctx context.Context, url string, opts rendering.Options) (string, error)
	ScrapeElements(ctx context.Context, url, selector string, opts rendering.Options) (interface{}, error)
	Forward(ctx context.Context, op rendering.Operation, body []byte) (*rendering.RawResponse, error)
	Presets() rendering.Presets
}

var requestValidator = validator.New()

// respondError writes err as an ErrorResponse with its HTTP status
func respondError(c echo.Context, err *utils.CustomError) error {
	return c.JSON(err.Code, models.ErrorResponse{
		Success:   false,
		Error:     err.Message,
		Message:   err.Detail,
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now(),
	})
}

// bindAndValidate decodes the request into req and runs its validate tags
func bindAndValidate(c echo.Context, req interface{}) *utils.CustomError {
	if err := c.Bind(req); err != nil {
		return utils.NewBadRequestError("Invalid request body")
	}
	if err := requestValidator.Struct(req); err != nil {
		return utils.NewValidationError(err.Error())
	}
	return nil
}

// imageExtension picks a file extension from the sniffed content type of data
func imageExtension(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}

// baseURL returns scheme://host of the incoming request
func baseURL(c echo.Context) string {
	scheme := c.Scheme()
	host := c.Request().Host
	return scheme + "://" + strings.TrimRight(host, "/")
}
