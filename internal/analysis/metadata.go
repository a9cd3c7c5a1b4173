package analysis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"

	"webshot/internal/logging"
)

// PageMetadata is the preview information of a page
type PageMetadata struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	SiteName    string `json:"siteName,omitempty"`
}

// ExtractMetadata reads Open Graph tags from html, falling back to <title> and
// <meta name="description">. Open Graph values win when both are present.
func ExtractMetadata(html, pageURL string) PageMetadata {
	meta := PageMetadata{URL: pageURL}

	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(strings.NewReader(html)); err == nil {
		meta.Title = strings.TrimSpace(og.Title)
		meta.Description = strings.TrimSpace(og.Description)
		meta.SiteName = strings.TrimSpace(og.SiteName)
		if len(og.Images) > 0 && og.Images[0] != nil {
			meta.Image = resolveURL(pageURL, strings.TrimSpace(og.Images[0].URL))
		}
	}

	if meta.Title == "" || meta.Description == "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err == nil {
			if meta.Title == "" {
				meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
			}
			if meta.Description == "" {
				if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
					meta.Description = strings.TrimSpace(content)
				}
			}
		}
	}

	return meta
}

func resolveURL(base, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// MetadataFetcher downloads a page directly and extracts its metadata
type MetadataFetcher struct {
	httpClient   *http.Client
	maxPageBytes int64
	userAgent    string
	logger       logging.Logger
}

// NewMetadataFetcher creates a fetcher. A nil client gets a 15 second timeout.
func NewMetadataFetcher(httpClient *http.Client, logger logging.Logger) *MetadataFetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &MetadataFetcher{
		httpClient:   httpClient,
		maxPageBytes: 2 << 20,
		userAgent:    "webshot-metadata/1.0",
		logger:       logger,
	}
}

// Fetch GETs pageURL and returns its metadata
func (f *MetadataFetcher) Fetch(ctx context.Context, pageURL string) (*PageMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch URL: %s", http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}

	meta := ExtractMetadata(string(body), pageURL)

	f.logger.Debug("Page metadata extracted", map[string]interface{}{
		"url":       pageURL,
		"has_title": meta.Title != "",
		"has_image": meta.Image != "",
	})

	return &meta, nil
}
