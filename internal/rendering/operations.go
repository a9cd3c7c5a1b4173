package rendering

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

func (t Target) validate(op Operation) error {
	if strings.TrimSpace(t.URL) == "" && strings.TrimSpace(t.HTML) == "" {
		return &InvalidInputError{Operation: op, Reason: "either url or html must be provided"}
	}
	return nil
}

func (t Target) payload() Options {
	payload := Options{}
	if strings.TrimSpace(t.URL) != "" {
		payload["url"] = t.URL
	}
	if strings.TrimSpace(t.HTML) != "" {
		payload["html"] = t.HTML
	}
	return payload
}

// build starts from the operation's required fields, layers the default blocks,
// then the caller's options. Later layers win at the top level only.
func build(required Options, defaults []Options, opts Options) Options {
	payload := MergeShallow(Options{}, required)
	for _, d := range defaults {
		MergeShallow(payload, d)
	}
	return MergeShallow(payload, opts)
}

func (c *Client) screenshotPayload(target Target, opts Options) Options {
	return build(target.payload(), []Options{
		c.presets.Screenshot.Options(),
		c.presets.Viewport.Options(),
		c.presets.Navigation.Options(),
	}, opts)
}

func (c *Client) pdfPayload(target Target, opts Options) Options {
	return build(target.payload(), []Options{
		c.presets.PDF.Options(),
		c.presets.Navigation.Options(),
	}, opts)
}

func (c *Client) contentPayload(url string, opts Options) Options {
	return build(Options{"url": url}, []Options{c.presets.Navigation.Options()}, opts)
}

func (c *Client) scrapePayload(url, selector string, opts Options) Options {
	return build(Options{
		"url":       url,
		"selectors": []string{selector},
	}, []Options{c.presets.Navigation.Options()}, opts)
}

// CaptureScreenshot renders the target and returns the image bytes unchanged
func (c *Client) CaptureScreenshot(ctx context.Context, target Target, opts Options) ([]byte, error) {
	if err := target.validate(OperationScreenshot); err != nil {
		return nil, err
	}
	return c.do(ctx, OperationScreenshot, c.screenshotPayload(target, opts))
}

// RenderPDF renders the target as a PDF document
func (c *Client) RenderPDF(ctx context.Context, target Target, opts Options) ([]byte, error) {
	if err := target.validate(OperationPDF); err != nil {
		return nil, err
	}
	return c.do(ctx, OperationPDF, c.pdfPayload(target, opts))
}

// FetchRenderedHTML returns the page's HTML after scripts have run. A JSON
// {"success":..., "result":"<html>"} reply is unwrapped to the result string.
func (c *Client) FetchRenderedHTML(ctx context.Context, url string, opts Options) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", &InvalidInputError{Operation: OperationContent, Reason: "url is required"}
	}

	body, err := c.do(ctx, OperationContent, c.contentPayload(url, opts))
	if err != nil {
		return "", err
	}

	var envelope struct {
		Success *bool   `json:"success"`
		Result  *string `json:"result"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Success != nil && envelope.Result != nil {
		return *envelope.Result, nil
	}
	return string(body), nil
}

// ScrapeElements returns the decoded reply for elements matching selector.
// The structure is whatever the service returns.
func (c *Client) ScrapeElements(ctx context.Context, url, selector string, opts Options) (interface{}, error) {
	if strings.TrimSpace(url) == "" {
		return nil, &InvalidInputError{Operation: OperationScrape, Reason: "url is required"}
	}
	if strings.TrimSpace(selector) == "" {
		return nil, &InvalidInputError{Operation: OperationScrape, Reason: "selector is required"}
	}

	body, err := c.do(ctx, OperationScrape, c.scrapePayload(url, selector, opts))
	if err != nil {
		return nil, err
	}

	var result interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode scrape response: %w", err)
	}
	return result, nil
}
