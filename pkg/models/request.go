package models

// ShareRequest stores a rendered image for later download
type ShareRequest struct {
	ImageData string `json:"imageData" validate:"required"`
	URL       string `json:"url" validate:"required"`
	Platform  string `json:"platform" validate:"required,max=32"`
}

// AnalyzeRequest asks for a landing page analysis of URL
type AnalyzeRequest struct {
	URL string `json:"url" validate:"required"`
}

// SEORequest asks for social share copy for a page
type SEORequest struct {
	URL         string `json:"url" validate:"required"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ReviewRequest asks for a free-form SEO and performance review of URL
type ReviewRequest struct {
	URL string `json:"url" validate:"required"`
}

// RenderSiteQuery are the query parameters of the social preview endpoint
type RenderSiteQuery struct {
	URL    string `query:"url" validate:"required"`
	Width  int    `query:"width" validate:"omitempty,min=100,max=3840"`
	Height int    `query:"height" validate:"omitempty,min=100,max=2160"`
}
