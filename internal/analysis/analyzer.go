package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"webshot/internal/logging"
)

// ErrNoJSON is returned when a model answer holds no JSON object
var ErrNoJSON = errors.New("could not extract JSON from model response")

// UnparsedResponseError carries a model answer that did not decode into the expected shape
type UnparsedResponseError struct {
	Raw string
	Err error
}

func (e *UnparsedResponseError) Error() string {
	return fmt.Sprintf("failed to parse structured content: %v", e.Err)
}

func (e *UnparsedResponseError) Unwrap() error {
	return e.Err
}

// Insight is a titled finding
type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ToneAspect is one dimension of the page's voice
type ToneAspect struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToneAnalysis describes the page's tone
type ToneAnalysis struct {
	Overall string       `json:"overall"`
	Aspects []ToneAspect `json:"aspects"`
}

// Recommendation is an actionable suggestion
type Recommendation struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// LandingPageAnalysis is the competitor review of a landing page
type LandingPageAnalysis struct {
	URL               string           `json:"url"`
	ValuePropositions []Insight        `json:"valuePropositions"`
	ToneAnalysis      ToneAnalysis     `json:"toneAnalysis"`
	Strengths         []Insight        `json:"strengths"`
	Recommendations   []Recommendation `json:"recommendations"`
}

// SocialPost is a title and description sized for one network
type SocialPost struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SocialContent holds share copy per network
type SocialContent struct {
	Twitter  SocialPost `json:"twitter"`
	LinkedIn SocialPost `json:"linkedin"`
	Facebook SocialPost `json:"facebook"`
	Hashtags []string   `json:"hashtags"`
}

// Analyzer turns page content into marketing and SEO insight
type Analyzer struct {
	completer   Completer
	maxTokens   int
	temperature float64
	logger      logging.Logger
}

// NewAnalyzer creates an analyzer. maxTokens and temperature apply to landing
// page analysis; the shorter prompts use their own limits.
func NewAnalyzer(completer Completer, maxTokens int, temperature float64, logger logging.Logger) *Analyzer {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Analyzer{
		completer:   completer,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Provider names the model backend
func (a *Analyzer) Provider() string {
	return a.completer.Name()
}

// AnalyzeLandingPage reviews pageText as a competitor landing page
func (a *Analyzer) AnalyzeLandingPage(ctx context.Context, pageURL, pageText string) (*LandingPageAnalysis, error) {
	if strings.TrimSpace(pageText) == "" {
		return nil, errors.New("failed to extract page content")
	}

	answer, err := a.complete(ctx, "landing_page", CompletionRequest{
		System:      "You are an expert landing page analyst specializing in marketing, UX, and competitor analysis.",
		Prompt:      buildLandingPagePrompt(pageURL, pageText),
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		return nil, err
	}

	var result LandingPageAnalysis
	if err := decodeJSON(answer, &result); err != nil {
		return nil, &UnparsedResponseError{Raw: answer, Err: err}
	}

	result.URL = pageURL
	if result.ValuePropositions == nil {
		result.ValuePropositions = []Insight{}
	}
	if result.Strengths == nil {
		result.Strengths = []Insight{}
	}
	if result.Recommendations == nil {
		result.Recommendations = []Recommendation{}
	}
	if result.ToneAnalysis.Aspects == nil {
		result.ToneAnalysis.Aspects = []ToneAspect{}
	}

	return &result, nil
}

// GenerateSocialContent writes share titles, descriptions and hashtags for a page
func (a *Analyzer) GenerateSocialContent(ctx context.Context, pageURL, title, description string) (*SocialContent, error) {
	answer, err := a.complete(ctx, "social_content", CompletionRequest{
		System:      "You are an expert SEO copywriter specializing in social media optimization.",
		Prompt:      buildSocialPrompt(pageURL, title, description),
		MaxTokens:   1024,
		Temperature: a.temperature,
	})
	if err != nil {
		return nil, err
	}

	var result SocialContent
	if err := decodeJSON(answer, &result); err != nil {
		return nil, &UnparsedResponseError{Raw: answer, Err: err}
	}
	if result.Hashtags == nil {
		result.Hashtags = []string{}
	}

	return &result, nil
}

// ReviewSite returns a free-form SEO, performance and edge-caching review of pageURL
func (a *Analyzer) ReviewSite(ctx context.Context, pageURL string) (string, error) {
	return a.complete(ctx, "site_review", CompletionRequest{
		System: "You are a professional SEO and website optimization expert. Analyze the website URL provided " +
			"and give detailed feedback on SEO, performance, and CDN and edge caching optimizations.",
		Prompt: fmt.Sprintf("Analyze this website for SEO, performance, and edge optimization opportunities: %s. "+
			"Organize your response in sections with emoji icons.", pageURL),
		MaxTokens:   1024,
		Temperature: 0.5,
	})
}

func (a *Analyzer) complete(ctx context.Context, task string, req CompletionRequest) (string, error) {
	start := time.Now()
	answer, err := a.completer.Complete(ctx, req)
	if err != nil {
		a.logger.Error("LLM completion failed", map[string]interface{}{
			"task":     task,
			"provider": a.completer.Name(),
			"error":    err.Error(),
		})
		return "", err
	}

	a.logger.Info("LLM completion finished", map[string]interface{}{
		"task":         task,
		"provider":     a.completer.Name(),
		"prompt_chars": len(req.Prompt),
		"answer_chars": len(answer),
		"duration_ms":  time.Since(start).Milliseconds(),
	})
	return answer, nil
}

// ExtractJSON returns the text from the first '{' to the last '}' of s
func ExtractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

func decodeJSON(answer string, v interface{}) error {
	raw, ok := ExtractJSON(answer)
	if !ok {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("invalid JSON in model response: %w", err)
	}
	return nil
}

func buildLandingPagePrompt(pageURL, pageText string) string {
	return fmt.Sprintf(`Analyze this landing page content for a competitor analysis:

URL: %s

PAGE CONTENT:
%s

Please provide a comprehensive analysis with the following sections:

1. Value Propositions: Identify the main value propositions and unique selling points on this landing page.
2. Tone Analysis: Analyze the tone, voice, and style of the content.
3. Strengths: Identify the key strengths of this landing page.
4. Recommendations: Provide actionable recommendations on how to create a landing page that differentiates from this competitor.

Format the response as a JSON object with the following structure:
{
  "valuePropositions": [{"title": "...", "description": "..."}],
  "toneAnalysis": {
    "overall": "...",
    "aspects": [{"name": "...", "description": "..."}]
  },
  "strengths": [{"title": "...", "description": "..."}],
  "recommendations": [{"title": "...", "description": "...", "tags": ["..."]}]
}

Return ONLY the JSON object.`, pageURL, pageText)
}

func buildSocialPrompt(pageURL, title, description string) string {
	if title == "" {
		title = "Not provided"
	}
	if description == "" {
		description = "Not provided"
	}
	return fmt.Sprintf(`Generate SEO-optimized social media content for the following webpage:

URL: %s
Original Title: %s
Original Description: %s

Please provide:
1. A Twitter title (max 60 characters)
2. A Twitter description (max 200 characters)
3. A LinkedIn title (max 70 characters)
4. A LinkedIn description (max 300 characters)
5. A Facebook title (max 80 characters)
6. A Facebook description (max 250 characters)
7. 5-7 relevant hashtags

Format the response as a JSON object with the following structure:
{
  "twitter": {"title": "...", "description": "..."},
  "linkedin": {"title": "...", "description": "..."},
  "facebook": {"title": "...", "description": "..."},
  "hashtags": ["...", "..."]
}

Make the content engaging, click-worthy, but not clickbait. Maintain accuracy.`, pageURL, title, description)
}
