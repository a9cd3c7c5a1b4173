package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"webshot/internal/config"
)

// CompletionRequest is a single-turn prompt
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Completer answers a prompt with text
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Name() string
}

// ClaudeCompleter implements Completer with Anthropic's Messages API
type ClaudeCompleter struct {
	client anthropic.Client
	model  string
}

// NewClaudeCompleter creates a Claude-backed completer
func NewClaudeCompleter(cfg *config.Config) (*ClaudeCompleter, error) {
	if cfg.LLM.APIKey == "" {
		return nil, errors.New("Claude API key not configured - set LLM_API_KEY environment variable")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.LLM.APIKey)}
	if cfg.LLM.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.LLM.Timeout))
	}

	model := cfg.LLM.Model
	if model == "" {
		model = string(anthropic.ModelClaude3_7SonnetLatest)
	}

	return &ClaudeCompleter{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

func (c *ClaudeCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: req.Prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	start := time.Now()
	response, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to call Claude API: %w", err)
	}

	var b strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text content in Claude response after %s", time.Since(start).Round(time.Millisecond))
	}

	return b.String(), nil
}

func (c *ClaudeCompleter) Name() string {
	return "claude"
}
