// Package llm talks to an OpenAI-compatible chat-completions service.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/time/rate"

	"PaperCast/internal/config"
	"PaperCast/internal/ports"
)

// Client sends single-prompt requests to one model tier. Quality tiers and
// request pacing are resolved here so callers only ever see prompt in,
// text out.
type Client struct {
	api     openai.Client
	model   string
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ports.ChatModel = (*Client)(nil)

// New resolves the requested tier against configuration and builds a client
// for it. An empty tier selects the configured default; an unknown tier
// falls back to the default tier as well. Endpoint and model override the
// tier's values when non-empty.
func New(cfg config.LLMConfig, tier, endpoint, model string, logger *slog.Logger) *Client {
	selected, ok := cfg.Tiers[tier]
	if !ok {
		selected = cfg.Tiers[cfg.DefaultTier]
	}

	baseURL := cfg.Endpoint
	if selected.Endpoint != "" {
		baseURL = selected.Endpoint
	}
	if endpoint != "" {
		baseURL = endpoint
	}
	if model == "" {
		model = selected.Model
	}

	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		api:     openai.NewClient(opts...),
		model:   model,
		limiter: limiter,
		logger:  logger,
	}
}

// Complete sends one user prompt and returns the trimmed reply text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.model == "" {
		return "", fmt.Errorf("chat model is not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	reply := strings.TrimSpace(completion.Choices[0].Message.Content)
	if c.logger != nil {
		c.logger.Debug("chat completion done", "model", c.model, "prompt_len", len(prompt), "reply_len", len(reply))
	}
	return reply, nil
}
