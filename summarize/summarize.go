// Package summarize compresses knowledge-base text into a short factual gist
// via an OpenAI-compatible chat completion endpoint.
//
// The adapter never fails upward: missing credentials, network errors,
// timeouts and malformed responses all yield an empty gist, and the caller
// falls back to the uncompressed knowledge-base text. Availability beats
// compression.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Summarizer produces a gist of the given text, or "" when summarization is
// unavailable or failed.
type Summarizer interface {
	Summarize(ctx context.Context, text string) string
}

// Config holds the settings for the OpenAI-backed summarizer.
type Config struct {
	APIKey   string
	BaseURL  string // optional; empty uses the default OpenAI endpoint
	Model    string
	Timeout  time.Duration
	MaxWords int
}

// New returns an OpenAI-backed Summarizer, or Disabled when no API key is
// configured. Missing credentials are a process-wide condition, treated
// identically to a transient failure at every call site.
func New(cfg Config, logger *slog.Logger) Summarizer {
	if cfg.APIKey == "" {
		if logger != nil {
			logger.Warn("summarizer disabled: no API key configured")
		}
		return Disabled{}
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = 150
	}
	if logger == nil {
		logger = slog.Default()
	}

	// No in-request retries: a failed summarization falls back to raw
	// knowledge-base text and the next read retries instead.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &client{
		api:      openai.NewClient(opts...),
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		maxWords: cfg.MaxWords,
		logger:   logger,
	}
}

// Disabled is the no-op Summarizer used when credentials are absent.
type Disabled struct{}

// Summarize always reports failure.
func (Disabled) Summarize(context.Context, string) string { return "" }

type client struct {
	api      openai.Client
	model    string
	timeout  time.Duration
	maxWords int
	logger   *slog.Logger
}

const systemPrompt = "You compress business knowledge bases into short factual summaries. " +
	"Preserve every named entity verbatim: the organization name, every project name " +
	"with its exact URL, service names, team member names, and all contact or social URLs. " +
	"Never invent or alter a URL. Output plain text, no markdown headers."

func (c *client) Summarize(ctx context.Context, text string) string {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Summarize the following knowledge base in at most %d words. Keep all names and URLs exact.\n\n%s",
		c.maxWords, text)

	completion, err := c.api.Chat.Completions.New(timeoutCtx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Model: c.model,
	})
	if err != nil {
		c.logger.Warn("summarize failed", "error", err)
		return ""
	}
	if len(completion.Choices) == 0 {
		c.logger.Warn("summarize: no choices returned")
		return ""
	}

	gist := strings.TrimSpace(completion.Choices[0].Message.Content)
	if gist == "" {
		c.logger.Warn("summarize: empty completion")
	}
	return gist
}
