// Package vision wraps the remote vision-language model boundary. The model
// is a black box: one instruction string plus one image in, free text out.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no usable model can be constructed,
// typically because the API key is missing. Callers surface this as a
// configuration error rather than an extraction failure.
var ErrNotConfigured = errors.New("vision: no usable model configured")

// Model is the request/response boundary to the vision-language model.
type Model interface {
	// Generate sends the instruction and one image and returns the model's
	// free-text response. An empty response means no text was detected.
	Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
	// Name reports the model identifier in use.
	Name() string
}

// Config selects the provider and the ordered model fallback chain.
type Config struct {
	Provider string   `yaml:"provider"`
	Models   []string `yaml:"models"`
	// BaseURL overrides the OpenAI-compatible endpoint; ServerURL the Ollama host.
	BaseURL   string `yaml:"base_url"`
	ServerURL string `yaml:"server_url"`
}

// Client implements Model over a langchaingo provider.
type Client struct {
	provider string
	model    string
	llm      llms.Model
}

// New walks cfg.Models in order and returns a client for the first identifier
// that can be instantiated. When none can, it returns ErrNotConfigured with
// the underlying reason attached.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = "googleai"
	}
	models := cfg.Models
	if len(models) == 0 {
		models = []string{"gemini-2.0-flash-exp", "gemini-2.5-flash", "gemini-2.5-flash-lite"}
	}

	var lastErr error
	for _, name := range models {
		llm, err := newProvider(ctx, provider, name, cfg)
		if err != nil {
			logger.Debug("model not constructible, trying next",
				zap.String("provider", provider), zap.String("model", name), zap.Error(err))
			lastErr = err
			continue
		}
		logger.Info("vision model selected", zap.String("provider", provider), zap.String("model", name))
		return &Client{provider: provider, model: name, llm: llm}, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, lastErr)
	}
	return nil, ErrNotConfigured
}

func newProvider(ctx context.Context, provider, model string, cfg Config) (llms.Model, error) {
	switch provider {
	case "googleai":
		key := os.Getenv("GEMINI_API_KEY")
		if key == "" {
			key = os.Getenv("GOOGLE_API_KEY")
		}
		if key == "" {
			return nil, errors.New("GEMINI_API_KEY is not set")
		}
		return googleai.New(ctx, googleai.WithAPIKey(key), googleai.WithDefaultModel(model))
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, errors.New("OPENAI_API_KEY is not set")
		}
		opts := []openai.Option{openai.WithToken(key), openai.WithModel(model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)
	case "ollama":
		host := cfg.ServerURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = "http://127.0.0.1:11434"
		}
		return ollama.New(ollama.WithModel(model), ollama.WithServerURL(host))
	case "anthropic":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is not set")
		}
		return anthropic.New(anthropic.WithModel(model), anthropic.WithToken(key))
	default:
		return nil, fmt.Errorf("unsupported vision provider: %s", provider)
	}
}

// Generate sends one (prompt, image) request and returns the trimmed text.
func (c *Client) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}

	// OpenAI-compatible endpoints take images as data URLs; the rest take raw bytes.
	var imagePart llms.ContentPart
	if c.provider == "openai" {
		imagePart = llms.ImageURLPart("data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image))
	} else {
		imagePart = llms.BinaryPart(mimeType, image)
	}

	completion, err := c.llm.GenerateContent(ctx, []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{imagePart, llms.TextPart(prompt)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision model request: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(completion.Choices[0].Content), nil
}

// Name reports the selected model identifier.
func (c *Client) Name() string {
	return c.model
}
