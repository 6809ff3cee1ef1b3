package vision

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestNew_MissingKeyIsConfigError(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	_, err := New(context.Background(), Config{Provider: "googleai"}, zap.NewNop())
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "tesseract", Models: []string{"x"}}, zap.NewNop())
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestNew_OllamaConstructible(t *testing.T) {
	// Ollama needs no API key; construction does not contact the server.
	c, err := New(context.Background(), Config{Provider: "ollama", Models: []string{"llava"}}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Name() != "llava" {
		t.Errorf("Name() = %q", c.Name())
	}
}
