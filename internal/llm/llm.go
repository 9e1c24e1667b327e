package llm

import (
	"context"
	"fmt"

	"garden-planner/internal/config"
	"garden-planner/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// NewTextGenerator returns the client for cfg.LLMProvider. Callers should
// close the result when it implements Closer.
func NewTextGenerator(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}
	switch cfg.LLMProvider {
	case "gemini":
		return NewGeminiClient(ctx, cfg)
	default:
		return NewGroqClient(cfg), nil
	}
}

// CloseIfCloser releases gen when it holds resources.
func CloseIfCloser(gen TextGenerator) error {
	if c, ok := gen.(Closer); ok {
		return c.Close()
	}
	return nil
}

func errNoContent(provider string) error {
	return fmt.Errorf("%s: no content generated", provider)
}
