package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"thirdvoice.ai/third-voice/internal/config"
)

var (
	ErrEmptyCompletion   = errors.New("completion endpoint returned no content")
	ErrCompletionTimeout = errors.New("completion request timed out")
	ErrCompletionFailed  = errors.New("completion request failed")
)

type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

type Completion struct {
	Text  string
	Model string
}

// Completer sends one system+user exchange to a hosted model. Calls are
// not retried.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// NewCompleter builds the client for cfg.LLMProvider. The returned close
// function releases provider resources.
func NewCompleter(ctx context.Context, cfg *config.Config) (Completer, func() error, error) {
	timeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second
	switch cfg.LLMProvider {
	case config.ProviderOpenRouter:
		c := NewOpenRouterClient(cfg.OpenRouterAPIURL, cfg.OpenRouterAPIKey, cfg.LLMModel, timeout)
		return c, func() error { return nil }, nil
	case config.ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, timeout)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}
