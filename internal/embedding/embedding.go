// Package embedding converts text into vectors for the vector store.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sow_rag/internal/config"
)

var ErrUnknownProvider = errors.New("unknown embedding provider")

// Provider turns text into fixed-length vectors. Identical text must map to
// vectors the store's distance metric treats consistently.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// New builds the provider selected by cfg.EmbedProvider.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (Provider, error) {
	if log == nil {
		log = slog.Default()
	}

	switch strings.ToLower(cfg.EmbedProvider) {
	case "ollama":
		p := NewOllama(cfg.OllamaURL, cfg.OllamaEmbedModel, WithOllamaLogger(log))
		if err := p.EnsureModel(ctx); err != nil {
			return nil, fmt.Errorf("ollama model check failed: %w", err)
		}
		return p, nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, ErrAPIKeyNotSet
		}
		opts := []OpenAIOption{WithEmbeddingModel(cfg.OpenAIEmbedModel)}
		if cfg.EmbedDimension > 0 {
			opts = append(opts, WithEmbeddingDimension(cfg.EmbedDimension))
		}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.OpenAIBaseURL))
		}
		return NewOpenAI(cfg.OpenAIAPIKey, opts...), nil
	case "hash":
		return NewHash(cfg.EmbedDimension), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.EmbedProvider)
	}
}
