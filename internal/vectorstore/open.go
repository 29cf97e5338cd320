package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"sow_rag/internal/config"
)

// Open builds the backend selected by cfg.VectorStore.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch strings.ToLower(cfg.VectorStore) {
	case "", "chromem":
		store, err := NewChromem(cfg.ChromaDir())
		if err != nil {
			return nil, err
		}
		return store, nil
	case "pgvector", "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("pgvector backend needs POSTGRES_DSN")
		}
		store, err := NewPgVector(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.VectorStore)
	}
}
