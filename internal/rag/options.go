package rag

import (
	"log/slog"

	"sow_rag/internal/chunker"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "sow_documents"

type options struct {
	collection   string
	maxChunkSize int
	log          *slog.Logger
}

func defaultOptions() options {
	return options{
		collection:   DefaultCollection,
		maxChunkSize: chunker.DefaultMaxChunkSize,
		log:          slog.Default(),
	}
}

// Option configures an Indexer or a Retriever.
type Option func(*options)

// WithCollection selects the collection. An empty name keeps DefaultCollection.
func WithCollection(name string) Option {
	return func(o *options) {
		if name != "" {
			o.collection = name
		}
	}
}

// WithMaxChunkSize only affects the Indexer.
func WithMaxChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxChunkSize = n
		}
	}
}

// WithLogger replaces slog.Default. A nil logger is ignored.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}
