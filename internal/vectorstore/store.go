// Package vectorstore persists chunk embeddings in named collections and
// answers nearest-neighbour queries restricted by metadata filters.
package vectorstore

import (
	"context"
	"errors"
)

var ErrUnknownBackend = errors.New("unknown vector store backend")

// Record is one chunk as written to a collection.
type Record struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// Match is a query hit. Distance is cosine distance; lower is more similar.
type Match struct {
	ID       string
	Content  string
	Metadata map[string]string
	Distance float32
}

// Store is the boundary to the vector database. GetOrCreateCollection and
// Upsert create missing collections; queries against a missing collection
// return no matches. Upsert overwrites records with the same ID.
type Store interface {
	GetOrCreateCollection(ctx context.Context, name string) error
	DeleteCollection(ctx context.Context, name string) error
	Upsert(ctx context.Context, collection string, records []Record) error
	// Query returns at most n matches in ascending distance order.
	Query(ctx context.Context, collection string, embedding []float32, n int, filter Filter) ([]Match, error)
	Count(ctx context.Context, collection string) (int, error)
	Close() error
}
