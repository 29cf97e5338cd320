package rag

import (
	"context"
	"fmt"
	"log/slog"

	"sow_rag/internal/embedding"
	"sow_rag/internal/vectorstore"
)

// DefaultResults is used when Search is asked for a non-positive count.
const DefaultResults = 5

// SearchResult is one retrieved chunk. Score is the store's distance: lower
// means more similar.
type SearchResult struct {
	ID       string
	Content  string
	Metadata map[string]string
	Score    float32
}

func (r SearchResult) Section() string { return r.Metadata[MetaSection] }

func (r SearchResult) Source() string { return r.Metadata[MetaFileName] }

// Retriever runs semantic queries against one collection.
type Retriever struct {
	store      vectorstore.Store
	embedder   embedding.Provider
	collection string
	log        *slog.Logger
}

// NewRetriever creates the collection if it does not exist yet, so queries
// against an empty store return no results instead of failing.
func NewRetriever(ctx context.Context, store vectorstore.Store, embedder embedding.Provider, opts ...Option) (*Retriever, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := store.GetOrCreateCollection(ctx, o.collection); err != nil {
		return nil, err
	}

	return &Retriever{
		store:      store,
		embedder:   embedder,
		collection: o.collection,
		log:        o.log,
	}, nil
}

// Search returns up to n chunks most similar to query whose metadata equals
// every entry in filters. Ties keep the store's order.
func (r *Retriever) Search(ctx context.Context, query string, n int, filters map[string]string) ([]SearchResult, error) {
	if n <= 0 {
		n = DefaultResults
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	filter := vectorstore.BuildFilter(filters)
	matches, err := r.store.Query(ctx, r.collection, vec, n, filter)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, SearchResult{
			ID:       m.ID,
			Content:  m.Content,
			Metadata: m.Metadata,
			Score:    m.Distance,
		})
	}

	r.log.Debug("search",
		"collection", r.collection,
		"filter", filter,
		"requested", n,
		"results", len(results),
	)
	return results, nil
}

// SearchByClient restricts Search to chunks tagged with clientID.
func (r *Retriever) SearchByClient(ctx context.Context, query, clientID string, n int) ([]SearchResult, error) {
	return r.Search(ctx, query, n, map[string]string{"client_id": clientID})
}

// SearchByProduct restricts Search to chunks tagged with product.
func (r *Retriever) SearchByProduct(ctx context.Context, query, product string, n int) ([]SearchResult, error) {
	return r.Search(ctx, query, n, map[string]string{"product": product})
}
