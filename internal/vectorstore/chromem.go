package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime"

	"github.com/philippgille/chromem-go"
)

var errNoEmbedding = errors.New("embeddings must be computed before they reach the store")

// Chromem is an embedded store backed by chromem-go. With a directory it
// persists every collection to disk; without one it lives in memory.
type Chromem struct {
	db *chromem.DB
}

// NewChromem opens (or creates) a persistent database in dir. An empty dir
// gives an in-memory database.
func NewChromem(dir string) (*Chromem, error) {
	if dir == "" {
		return &Chromem{db: chromem.NewDB()}, nil
	}

	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open chromem db at %s: %w", dir, err)
	}
	return &Chromem{db: db}, nil
}

// noEmbedding keeps chromem from falling back to its default OpenAI function.
func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedding
}

func (c *Chromem) collection(name string) (*chromem.Collection, error) {
	coll, err := c.db.GetOrCreateCollection(name, nil, noEmbedding)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection %s: %w", name, err)
	}
	return coll, nil
}

func (c *Chromem) GetOrCreateCollection(_ context.Context, name string) error {
	_, err := c.collection(name)
	return err
}

// DeleteCollection is a no-op for unknown collections.
func (c *Chromem) DeleteCollection(_ context.Context, name string) error {
	if err := c.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	return nil
}

func (c *Chromem) Upsert(ctx context.Context, collection string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	coll, err := c.collection(collection)
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, 0, len(records))
	for _, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("record %s: %w", r.ID, errNoEmbedding)
		}
		docs = append(docs, chromem.Document{
			ID:        r.ID,
			Content:   r.Content,
			Metadata:  maps.Clone(r.Metadata),
			Embedding: r.Embedding,
		})
	}

	if err := coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents to %s: %w", collection, err)
	}
	return nil
}

func (c *Chromem) Query(ctx context.Context, collection string, embedding []float32, n int, filter Filter) ([]Match, error) {
	coll, err := c.collection(collection)
	if err != nil {
		return nil, err
	}

	// chromem rejects n larger than the collection
	n = min(n, coll.Count())
	if n <= 0 {
		return nil, nil
	}

	var where map[string]string
	if conds := Conditions(filter); len(conds) > 0 {
		where = make(map[string]string, len(conds))
		for _, cond := range conds {
			where[cond.Key] = cond.Value
		}
	}

	results, err := coll.QueryEmbedding(ctx, embedding, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, Match{
			ID:       r.ID,
			Content:  r.Content,
			Metadata: maps.Clone(r.Metadata),
			Distance: 1 - r.Similarity,
		})
	}
	return matches, nil
}

func (c *Chromem) Count(_ context.Context, collection string) (int, error) {
	coll := c.db.GetCollection(collection, noEmbedding)
	if coll == nil {
		return 0, nil
	}
	return coll.Count(), nil
}

// Close is a no-op: persistent chromem writes through on every change.
func (c *Chromem) Close() error { return nil }
