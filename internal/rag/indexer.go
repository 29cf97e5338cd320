package rag

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"strconv"

	"sow_rag/internal/chunker"
	"sow_rag/internal/document"
	"sow_rag/internal/embedding"
	"sow_rag/internal/vectorstore"
)

// Metadata keys the Indexer adds to every chunk.
const (
	MetaSourceFile = "source_file"
	MetaFileName   = "file_name"
	MetaSection    = "section"
	MetaChunkIndex = "chunk_index"
)

// Indexer chunks documents, embeds the chunks and writes them to one
// collection. Re-indexing a document overwrites chunk IDs it produced
// before; stale chunks only disappear with ClearCollection.
type Indexer struct {
	store      vectorstore.Store
	embedder   embedding.Provider
	chunker    chunker.Chunker
	collection string
	log        *slog.Logger
}

// NewIndexer creates the collection if it does not exist yet.
func NewIndexer(ctx context.Context, store vectorstore.Store, embedder embedding.Provider, opts ...Option) (*Indexer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := store.GetOrCreateCollection(ctx, o.collection); err != nil {
		return nil, err
	}

	return &Indexer{
		store:      store,
		embedder:   embedder,
		chunker:    chunker.NewMarkdownChunker(chunker.Config{MaxChunkSize: o.maxChunkSize}),
		collection: o.collection,
		log:        o.log,
	}, nil
}

func (ix *Indexer) Collection() string { return ix.collection }

// IndexMarkdownFile indexes one UTF-8 markdown file and returns the number of
// chunks written.
func (ix *Indexer) IndexMarkdownFile(ctx context.Context, path string, metadata map[string]string) (int, error) {
	content, err := document.ReadText(path)
	if err != nil {
		return 0, err
	}

	return ix.IndexDocument(ctx, document.Document{
		Name:    document.Stem(path),
		Path:    path,
		Content: content,
	}, metadata)
}

// IndexDocument chunks doc and upserts one record per chunk with ID
// "{name}_{index}". All chunk texts are embedded in one batch; nothing is
// written if embedding fails.
func (ix *Indexer) IndexDocument(ctx context.Context, doc document.Document, metadata map[string]string) (int, error) {
	chunks := ix.chunker.Chunk(doc.Content)
	if len(chunks) == 0 {
		ix.log.Warn("document produced no chunks", "file", doc.Path)
		return 0, nil
	}

	records := ix.buildRecords(doc, chunks, metadata)

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Content
	}

	embeddings, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed %s: %w", doc.Path, err)
	}
	if len(embeddings) != len(records) {
		return 0, fmt.Errorf("failed to embed %s: got %d vectors for %d chunks", doc.Path, len(embeddings), len(records))
	}
	for i := range records {
		records[i].Embedding = embeddings[i]
	}

	if err := ix.store.Upsert(ctx, ix.collection, records); err != nil {
		return 0, err
	}

	ix.log.Info("indexed document",
		"file", doc.Path,
		"chunks", len(records),
		"chunker", ix.chunker.Name(),
		"collection", ix.collection,
	)
	return len(records), nil
}

func (ix *Indexer) buildRecords(doc document.Document, chunks []chunker.Chunk, metadata map[string]string) []vectorstore.Record {
	name := doc.Name
	if name == "" {
		name = document.Stem(doc.Path)
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, ch := range chunks {
		meta := maps.Clone(metadata)
		if meta == nil {
			meta = make(map[string]string, 4)
		}
		meta[MetaSourceFile] = doc.Path
		meta[MetaFileName] = filepath.Base(doc.Path)
		meta[MetaSection] = ch.Section
		meta[MetaChunkIndex] = strconv.Itoa(i)

		records[i] = vectorstore.Record{
			ID:       fmt.Sprintf("%s_%d", name, i),
			Content:  ch.Text,
			Metadata: meta,
		}
	}
	return records
}

// ClearCollection drops every chunk by deleting and recreating the
// collection. It does not coordinate with concurrent indexing.
func (ix *Indexer) ClearCollection(ctx context.Context) error {
	if err := ix.store.DeleteCollection(ctx, ix.collection); err != nil {
		return err
	}
	if err := ix.store.GetOrCreateCollection(ctx, ix.collection); err != nil {
		return err
	}
	ix.log.Info("cleared collection", "collection", ix.collection)
	return nil
}

func (ix *Indexer) Count(ctx context.Context) (int, error) {
	return ix.store.Count(ctx, ix.collection)
}
