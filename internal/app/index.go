package app

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode"

	"sow_rag/internal/document"
)

// Corpus metadata keys and values.
const (
	MetaDocType  = "doc_type"
	MetaYear     = "year"
	MetaClientID = "client_id"
	MetaProduct  = "product"

	DocTypeHistoricalSOW = "historical_sow"
	DocTypeProductKB     = "product_kb"

	unknown = "unknown"
)

// ErrDuplicateName is returned when two corpus files share a name and would
// overwrite each other's chunks.
var ErrDuplicateName = errors.New("duplicate document name")

// IndexSummary reports one corpus indexing run.
type IndexSummary struct {
	Collection     string `json:"collection"`
	HistoricalSOWs int    `json:"historical_sows"`
	ProductDocs    int    `json:"product_docs"`
	Chunks         int    `json:"chunks"`
}

// IndexCorpus rebuilds the collection from the data directory: historical
// SOWs first, then the product knowledge base. The manifest is rewritten.
func (a *App) IndexCorpus(ctx context.Context) (IndexSummary, error) {
	summary := IndexSummary{Collection: a.indexer.Collection()}

	sows, err := corpusFiles(a.cfg.HistoricalSOWDir(), document.IsMarkdown)
	if err != nil {
		return summary, err
	}
	products, err := corpusFiles(a.cfg.ProductKBDir(), document.CanProcess)
	if err != nil {
		return summary, err
	}
	// chunk IDs are derived from the file stem
	if err := uniqueStems(append(slices.Clone(sows), products...)); err != nil {
		return summary, err
	}

	if err := a.indexer.ClearCollection(ctx); err != nil {
		return summary, err
	}

	absDataDir, err := filepath.Abs(a.cfg.DataDir)
	if err != nil {
		return summary, fmt.Errorf("failed to get absolute data dir: %w", err)
	}
	a.manifest = newManifest(a.indexer.Collection())
	a.manifest.DataPath = absDataDir

	if sows == nil {
		a.log.Warn("historical SOW directory not found", "dir", a.cfg.HistoricalSOWDir())
	}
	for _, path := range sows {
		n, err := a.indexFile(ctx, path, historicalMetadata(document.Stem(path)))
		if err != nil {
			return summary, err
		}
		summary.HistoricalSOWs++
		summary.Chunks += n
	}

	if products == nil {
		a.log.Warn("product knowledge base directory not found", "dir", a.cfg.ProductKBDir())
	}
	for _, path := range products {
		n, err := a.indexFile(ctx, path, productMetadata(document.Stem(path)))
		if err != nil {
			return summary, err
		}
		summary.ProductDocs++
		summary.Chunks += n
	}

	a.manifest.IndexedAt = time.Now()
	if err := a.saveManifest(); err != nil {
		return summary, fmt.Errorf("failed to save index manifest: %w", err)
	}

	a.log.Info("indexing complete",
		"collection", summary.Collection,
		"historical_sows", summary.HistoricalSOWs,
		"product_docs", summary.ProductDocs,
		"chunks", summary.Chunks,
	)
	return summary, nil
}

// AddDocument indexes a single file without clearing the collection.
// Metadata not given explicitly is derived from the file's location: files
// under historical_sows or product_kb get the same metadata as IndexCorpus
// would assign.
func (a *App) AddDocument(ctx context.Context, path string, metadata map[string]string) (int, error) {
	if !document.CanProcess(path) {
		return 0, fmt.Errorf("%w: %s", document.ErrUnsupportedFormat, filepath.Ext(path))
	}

	meta := map[string]string{}
	switch filepath.Base(filepath.Dir(path)) {
	case filepath.Base(a.cfg.HistoricalSOWDir()):
		meta = historicalMetadata(document.Stem(path))
	case filepath.Base(a.cfg.ProductKBDir()):
		meta = productMetadata(document.Stem(path))
	}
	maps.Copy(meta, metadata)

	n, err := a.indexFile(ctx, path, meta)
	if err != nil {
		return 0, err
	}

	if a.manifest.DataPath == "" {
		if abs, err := filepath.Abs(a.cfg.DataDir); err == nil {
			a.manifest.DataPath = abs
		}
	}
	if err := a.saveManifest(); err != nil {
		return n, fmt.Errorf("failed to save index manifest: %w", err)
	}
	return n, nil
}

// Clear empties the collection and the manifest.
func (a *App) Clear(ctx context.Context) error {
	if err := a.indexer.ClearCollection(ctx); err != nil {
		return err
	}
	dataPath := a.manifest.DataPath
	a.manifest = newManifest(a.indexer.Collection())
	a.manifest.DataPath = dataPath
	return a.saveManifest()
}

func (a *App) indexFile(ctx context.Context, path string, metadata map[string]string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var n int
	if document.IsMarkdown(path) {
		n, err = a.indexer.IndexMarkdownFile(ctx, path, metadata)
	} else {
		var doc document.Document
		if doc, err = document.Load(path); err == nil {
			n, err = a.indexer.IndexDocument(ctx, doc, metadata)
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to index %s: %w", path, err)
	}

	a.manifest.Files[a.manifestKey(path)] = FileInfo{
		Path:         path,
		DocType:      metadata[MetaDocType],
		Chunks:       n,
		LastModified: info.ModTime(),
		Size:         info.Size(),
	}
	return n, nil
}

func (a *App) manifestKey(path string) string {
	if rel, err := filepath.Rel(a.cfg.DataDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

func uniqueStems(paths []string) error {
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		stem := document.Stem(path)
		if prev, ok := seen[stem]; ok {
			return fmt.Errorf("%w %q: %s and %s", ErrDuplicateName, stem, prev, path)
		}
		seen[stem] = path
	}
	return nil
}

// corpusFiles lists the files in dir accepted by keep, sorted by name. A
// missing directory yields nil.
func corpusFiles(dir string, keep func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	files := []string{}
	for _, e := range entries {
		if e.IsDir() || !keep(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// historicalMetadata derives metadata from a name like
// "SOW-2023-001-acme-payments": year is the second dash-separated part,
// client and product the fourth and fifth.
func historicalMetadata(stem string) map[string]string {
	parts := strings.Split(stem, "-")

	meta := map[string]string{
		MetaDocType: DocTypeHistoricalSOW,
		MetaYear:    unknown,
	}
	if len(parts) > 1 {
		meta[MetaYear] = parts[1]
	}
	if len(parts) >= 4 {
		meta[MetaClientID] = parts[3]
		meta[MetaProduct] = unknown
		if len(parts) > 4 {
			meta[MetaProduct] = parts[4]
		}
	}
	return meta
}

func productMetadata(stem string) map[string]string {
	return map[string]string{
		MetaDocType: DocTypeProductKB,
		MetaProduct: titleCase(strings.ReplaceAll(stem, "_", " ")),
	}
}

// titleCase upper-cases every letter that follows a non-letter and
// lower-cases the rest, so "real_time_payments" becomes "Real Time Payments".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
