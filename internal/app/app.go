package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sow_rag/internal/compliance"
	"sow_rag/internal/config"
	"sow_rag/internal/embedding"
	"sow_rag/internal/rag"
	"sow_rag/internal/vectorstore"
)

// App wires the vector store, embedding provider, indexer, retriever and
// compliance reviewer built from one Config.
type App struct {
	cfg        *config.Config
	log        *slog.Logger
	store      vectorstore.Store
	embedder   embedding.Provider
	indexer    *rag.Indexer
	retriever  *rag.Retriever
	reviewer   *compliance.Reviewer
	manifest   *Manifest
	outputPath string
	reportDir  string
	in         io.Reader
	out        io.Writer
}

// Manifest records what the last indexing run wrote. It is stored as JSON
// next to the corpus.
type Manifest struct {
	DataPath   string              `json:"data_path"`
	Collection string              `json:"collection"`
	IndexedAt  time.Time           `json:"indexed_at,omitempty"`
	Files      map[string]FileInfo `json:"files"`
}

type FileInfo struct {
	Path         string    `json:"path"`
	DocType      string    `json:"doc_type,omitempty"`
	Chunks       int       `json:"chunks"`
	LastModified time.Time `json:"last_modified"`
	Size         int64     `json:"size"`
}

// Option overrides a dependency New would otherwise build from the config.
type Option func(*App)

// WithStore replaces the backend selected by VECTOR_STORE.
func WithStore(store vectorstore.Store) Option {
	return func(a *App) { a.store = store }
}

// WithEmbedder replaces the provider selected by EMBED_PROVIDER.
func WithEmbedder(p embedding.Provider) Option {
	return func(a *App) { a.embedder = p }
}

// WithLogger replaces slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(a *App) { a.log = log }
}

// WithIO sets the shell's input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.in = in
		a.out = out
	}
}

// WithReportDir is where the shell writes generated compliance reports.
func WithReportDir(dir string) Option {
	return func(a *App) { a.reportDir = dir }
}

// New opens the vector store and embedder selected by cfg unless they were
// supplied as options, then builds the indexer, retriever and reviewer.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{
		cfg:       cfg,
		log:       slog.Default(),
		manifest:  newManifest(cfg.Collection),
		reportDir: ".",
		in:        os.Stdin,
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.store == nil {
		store, err := vectorstore.Open(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open vector store: %w", err)
		}
		a.store = store
	}

	if a.embedder == nil {
		p, err := embedding.New(ctx, cfg, a.log)
		if err != nil {
			_ = a.store.Close()
			return nil, fmt.Errorf("failed to create embedding provider: %w", err)
		}
		a.embedder = p
	}

	ragOpts := []rag.Option{
		rag.WithCollection(cfg.Collection),
		rag.WithMaxChunkSize(cfg.ChunkSize),
		rag.WithLogger(a.log),
	}

	var err error
	if a.indexer, err = rag.NewIndexer(ctx, a.store, a.embedder, ragOpts...); err != nil {
		_ = a.store.Close()
		return nil, fmt.Errorf("failed to create indexer: %w", err)
	}
	if a.retriever, err = rag.NewRetriever(ctx, a.store, a.embedder, ragOpts...); err != nil {
		_ = a.store.Close()
		return nil, fmt.Errorf("failed to create retriever: %w", err)
	}

	a.reviewer = compliance.NewReviewer(
		compliance.FileSource{Path: cfg.ComplianceRulesFile()},
		compliance.WithReviewLogger(a.log),
	)

	return a, nil
}

func newManifest(collection string) *Manifest {
	return &Manifest{
		Collection: collection,
		Files:      make(map[string]FileInfo),
	}
}

// Init loads the index manifest. When the data directory recorded there
// differs from the configured one, the collection and manifest are reset.
func (a *App) Init(ctx context.Context) error {
	if err := a.loadManifest(); err != nil {
		a.log.Warn("ignoring unreadable index manifest", "file", a.cfg.ManifestFile(), "error", err)
		a.manifest = newManifest(a.indexer.Collection())
	}

	absDataDir, err := filepath.Abs(a.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute data dir: %w", err)
	}

	if a.manifest.DataPath != "" && a.manifest.DataPath != absDataDir {
		a.log.Info("data directory changed, resetting index", "from", a.manifest.DataPath, "to", absDataDir)
		if err := a.indexer.ClearCollection(ctx); err != nil {
			return err
		}
		a.manifest = newManifest(a.indexer.Collection())
		a.manifest.DataPath = absDataDir
		if err := a.saveManifest(); err != nil {
			return fmt.Errorf("failed to save index manifest: %w", err)
		}
	}

	count, err := a.indexer.Count(ctx)
	if err != nil {
		return err
	}
	a.log.Debug("index ready", "collection", a.indexer.Collection(), "chunks", count, "files", len(a.manifest.Files))
	return nil
}

func (a *App) Close() error {
	return a.store.Close()
}

// SetOutputPath makes ReviewFile write its markdown report to path.
func (a *App) SetOutputPath(path string) {
	a.outputPath = path
}

func (a *App) Reviewer() *compliance.Reviewer { return a.reviewer }

// StatusInfo summarises the index.
type StatusInfo struct {
	Collection string    `json:"collection"`
	Chunks     int       `json:"chunks"`
	Files      int       `json:"files"`
	IndexedAt  time.Time `json:"indexed_at,omitempty"`
	DataPath   string    `json:"data_path,omitempty"`
}

func (a *App) Status(ctx context.Context) (StatusInfo, error) {
	count, err := a.indexer.Count(ctx)
	if err != nil {
		return StatusInfo{}, err
	}
	return StatusInfo{
		Collection: a.indexer.Collection(),
		Chunks:     count,
		Files:      len(a.manifest.Files),
		IndexedAt:  a.manifest.IndexedAt,
		DataPath:   a.manifest.DataPath,
	}, nil
}

func (a *App) loadManifest() error {
	f, err := os.Open(a.cfg.ManifestFile())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	defer f.Close()

	m := newManifest(a.indexer.Collection())
	if err := json.NewDecoder(f).Decode(m); err != nil {
		return err
	}
	if m.Files == nil {
		m.Files = make(map[string]FileInfo)
	}
	a.manifest = m
	return nil
}

func (a *App) saveManifest() error {
	if err := os.MkdirAll(filepath.Dir(a.cfg.ManifestFile()), 0o755); err != nil {
		return err
	}

	f, err := os.Create(a.cfg.ManifestFile())
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(a.manifest)
}
