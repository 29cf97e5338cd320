package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/philippgille/chromem-go"
)

// Ollama embeds text through a local Ollama server.
type Ollama struct {
	baseURL string
	model   string
	embed   chromem.EmbeddingFunc
	client  *http.Client
	log     *slog.Logger
}

// OllamaOption configures an Ollama provider.
type OllamaOption func(*Ollama)

func WithOllamaLogger(log *slog.Logger) OllamaOption {
	return func(o *Ollama) { o.log = log }
}

func WithOllamaHTTPClient(client *http.Client) OllamaOption {
	return func(o *Ollama) { o.client = client }
}

// NewOllama expects the server root, e.g. http://localhost:11434.
func NewOllama(baseURL, model string, opts ...OllamaOption) *Ollama {
	baseURL = strings.TrimRight(baseURL, "/")
	o := &Ollama{
		baseURL: baseURL,
		model:   model,
		embed:   chromem.NewEmbeddingFuncOllama(model, baseURL+"/api"),
		client:  http.DefaultClient,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Ollama) Model() string { return o.model }

func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := o.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding failed: %w", err)
	}
	return v, nil
}

// EmbedBatch embeds texts one request at a time; the legacy embeddings
// endpoint has no batch form.
func (o *Ollama) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for i, text := range texts {
		v, err := o.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

type ollamaTags struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

type ollamaPullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// EnsureModel checks that Ollama is reachable and pulls the embedding model
// when it is not installed yet.
func (o *Ollama) EnsureModel(ctx context.Context) error {
	found, err := o.hasModel(ctx)
	if err != nil {
		return err
	}
	if found {
		o.log.Debug("ollama model is available", "model", o.model)
		return nil
	}

	o.log.Info("ollama model not found, pulling", "model", o.model)

	b, err := json.Marshal(ollamaPullRequest{Name: o.model, Stream: false})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/pull", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to pull model %s: %w", o.model, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to pull model %s: status %d", o.model, resp.StatusCode)
	}

	o.log.Info("ollama model pulled", "model", o.model)
	return nil
}

func (o *Ollama) hasModel(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return false, err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("ollama is not reachable at %s: %w", o.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("ollama is not reachable at %s: status %d", o.baseURL, resp.StatusCode)
	}

	var tags ollamaTags
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false, fmt.Errorf("failed to decode ollama tags: %w", err)
	}

	for _, m := range tags.Models {
		for _, name := range []string{m.Name, m.Model} {
			if name == o.model || strings.TrimSuffix(name, ":latest") == o.model {
				return true, nil
			}
		}
	}
	return false, nil
}
