package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOllamaServer(t *testing.T, models []string, pulls *atomic.Int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		type model struct {
			Name string `json:"name"`
		}
		var list []model
		for _, m := range models {
			list = append(list, model{Name: m})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"models": list})
	})
	mux.HandleFunc("/api/pull", func(w http.ResponseWriter, r *http.Request) {
		var req ollamaPullRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		pulls.Add(1)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})
	mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req["model"])

		vec := []float32{0, 1, 0}
		if req["prompt"] == "uptime" {
			vec = []float32{1, 0, 0}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": vec})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaEmbed(t *testing.T) {
	var pulls atomic.Int32
	srv := newOllamaServer(t, nil, &pulls)

	o := NewOllama(srv.URL+"/", "nomic-embed-text")
	v, err := o.Embed(context.Background(), "uptime")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, v)

	batch, err := o.EmbedBatch(context.Background(), []string{"uptime", "pricing"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0, 0}, {0, 1, 0}}, batch)
}

func TestOllamaEnsureModelPresent(t *testing.T) {
	var pulls atomic.Int32
	srv := newOllamaServer(t, []string{"llama3:8b", "nomic-embed-text:latest"}, &pulls)

	o := NewOllama(srv.URL, "nomic-embed-text")
	require.NoError(t, o.EnsureModel(context.Background()))
	assert.Zero(t, pulls.Load())
}

func TestOllamaEnsureModelPullsMissing(t *testing.T) {
	var pulls atomic.Int32
	srv := newOllamaServer(t, []string{"llama3:8b"}, &pulls)

	o := NewOllama(srv.URL, "nomic-embed-text")
	require.NoError(t, o.EnsureModel(context.Background()))
	assert.EqualValues(t, 1, pulls.Load())
}

func TestOllamaUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	o := NewOllama(srv.URL, "nomic-embed-text")
	assert.Error(t, o.EnsureModel(context.Background()))

	_, err := o.Embed(context.Background(), "text")
	assert.Error(t, err)
}
