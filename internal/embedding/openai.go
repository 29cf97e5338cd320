package embedding

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultOpenAIModel = "text-embedding-3-small"

	// MaxOpenAIBatch is the most inputs sent in one embeddings request.
	MaxOpenAIBatch = 100
)

var ErrAPIKeyNotSet = errors.New("OpenAI API key not set: please set OPENAI_API_KEY")

// OpenAI embeds text with the OpenAI embeddings API or a compatible server.
type OpenAI struct {
	client    openai.Client
	model     string
	dimension int
}

type openAIOptions struct {
	model      string
	dimension  int
	baseURL    string
	maxRetries int
}

// OpenAIOption configures an OpenAI provider.
type OpenAIOption func(*openAIOptions)

func WithEmbeddingModel(model string) OpenAIOption {
	return func(o *openAIOptions) { o.model = model }
}

// WithEmbeddingDimension requests shortened vectors; 0 keeps the model default.
func WithEmbeddingDimension(dimension int) OpenAIOption {
	return func(o *openAIOptions) { o.dimension = dimension }
}

// WithBaseURL points the client at an OpenAI compatible server.
func WithBaseURL(url string) OpenAIOption {
	return func(o *openAIOptions) { o.baseURL = url }
}

func WithMaxRetries(n int) OpenAIOption {
	return func(o *openAIOptions) { o.maxRetries = n }
}

// NewOpenAI uses DefaultOpenAIModel and two retries unless overridden.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	options := openAIOptions{
		model:      DefaultOpenAIModel,
		maxRetries: 2,
	}
	for _, opt := range opts {
		opt(&options)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(options.maxRetries),
	}
	if options.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(options.baseURL))
	}

	return &OpenAI{
		client:    openai.NewClient(reqOpts...),
		model:     options.model,
		dimension: options.dimension,
	}
}

func (e *OpenAI) Model() string { return e.model }

func (e *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch splits texts into requests of at most MaxOpenAIBatch inputs and
// returns vectors in input order.
func (e *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxOpenAIBatch {
		end := min(start+MaxOpenAIBatch, len(texts))
		batch, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (e *OpenAI) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
	}
	if len(texts) == 1 {
		params.Input = openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(texts[0]),
		}
	} else {
		params.Input = openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		}
	}
	if e.dimension > 0 {
		params.Dimensions = openai.Int(int64(e.dimension))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	embeddings := make([][]float32, 0, len(data))
	for _, d := range data {
		vector := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vector[i] = float32(v)
		}
		embeddings = append(embeddings, vector)
	}
	return embeddings, nil
}
