package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

const DefaultHashDimension = 384

var tokenPattern = regexp.MustCompile(`\p{L}+|\p{N}+`)

// Hash is an offline provider based on feature hashing: every lower-cased
// token is hashed into one of Dimension buckets and the result is L2
// normalised. Texts sharing words end up close in cosine distance.
type Hash struct {
	dimension int
}

// NewHash uses DefaultHashDimension when dimension is not positive.
func NewHash(dimension int) *Hash {
	if dimension <= 0 {
		dimension = DefaultHashDimension
	}
	return &Hash{dimension: dimension}
}

func (h *Hash) Dimension() int { return h.dimension }

func (h *Hash) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, h.dimension)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		f := fnv.New64a()
		f.Write([]byte(tok))
		sum := f.Sum64()

		sign := 1.0
		if sum&(1<<63) != 0 {
			sign = -1.0
		}
		vec[sum%uint64(h.dimension)] += sign
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	// zero vectors cannot be compared by cosine
	if norm == 0 {
		vec[0] = 1
		norm = 1
	}
	norm = math.Sqrt(norm)

	out := make([]float32, h.dimension)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

func (h *Hash) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := h.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
