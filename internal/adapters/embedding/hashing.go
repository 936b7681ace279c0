package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// HashingAdapter is an offline ports.EmbeddingService: a feature-hashed
// bag-of-words vector. No corpus pass and no API key needed, which keeps the
// whole pipeline usable with zero credentials. Retrieval quality is
// lexical-overlap grade, the trade the offline mode accepts.
type HashingAdapter struct {
	dimension int
}

// DefaultHashingDimension balances collision rate against store size for a
// notes corpus of a few hundred chunks.
const DefaultHashingDimension = 512

var tokenRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// NewHashingAdapter creates the offline embedder.
func NewHashingAdapter(dimension int) *HashingAdapter {
	if dimension <= 0 {
		dimension = DefaultHashingDimension
	}
	return &HashingAdapter{dimension: dimension}
}

// Embed maps each token to a bucket by hash and L2-normalizes the counts.
func (a *HashingAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, a.dimension)
	for _, token := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%uint32(a.dimension)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// EmbedBatch embeds each text independently.
func (a *HashingAdapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := a.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}
