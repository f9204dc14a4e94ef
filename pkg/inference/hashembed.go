package inference

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"os"
	"strings"
)

// HashEmbedder is the Embedder used when no native fastText binding is
// available: it embeds text with the hashing trick (Weinberger et al.),
// signed-hashing each whitespace token into a fixed-width bucket vector and
// L2-normalizing the result. This deliberately avoids bespoke fastText
// binary-format parsing (SPEC_FULL.md §10 Non-goals), while still giving
// Engine a real, order-insensitive sentence embedding to work with.
type HashEmbedder struct {
	dim int
}

// embedderFile is the on-disk shape of the embedding model artifact: a
// small JSON sidecar declaring the embedding dimension, standing in for
// the original's fastText .bin model.
type embedderFile struct {
	Dim int `json:"dim"`
}

// LoadHashEmbedder reads the dimension declared by the embedding model
// artifact at path.
func LoadHashEmbedder(path string) (*HashEmbedder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading embedding model %s: %w", path, err)
	}
	var f embedderFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing embedding model %s: %w", path, err)
	}
	if f.Dim <= 0 {
		return nil, fmt.Errorf("embedding model %s declares non-positive dimension %d", path, f.Dim)
	}
	return &HashEmbedder{dim: f.Dim}, nil
}

func (h *HashEmbedder) Dim() int { return h.dim }

// Embed implements the Embedder interface. Each token contributes +1/-1
// (by a second hash bit) to one bucket of the output vector; the result is
// L2-normalized so embeddings of texts of different lengths are comparable.
func (h *HashEmbedder) Embed(text string) []float64 {
	vec := make([]float64, h.dim)
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return vec
	}
	for _, tok := range tokens {
		sum := fnv.New32a()
		_, _ = sum.Write([]byte(tok))
		bucket := int(sum.Sum32() % uint32(h.dim))

		sign := fnv.New32()
		_, _ = sign.Write([]byte(tok))
		sign.Write([]byte{'#'})
		if sign.Sum32()%2 == 0 {
			vec[bucket]++
		} else {
			vec[bucket]--
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
