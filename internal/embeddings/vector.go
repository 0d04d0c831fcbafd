// ABOUTME: Vector math for embeddings: L2 norm, normalization, and similarity scores.
// ABOUTME: Also compares two images by embedding them one after the other.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrZeroNorm is returned when a vector cannot be scaled to unit length.
	ErrZeroNorm = errors.New("embedding has zero norm")

	// ErrDimensionMismatch is returned when vector lengths disagree.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Norm returns the Euclidean (L2) norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize returns a copy of v scaled to unit L2 norm.
func Normalize(v []float32) ([]float32, error) {
	norm := Norm(v)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, fmt.Errorf("%w (norm %v over %d values)", ErrZeroNorm, norm, len(v))
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out, nil
}

// CosineSimilarity computes the cosine similarity between two vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ManhattanScore maps the L1 distance between two vectors to (0, 1]: 1/(1+d).
// Identical vectors score 1. Vectors of different length score 0.
func ManhattanScore(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var d float64
	for i := range a {
		d += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return 1 / (1 + d)
}

// Comparison holds the similarity scores of two images.
type Comparison struct {
	Cosine    float64 `json:"cosine"`
	Manhattan float64 `json:"manhattan"`
}

// Compare embeds two images sequentially and scores their similarity.
func Compare(ctx context.Context, embedder Embedder, pathA, pathB string) (Comparison, error) {
	a, err := embedder.EmbedFile(ctx, pathA)
	if err != nil {
		return Comparison{}, fmt.Errorf("failed to embed %s: %w", pathA, err)
	}
	b, err := embedder.EmbedFile(ctx, pathB)
	if err != nil {
		return Comparison{}, fmt.Errorf("failed to embed %s: %w", pathB, err)
	}
	if len(a) != len(b) {
		return Comparison{}, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	return Comparison{
		Cosine:    CosineSimilarity(a, b),
		Manhattan: ManhattanScore(a, b),
	}, nil
}
