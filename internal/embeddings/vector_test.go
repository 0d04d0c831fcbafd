// ABOUTME: Tests for norms, normalization, similarity scores, and image comparison.
// ABOUTME: Uses a simple path-keyed embedder for deterministic comparison testing.
package embeddings

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pathEmbedder returns canned vectors by path.
type pathEmbedder struct {
	vectors map[string][]float32
}

func (e *pathEmbedder) EmbedFile(_ context.Context, path string) ([]float32, error) {
	v, ok := e.vectors[path]
	if !ok {
		return nil, errors.New("no such image: " + path)
	}
	return v, nil
}

func (e *pathEmbedder) Dimension() int {
	return 3
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1},
		{"different lengths", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-4)
		})
	}
}

func TestNorm(t *testing.T) {
	assert.InDelta(t, 5, Norm([]float32{3, 4}), 1e-9)
	assert.Zero(t, Norm(nil))
}

func TestNormalize(t *testing.T) {
	in := []float32{3, 4}
	out, err := Normalize(in)
	require.NoError(t, err)

	assert.InDelta(t, 0.6, out[0], 1e-6)
	assert.InDelta(t, 0.8, out[1], 1e-6)
	assert.InDelta(t, 1, Norm(out), 1e-6)
	assert.Equal(t, float32(3), in[0], "input must not be modified")
}

func TestNormalizeRejectsDegenerateVectors(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
	}{
		{"zero", []float32{0, 0, 0}},
		{"empty", nil},
		{"nan", []float32{float32(math.NaN()), 1}},
		{"inf", []float32{float32(math.Inf(1)), 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.in)
			assert.ErrorIs(t, err, ErrZeroNorm)
		})
	}
}

func TestManhattanScore(t *testing.T) {
	a := []float32{0.5, 0.5}

	assert.Equal(t, 1.0, ManhattanScore(a, a), "identical vectors")
	assert.InDelta(t, 0.5, ManhattanScore(a, []float32{0, 0}), 1e-9, "L1 distance 1")
	assert.Zero(t, ManhattanScore(a, []float32{1}), "different lengths")
}

func TestCompare(t *testing.T) {
	embedder := &pathEmbedder{vectors: map[string][]float32{
		"a.png": {1, 0, 0},
		"b.png": {0, 1, 0},
	}}

	same, err := Compare(context.Background(), embedder, "a.png", "a.png")
	require.NoError(t, err)
	assert.InDelta(t, 1, same.Cosine, 1e-6)
	assert.Equal(t, 1.0, same.Manhattan)

	diff, err := Compare(context.Background(), embedder, "a.png", "b.png")
	require.NoError(t, err)
	assert.InDelta(t, 0, diff.Cosine, 1e-6)
	assert.InDelta(t, 1.0/3.0, diff.Manhattan, 1e-9)
}

func TestCompareMissingImage(t *testing.T) {
	embedder := &pathEmbedder{vectors: map[string][]float32{"a.png": {1, 0, 0}}}

	_, err := Compare(context.Background(), embedder, "a.png", "missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.png")
}

func TestCompareDimensionMismatch(t *testing.T) {
	embedder := &pathEmbedder{vectors: map[string][]float32{
		"a.png": {1, 0, 0},
		"b.png": {1, 0},
	}}

	_, err := Compare(context.Background(), embedder, "a.png", "b.png")
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
