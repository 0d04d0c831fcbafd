// ABOUTME: Interfaces for the image embedding pipeline.
// ABOUTME: Separates preprocessing, the model forward pass, and the caller-facing embedder.
package embeddings

import (
	"context"
	"image"
)

// Embedder generates unit-length vector embeddings from image files.
type Embedder interface {
	// EmbedFile returns the normalized embedding of the image at path.
	EmbedFile(ctx context.Context, path string) ([]float32, error)

	// Dimension returns the dimensionality of the output vectors.
	Dimension() int
}

// Preprocessor turns decoded pixels into the model's input tensor.
type Preprocessor interface {
	Apply(img image.Image) ([]float32, error)
	Shape() []int64
}

// Encoder runs the model forward pass and returns raw, unnormalized features.
type Encoder interface {
	Encode(ctx context.Context, pixels []float32, shape []int64) ([]float32, error)
	Dimension() int
}
