// ABOUTME: Embedding extractor composing decode, preprocess, forward pass, and L2 normalization.
// ABOUTME: Maps one image path to one unit-length embedding vector.
package embeddings

import (
	"context"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/2389-research/imgembed/internal/preprocess"
)

// DecodeFunc reads an image from disk and reports its format.
type DecodeFunc func(path string) (image.Image, string, error)

// Extractor is the Embedder backed by a Preprocessor and an Encoder.
type Extractor struct {
	pre    Preprocessor
	enc    Encoder
	decode DecodeFunc
	logger *zap.Logger
}

// ExtractorOption configures optional Extractor dependencies.
type ExtractorOption func(*Extractor)

// WithLogger sets the logger used for per-stage diagnostics.
func WithLogger(logger *zap.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithDecoder replaces the image file decoder.
func WithDecoder(fn DecodeFunc) ExtractorOption {
	return func(e *Extractor) {
		e.decode = fn
	}
}

// NewExtractor creates an extractor from a preprocessor and an encoder.
func NewExtractor(pre Preprocessor, enc Encoder, opts ...ExtractorOption) (*Extractor, error) {
	if pre == nil {
		return nil, fmt.Errorf("preprocessor is required")
	}
	if enc == nil {
		return nil, fmt.Errorf("encoder is required")
	}

	e := &Extractor{
		pre:    pre,
		enc:    enc,
		decode: preprocess.DecodeFile,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Dimension returns the encoder's output dimensionality.
func (e *Extractor) Dimension() int {
	return e.enc.Dimension()
}

// EmbedFile decodes the image at path and returns its normalized embedding.
func (e *Extractor) EmbedFile(ctx context.Context, path string) ([]float32, error) {
	img, format, err := e.decode(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	e.logger.Debug("decoded image",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
	)
	return e.EmbedImage(ctx, img)
}

// EmbedImage returns the normalized embedding of an already decoded image.
func (e *Extractor) EmbedImage(ctx context.Context, img image.Image) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pixels, err := e.pre.Apply(img)
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess image: %w", err)
	}
	shape := e.pre.Shape()
	e.logger.Debug("preprocessed image", zap.Int64s("shape", shape))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := e.enc.Encode(ctx, pixels, shape)
	if err != nil {
		return nil, err
	}
	if len(raw) != e.enc.Dimension() {
		return nil, fmt.Errorf("%w: model returned %d values, expected %d", ErrDimensionMismatch, len(raw), e.enc.Dimension())
	}

	vec, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("computed embedding",
		zap.Int("dimension", len(vec)),
		zap.Float64("raw_norm", Norm(raw)),
	)
	return vec, nil
}
