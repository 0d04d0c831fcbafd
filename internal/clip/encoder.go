// ABOUTME: ONNX-backed CLIP vision encoder.
// ABOUTME: Holds one session for the process lifetime and runs one forward pass per image.
package clip

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// EncoderOptions configures NewEncoder.
type EncoderOptions struct {
	GraphPath   string // path to the vision model .onnx file
	InputName   string // e.g. "pixel_values"
	OutputName  string // e.g. "image_embeds"
	Dimension   int    // projection_dim from config.json
	LibraryPath string // ONNX Runtime shared library; "" uses DefaultLibraryPath
}

func (o EncoderOptions) validate() error {
	switch {
	case o.GraphPath == "":
		return errors.New("graph path is required")
	case o.InputName == "":
		return errors.New("input tensor name is required")
	case o.OutputName == "":
		return errors.New("output tensor name is required")
	case o.Dimension <= 0:
		return fmt.Errorf("invalid embedding dimension %d", o.Dimension)
	}
	return nil
}

// Encoder runs the CLIP vision tower with its projection head.
type Encoder struct {
	session   *ort.DynamicAdvancedSession
	dim       int
	closeOnce sync.Once
	closeErr  error
}

// NewEncoder loads the ONNX graph. The runtime environment is initialized on first use.
func NewEncoder(opts EncoderOptions) (*Encoder, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := acquireRuntime(opts.LibraryPath); err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(
		opts.GraphPath,
		[]string{opts.InputName},
		[]string{opts.OutputName},
		nil,
	)
	if err != nil {
		_ = releaseRuntime()
		return nil, fmt.Errorf("failed to load model %s: %w", opts.GraphPath, err)
	}

	return &Encoder{session: session, dim: opts.Dimension}, nil
}

// Dimension returns the length of the vectors Encode produces.
func (e *Encoder) Dimension() int {
	return e.dim
}

// Encode runs one forward pass over an NCHW pixel tensor with batch size 1.
func (e *Encoder) Encode(ctx context.Context, pixels []float32, shape []int64) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(shape) != 4 || shape[0] != 1 {
		return nil, fmt.Errorf("expected input shape [1 C H W], got %v", shape)
	}

	input, err := ort.NewTensor(ort.NewShape(shape...), pixels)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer func() { _ = input.Destroy() }()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(e.dim)))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer func() { _ = output.Destroy() }()

	if err := e.session.Run([]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output}); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	// The tensor's backing memory is freed on Destroy.
	features := make([]float32, e.dim)
	copy(features, output.GetData())
	return features, nil
}

// Close destroys the session and releases the runtime environment.
func (e *Encoder) Close() error {
	e.closeOnce.Do(func() {
		e.closeErr = errors.Join(e.session.Destroy(), releaseRuntime())
	})
	return e.closeErr
}
