// ABOUTME: Tests for model directory inspection and encoder option validation.
// ABOUTME: Runs without the ONNX Runtime shared library.
package clip

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadModelConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ModelConfigFile), `{
  "projection_dim": 768,
  "vision_config": {"image_size": 224, "hidden_size": 1024, "patch_size": 14}
}`)

	cfg, err := LoadModelConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 768, cfg.ProjectionDim)
	assert.Equal(t, 224, cfg.VisionConfig.ImageSize)
	assert.Equal(t, 14, cfg.VisionConfig.PatchSize)
}

func TestLoadModelConfigDefaultDimension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ModelConfigFile), `{"model_type": "clip"}`)

	cfg, err := LoadModelConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultProjectionDim, cfg.ProjectionDim)
}

func TestLoadModelConfigCorrupt(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ModelConfigFile), `{"projection_dim": `)

	_, err := LoadModelConfig(dir)
	assert.Error(t, err)
}

func TestLoadModelConfigMissing(t *testing.T) {
	_, err := LoadModelConfig(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheckArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ModelConfigFile), `{}`)
	writeFile(t, filepath.Join(dir, PreprocessorConfigFile), `{}`)
	writeFile(t, filepath.Join(dir, "onnx", "vision_model.onnx"), "graph")

	assert.NoError(t, CheckArtifacts(dir, filepath.Join(dir, "onnx", "vision_model.onnx")))
}

func TestCheckArtifactsGraphOutsideModelDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ModelConfigFile), `{}`)
	writeFile(t, filepath.Join(dir, PreprocessorConfigFile), `{}`)
	graph := filepath.Join(t.TempDir(), "graphs", "vision.onnx")
	writeFile(t, graph, "graph")

	assert.NoError(t, CheckArtifacts(dir, graph))
}

func TestCheckArtifactsMissingGraph(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ModelConfigFile), `{}`)
	writeFile(t, filepath.Join(dir, PreprocessorConfigFile), `{}`)

	err := CheckArtifacts(dir, filepath.Join(dir, "onnx", "vision_model.onnx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.True(t, strings.Contains(err.Error(), "vision_model.onnx"))
}

func TestCheckArtifactsMissingDirectory(t *testing.T) {
	err := CheckArtifacts(filepath.Join(t.TempDir(), "nope"), "model.onnx")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheckArtifactsNotDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	writeFile(t, path, "x")

	assert.Error(t, CheckArtifacts(path, "model.onnx"))
}

func TestEncoderOptionsValidate(t *testing.T) {
	valid := EncoderOptions{
		GraphPath:  "model.onnx",
		InputName:  "pixel_values",
		OutputName: "image_embeds",
		Dimension:  512,
	}
	assert.NoError(t, valid.validate())

	tests := []struct {
		name   string
		mutate func(*EncoderOptions)
	}{
		{"no graph", func(o *EncoderOptions) { o.GraphPath = "" }},
		{"no input", func(o *EncoderOptions) { o.InputName = "" }},
		{"no output", func(o *EncoderOptions) { o.OutputName = "" }},
		{"zero dimension", func(o *EncoderOptions) { o.Dimension = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.mutate(&opts)
			assert.Error(t, opts.validate())

			// Invalid options fail before the runtime is touched.
			_, err := NewEncoder(opts)
			assert.Error(t, err)
		})
	}
}

func TestDefaultLibraryPath(t *testing.T) {
	assert.Contains(t, DefaultLibraryPath(), "onnxruntime")
}

func TestEncodeRejectsBadShape(t *testing.T) {
	enc := &Encoder{dim: 512}

	tests := []struct {
		name  string
		shape []int64
	}{
		{"missing batch", []int64{3, 224, 224}},
		{"batch of two", []int64{2, 3, 224, 224}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := enc.Encode(context.Background(), make([]float32, 3*224*224), tt.shape)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "expected input shape")
		})
	}
}

func TestEncodeCancelled(t *testing.T) {
	enc := &Encoder{dim: 512}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := enc.Encode(ctx, nil, []int64{1, 3, 224, 224})
	assert.ErrorIs(t, err, context.Canceled)
}
