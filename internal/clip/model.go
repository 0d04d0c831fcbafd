// ABOUTME: Model directory inspection for CLIP checkpoints.
// ABOUTME: Reads the projection dimension and checks that the required artifacts exist.
package clip

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names inside a model directory.
const (
	ModelConfigFile        = "config.json"
	PreprocessorConfigFile = "preprocessor_config.json"
)

// DefaultProjectionDim is the embedding size of CLIP ViT-B/32.
const DefaultProjectionDim = 512

// ModelConfig holds the parts of config.json the encoder needs.
type ModelConfig struct {
	ProjectionDim int `json:"projection_dim"`
	VisionConfig  struct {
		ImageSize  int `json:"image_size"`
		HiddenSize int `json:"hidden_size"`
		PatchSize  int `json:"patch_size"`
	} `json:"vision_config"`
}

// LoadModelConfig reads config.json from a model directory.
// A missing projection_dim falls back to DefaultProjectionDim.
func LoadModelConfig(modelDir string) (ModelConfig, error) {
	path := filepath.Join(modelDir, ModelConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelConfig{}, fmt.Errorf("failed to read model config: %w", err)
	}
	var cfg ModelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ModelConfig{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.ProjectionDim == 0 {
		cfg.ProjectionDim = DefaultProjectionDim
	}
	if cfg.ProjectionDim < 0 {
		return ModelConfig{}, fmt.Errorf("invalid projection_dim %d in %s", cfg.ProjectionDim, path)
	}
	return cfg, nil
}

// CheckArtifacts verifies that the model directory holds the model config and
// the preprocessor config, and that the ONNX graph exists at graphPath.
func CheckArtifacts(modelDir, graphPath string) error {
	info, err := os.Stat(modelDir)
	if err != nil {
		return fmt.Errorf("model directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("model path %s is not a directory", modelDir)
	}

	var missing []error
	for _, path := range []string{
		filepath.Join(modelDir, ModelConfigFile),
		filepath.Join(modelDir, PreprocessorConfigFile),
		graphPath,
	} {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, err)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing model artifacts in %s: %w", modelDir, errors.Join(missing...))
	}
	return nil
}
