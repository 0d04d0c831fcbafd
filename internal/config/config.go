// ABOUTME: Configuration management for imgembed with YAML config loading.
// ABOUTME: Handles model location, ONNX Runtime library path, output format, and ~ expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults matching the layout of a CLIP checkpoint exported with its ONNX vision graph.
const (
	DefaultModelPath  = "./public/models/clip-vit-base-patch32"
	DefaultGraph      = "onnx/vision_model.onnx"
	DefaultInputName  = "pixel_values"
	DefaultOutputName = "image_embeds"
	DefaultFormat     = "python"
	DefaultLogLevel   = "warning"
)

// Config stores imgembed configuration loaded from ~/.config/imgembed/config.yaml.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Runtime RuntimeConfig `yaml:"runtime"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
}

// ModelConfig locates the model directory and names the graph's tensors.
type ModelConfig struct {
	Path       string `yaml:"path"`
	Graph      string `yaml:"graph"`
	InputName  string `yaml:"input_name"`
	OutputName string `yaml:"output_name"`
}

// RuntimeConfig holds ONNX Runtime settings.
type RuntimeConfig struct {
	LibraryPath string `yaml:"library_path"`
}

// OutputConfig selects how embeddings are printed.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// LogConfig holds the diagnostic log level (debug, info, warning, error).
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a config with every field set to its default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Model.Path == "" {
		c.Model.Path = DefaultModelPath
	}
	if c.Model.Graph == "" {
		c.Model.Graph = DefaultGraph
	}
	if c.Model.InputName == "" {
		c.Model.InputName = DefaultInputName
	}
	if c.Model.OutputName == "" {
		c.Model.OutputName = DefaultOutputName
	}
	if c.Output.Format == "" {
		c.Output.Format = DefaultFormat
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// GetModelPath returns the model directory with ~ expanded.
func (c *Config) GetModelPath() (string, error) {
	return ExpandPath(c.Model.Path)
}

// GetGraphPath returns the ONNX graph path. Relative graph paths resolve against the model directory.
func (c *Config) GetGraphPath() (string, error) {
	return ResolveGraphPath(c.Model.Path, c.Model.Graph)
}

// ResolveGraphPath expands ~ in both paths and joins a relative graph onto modelPath.
// A graph starting with ~ or / is used as given.
func ResolveGraphPath(modelPath, graph string) (string, error) {
	graph, err := ExpandPath(graph)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(graph) {
		return graph, nil
	}
	modelPath, err = ExpandPath(modelPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(modelPath, graph), nil
}

// GetLibraryPath returns the ONNX Runtime shared library path, or "" to use the runtime default.
func (c *Config) GetLibraryPath() (string, error) {
	return ExpandPath(c.Runtime.LibraryPath)
}

// GetConfigPath returns the config file path.
func GetConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "imgembed", "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Load reads config from the default location. Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path. Returns default config if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes config to the default location.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes config to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	path, err := ExpandPath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
