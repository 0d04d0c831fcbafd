// ABOUTME: Parsing of the model's preprocessor_config.json.
// ABOUTME: Accepts both the current object form and the older integer form of size fields.
package preprocess

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFile is the preprocessor config's file name inside a model directory.
const ConfigFile = "preprocessor_config.json"

// Resampling filters, numbered as in the checkpoint's "resample" field.
const (
	ResampleNearest  = 0
	ResampleLanczos  = 1
	ResampleBilinear = 2
	ResampleBicubic  = 3
)

// Size is either a shortest edge or an explicit height and width.
type Size struct {
	ShortestEdge int `json:"shortest_edge,omitempty"`
	Height       int `json:"height,omitempty"`
	Width        int `json:"width,omitempty"`
}

// UnmarshalJSON accepts a bare integer (older checkpoints) or an object.
func (s *Size) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Size{ShortestEdge: n, Height: n, Width: n}
		return nil
	}
	type plain Size
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("invalid size %s: %w", string(data), err)
	}
	*s = Size(p)
	return nil
}

// Config mirrors the fields of a CLIP image processor config that affect the tensor.
type Config struct {
	DoConvertRGB  bool      `json:"do_convert_rgb"`
	DoResize      bool      `json:"do_resize"`
	Size          Size      `json:"size"`
	Resample      int       `json:"resample"`
	DoCenterCrop  bool      `json:"do_center_crop"`
	CropSize      Size      `json:"crop_size"`
	DoRescale     bool      `json:"do_rescale"`
	RescaleFactor float64   `json:"rescale_factor"`
	DoNormalize   bool      `json:"do_normalize"`
	ImageMean     []float64 `json:"image_mean"`
	ImageStd      []float64 `json:"image_std"`
}

// DefaultConfig returns the OpenAI CLIP ViT-B/32 preprocessing settings.
func DefaultConfig() Config {
	return Config{
		DoConvertRGB:  true,
		DoResize:      true,
		Size:          Size{ShortestEdge: 224},
		Resample:      ResampleBicubic,
		DoCenterCrop:  true,
		CropSize:      Size{Height: 224, Width: 224},
		DoRescale:     true,
		RescaleFactor: 1.0 / 255.0,
		DoNormalize:   true,
		ImageMean:     []float64{0.48145466, 0.4578275, 0.40821073},
		ImageStd:      []float64{0.26862954, 0.26130258, 0.27577711},
	}
}

// LoadConfig reads preprocessor_config.json from a model directory.
// Fields missing from the file keep their DefaultConfig values.
func LoadConfig(modelDir string) (Config, error) {
	path := filepath.Join(modelDir, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read preprocessor config: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// OutputSize returns the height and width of the tensor the config produces.
func (c Config) OutputSize() (height, width int, err error) {
	if c.DoCenterCrop {
		h, w := c.CropSize.Height, c.CropSize.Width
		if h == 0 && w == 0 {
			h, w = c.CropSize.ShortestEdge, c.CropSize.ShortestEdge
		}
		if h <= 0 || w <= 0 {
			return 0, 0, fmt.Errorf("invalid crop size %+v", c.CropSize)
		}
		return h, w, nil
	}
	if c.DoResize && c.Size.Height > 0 && c.Size.Width > 0 && c.Size.ShortestEdge == 0 {
		return c.Size.Height, c.Size.Width, nil
	}
	return 0, 0, fmt.Errorf("preprocessor output size is not fixed: enable center crop or set size.height and size.width")
}
