// ABOUTME: Core data models for image embeddings and model metadata.
// ABOUTME: Provides the printable embedding record and the model info report.
package models

import (
	"path/filepath"
)

// Embedding represents a normalized vector embedding for one image.
type Embedding struct {
	Vector    []float32 `json:"vector"`
	Image     string    `json:"image"`
	Model     string    `json:"model"`
	Dimension int       `json:"dimension"`
}

// NewEmbedding creates an embedding record for the given image and model directory.
// The model is identified by the base name of its directory.
func NewEmbedding(vector []float32, imagePath, modelPath string) *Embedding {
	return &Embedding{
		Vector:    vector,
		Image:     imagePath,
		Model:     ModelName(modelPath),
		Dimension: len(vector),
	}
}

// ModelInfo describes a model directory without running inference.
type ModelInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Graph     string    `json:"graph"`
	Dimension int       `json:"dimension"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Mean      []float64 `json:"image_mean"`
	Std       []float64 `json:"image_std"`
}

// ModelName returns the short name of a model directory, e.g. "clip-vit-base-patch32".
func ModelName(modelPath string) string {
	if modelPath == "" {
		return ""
	}
	return filepath.Base(filepath.Clean(modelPath))
}
