// ABOUTME: Wiring of the model directory into a ready-to-use embedding extractor.
// ABOUTME: Loads preprocessor and model configs, then opens the ONNX encoder once.
package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/2389-research/imgembed/internal/clip"
	"github.com/2389-research/imgembed/internal/config"
	"github.com/2389-research/imgembed/internal/embeddings"
	"github.com/2389-research/imgembed/internal/preprocess"
)

// openExtractor is swapped out in tests that run without ONNX Runtime.
var openExtractor = newExtractor

// newExtractor builds the extractor described by cfg. The returned closer
// releases the ONNX session and must be called once embedding is done.
func newExtractor(cfg *config.Config, logger *zap.Logger) (*embeddings.Extractor, io.Closer, error) {
	modelPath, err := cfg.GetModelPath()
	if err != nil {
		return nil, nil, err
	}
	graphPath, err := cfg.GetGraphPath()
	if err != nil {
		return nil, nil, err
	}
	libraryPath, err := cfg.GetLibraryPath()
	if err != nil {
		return nil, nil, err
	}

	if err := clip.CheckArtifacts(modelPath, graphPath); err != nil {
		return nil, nil, err
	}

	preCfg, err := preprocess.LoadConfig(modelPath)
	if err != nil {
		return nil, nil, err
	}
	pre, err := preprocess.New(preCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid preprocessor config: %w", err)
	}

	modelCfg, err := clip.LoadModelConfig(modelPath)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("loading model",
		zap.String("model", modelPath),
		zap.String("graph", graphPath),
		zap.Int("dimension", modelCfg.ProjectionDim),
	)
	enc, err := clip.NewEncoder(clip.EncoderOptions{
		GraphPath:   graphPath,
		InputName:   cfg.Model.InputName,
		OutputName:  cfg.Model.OutputName,
		Dimension:   modelCfg.ProjectionDim,
		LibraryPath: libraryPath,
	})
	if err != nil {
		return nil, nil, err
	}

	extractor, err := embeddings.NewExtractor(pre, enc, embeddings.WithLogger(logger))
	if err != nil {
		_ = enc.Close()
		return nil, nil, err
	}
	return extractor, enc, nil
}
