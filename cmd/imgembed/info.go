// ABOUTME: Cobra command describing the configured model without running inference.
// ABOUTME: Reports dimensionality, input size, and normalization constants.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389-research/imgembed/internal/clip"
	"github.com/2389-research/imgembed/internal/embeddings"
	"github.com/2389-research/imgembed/internal/models"
	"github.com/2389-research/imgembed/internal/preprocess"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the configured model",
	Long:  "Show the model directory, ONNX graph, embedding dimensionality and preprocessing settings.",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	modelPath, err := globalConfig.GetModelPath()
	if err != nil {
		return err
	}
	graphPath, err := globalConfig.GetGraphPath()
	if err != nil {
		return err
	}
	if err := clip.CheckArtifacts(modelPath, graphPath); err != nil {
		return err
	}

	modelCfg, err := clip.LoadModelConfig(modelPath)
	if err != nil {
		return err
	}
	preCfg, err := preprocess.LoadConfig(modelPath)
	if err != nil {
		return err
	}
	height, width, err := preCfg.OutputSize()
	if err != nil {
		return err
	}

	info := models.ModelInfo{
		Name:      models.ModelName(modelPath),
		Path:      modelPath,
		Graph:     graphPath,
		Dimension: modelCfg.ProjectionDim,
		Width:     width,
		Height:    height,
		Mean:      preCfg.ImageMean,
		Std:       preCfg.ImageStd,
	}

	out := cmd.OutOrStdout()
	if globalFormat == embeddings.FormatJSON {
		return json.NewEncoder(out).Encode(info)
	}
	fmt.Fprintf(out, "Model:     %s\n", info.Name)
	fmt.Fprintf(out, "Path:      %s\n", info.Path)
	fmt.Fprintf(out, "Graph:     %s\n", info.Graph)
	fmt.Fprintf(out, "Dimension: %d\n", info.Dimension)
	fmt.Fprintf(out, "Input:     3x%dx%d\n", info.Height, info.Width)
	fmt.Fprintf(out, "Mean:      %v\n", info.Mean)
	fmt.Fprintf(out, "Std:       %v\n", info.Std)
	return nil
}
