// ABOUTME: Installation validation for the model directory and ONNX Runtime library.
// ABOUTME: Checks artifacts on disk without loading the model.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/2389-research/imgembed/internal/clip"
	"github.com/2389-research/imgembed/internal/config"
)

// ValidateInstallation checks that modelPath holds the model artifacts (with the
// graph at graph, relative to modelPath unless absolute or ~) and that libraryPath, when
// it names a file rather than a bare library name, exists.
// The context allows cancellation when the user quits during validation.
func ValidateInstallation(ctx context.Context, modelPath, graph, libraryPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	graphPath, err := config.ResolveGraphPath(modelPath, graph)
	if err != nil {
		return err
	}
	modelPath, err = config.ExpandPath(modelPath)
	if err != nil {
		return err
	}
	if err := clip.CheckArtifacts(modelPath, graphPath); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	libraryPath, err = config.ExpandPath(libraryPath)
	if err != nil {
		return err
	}
	// Bare names are resolved by the dynamic loader at run time.
	if libraryPath == "" || !strings.ContainsRune(libraryPath, filepath.Separator) {
		return nil
	}
	info, err := os.Stat(libraryPath)
	if err != nil {
		return fmt.Errorf("onnx runtime library: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("onnx runtime library %s is a directory", libraryPath)
	}
	return nil
}
