// ABOUTME: Cobra command comparing two images by embedding similarity.
// ABOUTME: Prints cosine similarity and the manhattan score 1/(1+L1).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/imgembed/internal/embeddings"
)

var compareCmd = &cobra.Command{
	Use:   "compare <image-a> <image-b>",
	Short: "Compare two images",
	Long: `Embed two images with the same model and print how similar they are.

cosine is the dot product of the unit embeddings (1 = same direction).
manhattan is 1/(1+d) where d is the L1 distance between them (1 = identical).`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	extractor, closer, err := openExtractor(globalConfig, globalLogger)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	result, err := embeddings.Compare(ctx, extractor, args[0], args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if globalFormat == embeddings.FormatJSON {
		return json.NewEncoder(out).Encode(result)
	}
	fmt.Fprintf(out, "cosine: %.6f\n", result.Cosine)
	fmt.Fprintf(out, "manhattan: %.6f\n", result.Manhattan)
	return nil
}
