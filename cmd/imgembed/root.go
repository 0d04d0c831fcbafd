// ABOUTME: Root Cobra command and global flags for the imgembed CLI.
// ABOUTME: Loads config and logging, then embeds the single image given as argument.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/2389-research/imgembed/internal/config"
	"github.com/2389-research/imgembed/internal/embeddings"
	"github.com/2389-research/imgembed/internal/logging"
	"github.com/2389-research/imgembed/internal/models"
)

var globalConfig *config.Config
var globalLogger = zap.NewNop()
var globalFormat = embeddings.FormatPython

// Flags
var (
	configPath   string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "imgembed <image>",
	Short: "Compute a normalized CLIP embedding for an image",
	Long: `Compute a unit-length image embedding with a local CLIP vision model.

The model directory must contain config.json, preprocessor_config.json and the
ONNX vision graph. The embedding is printed to stdout as a nested list.`,
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Arguments and flags are valid by now; further failures need no usage text.
		cmd.SilenceUsage = true

		// Setup must still run when the config it rewrites is broken.
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "setup" {
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		globalConfig = cfg

		if cmd.Flags().Changed("format") {
			cfg.Output.Format = outputFormat
		}
		format, err := embeddings.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}
		globalFormat = format

		level := cfg.Log.Level
		if verbose {
			level = logging.Debug
		}
		logger, err := logging.New(level, zap.String("invocation", uuid.NewString()))
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		globalLogger = logger

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		_ = globalLogger.Sync()
		return nil
	},
	RunE: runEmbed,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/imgembed/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "Output format: python, json, or plain (default from config, else python)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline diagnostics to stderr")
}

// loadConfig reads --config when given, else the default config file.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func runEmbed(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	modelPath, err := globalConfig.GetModelPath()
	if err != nil {
		return err
	}

	extractor, closer, err := openExtractor(globalConfig, globalLogger)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	imagePath := args[0]
	vector, err := extractor.EmbedFile(ctx, imagePath)
	if err != nil {
		return err
	}

	return embeddings.Write(cmd.OutOrStdout(), models.NewEmbedding(vector, imagePath, modelPath), globalFormat)
}
