// ABOUTME: Cobra command for interactive model and runtime setup.
// ABOUTME: Launches a bubbletea TUI wizard to locate and validate the model artifacts.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/imgembed/internal/config"
	"github.com/2389-research/imgembed/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Locate the CLIP model and ONNX Runtime",
	Long:  "Interactive wizard to configure the model directory and the ONNX Runtime shared library.",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg := setupConfig(cmd)

	model := tui.NewSetupModel(
		cfg.Model.Path,
		cfg.Runtime.LibraryPath,
		cfg.Model.Graph,
	)

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.SetupModel)
	if !final.ShouldSave() {
		fmt.Fprintln(cmd.OutOrStdout(), "Setup cancelled.")
		return nil
	}

	modelPath, libraryPath := final.Result()
	cfg.Model.Path = modelPath
	cfg.Runtime.LibraryPath = libraryPath

	path := configPath
	if path == "" {
		if path, err = config.GetConfigPath(); err != nil {
			return err
		}
	}
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", path)
	return nil
}

// setupConfig loads the config to pre-fill the wizard. A config that fails to
// load is reported and replaced by defaults, since setup is how it gets fixed.
func setupConfig(cmd *cobra.Command) *config.Config {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v; starting from defaults\n", err)
		return config.Default()
	}
	return cfg
}
