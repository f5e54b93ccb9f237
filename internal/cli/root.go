package cli

import (
	"github.com/labelpal/backend/config"
	"github.com/labelpal/backend/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command for the labelpal CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "labelpal",
		Short: "Nutrition Label Pal",
		Long:  "Look up USDA FoodData Central nutrition data for foods and whole recipes.",
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewRecipeCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// loadRuntime reads configuration and builds the logger. Verbose forces
// debug logging.
func loadRuntime(opts *RootOptions) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}

	logger, err := logging.New(cfg.Server.Environment, level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
