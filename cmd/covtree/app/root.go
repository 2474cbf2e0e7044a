package app

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/zjy-dev/covtree/internal/config"
	"github.com/zjy-dev/covtree/internal/coverage"
	"github.com/zjy-dev/covtree/internal/logger"
)

// settings is the configuration after applying command line overrides.
type settings struct {
	cfg    *config.Config
	policy coverage.DuplicatePolicy
}

var current = &settings{cfg: config.Default()}

// NewCovtreeCommand creates the root command for the covtree tool.
func NewCovtreeCommand() *cobra.Command {
	var (
		logLevel        string
		duplicatePolicy string
	)

	cmd := &cobra.Command{
		Use:   "covtree",
		Short: "Inspect, merge and diff llvm source-based coverage.",
		Long: `covtree reads llvm-cov export documents (or archives of them) and builds
a region tree per function. Reports can be merged across repeated runs,
diffed against a baseline to find regressions, exported as JSON and shown
against the original sources.

Configuration is read from configs/covtree.yaml under the 'config' section.
Command line flags override the config file values.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("duplicate-policy") {
				cfg.DuplicatePolicy = duplicatePolicy
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			policy, err := coverage.ParseDuplicatePolicy(cfg.DuplicatePolicy)
			if err != nil {
				return err
			}

			logger.Init(cfg.LogLevel)
			logger.SetLevel(cfg.LogLevel)
			if cfg.LogDir != "" {
				if err := logger.InitWithFile(cfg.LogLevel, cfg.LogDir); err != nil {
					return err
				}
			}

			current = &settings{cfg: cfg, policy: policy}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&duplicatePolicy, "duplicate-policy", "merge",
		"How to handle a file/function imported twice (merge, overwrite, reject)")

	cmd.AddCommand(NewShowCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewMergeCommand())
	cmd.AddCommand(NewDiffCommand())
	cmd.AddCommand(NewStatsCommand())

	return cmd
}

// useColor resolves the color setting for the given output.
func useColor(mode string, out *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	}
}
