// Package cli provides the command-line interface for synthward.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/synthward-labs/synthward/internal/cli/commands"
	"github.com/synthward-labs/synthward/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "synthward",
		Short: "SynthWard - Synthetic Hospital Dataset Generator",
		Long: `SynthWard generates relationally consistent synthetic hospital
datasets: wards, patients, staff, devices, admissions, diagnoses and
vital signs, linked by foreign keys and certified by a validation pass.

Datasets are reproducible from a seed, repaired for cross-field
consistency after sampling, and exported as CSV or Parquet.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := slog.New(slog.DiscardHandler)
			if cfg.Verbose {
				logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: slog.LevelDebug,
				}))
				if used := config.GetConfigFileUsed(); used != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
				}
			}
			commands.SetContext(cfg, logger)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Built with Go and DuckDB
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./synthward.yaml)")
	rootCmd.PersistentFlags().String("out-dir", config.DefaultOutDir, "Output directory for exported tables")
	rootCmd.PersistentFlags().StringP("format", "f", config.DefaultFormat, "Export format (csv|parquet)")
	rootCmd.PersistentFlags().Float64("scale", config.DefaultScale, "Sampling scale relative to the seed row counts")
	rootCmd.PersistentFlags().Uint64("seed", config.DefaultSeed, "Random seed; identical seeds reproduce identical datasets")
	rootCmd.PersistentFlags().String("state-path", config.DefaultStateFile, "Path to the run history database")
	rootCmd.PersistentFlags().StringP("locale", "l", config.DefaultLocale, "Column header locale (en|it)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"csv", "parquet"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("locale", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"en", "it"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(commands.NewSeedCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewRepairCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
