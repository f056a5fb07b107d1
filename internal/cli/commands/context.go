package commands

import (
	"log/slog"

	"github.com/synthward-labs/synthward/internal/cli/config"
	"github.com/synthward-labs/synthward/internal/export"
	"github.com/synthward-labs/synthward/internal/pipeline"
	"github.com/synthward-labs/synthward/internal/schema"
	"github.com/synthward-labs/synthward/internal/seed"
)

var (
	current *config.Config
	logger  = slog.New(slog.DiscardHandler)
)

// SetContext installs the loaded configuration and logger for all
// commands. Called by the root command after configuration is resolved.
func SetContext(cfg *config.Config, l *slog.Logger) {
	current = cfg
	if l != nil {
		logger = l
	}
}

func getConfig() *config.Config {
	if current == nil {
		return &config.Config{
			OutDir:    config.DefaultOutDir,
			Format:    config.DefaultFormat,
			Scale:     config.DefaultScale,
			Seed:      config.DefaultSeed,
			StatePath: config.DefaultStateFile,
			Locale:    config.DefaultLocale,
			Counts:    seed.DefaultCounts(),
		}
	}
	return current
}

func getLogger() *slog.Logger { return logger }

// pipelineOptions maps the CLI configuration onto pipeline options. The
// format and locale were already validated during config load.
func pipelineOptions(cfg *config.Config) pipeline.Options {
	format, _ := export.ParseFormat(cfg.Format)
	return pipeline.Options{
		Seed:      cfg.Seed,
		Scale:     cfg.Scale,
		Counts:    cfg.Counts,
		OutDir:    cfg.OutDir,
		Format:    format,
		Locale:    schema.Locale(cfg.Locale),
		StatePath: cfg.StatePath,
	}
}
