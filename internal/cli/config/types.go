// Package config provides configuration management for the synthward
// CLI. Values are layered from defaults, an optional synthward.yaml
// file, SYNTHWARD_ environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"fmt"

	"github.com/synthward-labs/synthward/internal/export"
	"github.com/synthward-labs/synthward/internal/schema"
	"github.com/synthward-labs/synthward/internal/seed"
)

// Defaults.
const (
	DefaultOutDir    = "out"
	DefaultFormat    = "parquet"
	DefaultStateFile = ".synthward/history.db"
	DefaultLocale    = "en"
	DefaultScale     = 1.0
	DefaultSeed      = 42
)

// Config holds all CLI configuration options.
type Config struct {
	OutDir    string      `koanf:"out_dir"`
	Format    string      `koanf:"format"`
	Scale     float64     `koanf:"scale"`
	Seed      uint64      `koanf:"seed"`
	StatePath string      `koanf:"state_path"`
	Locale    string      `koanf:"locale"`
	Verbose   bool        `koanf:"verbose"`
	Counts    seed.Counts `koanf:"counts"`
}

// Validate checks the cross-cutting options. Table counts are validated
// against the registry later, by the pipeline.
func (c *Config) Validate() error {
	if _, err := export.ParseFormat(c.Format); err != nil {
		return err
	}
	if !schema.Locale(c.Locale).Valid() {
		return fmt.Errorf("unsupported locale %q, want en or it", c.Locale)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %g", c.Scale)
	}
	if c.OutDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	return nil
}
