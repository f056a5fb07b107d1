package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultOutDir, cfg.OutDir)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, 1.0, cfg.Scale)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 200, cfg.Counts.Patients)
	assert.Equal(t, 2000, cfg.Counts.VitalSigns)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synthward.yaml")
	content := `
out_dir: dataset
format: csv
scale: 2.5
locale: it
counts:
  patients: 500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, "dataset", cfg.OutDir)
	assert.Equal(t, "csv", cfg.Format)
	assert.Equal(t, 2.5, cfg.Scale)
	assert.Equal(t, "it", cfg.Locale)
	assert.Equal(t, 500, cfg.Counts.Patients)
	// Unset keys keep their defaults.
	assert.Equal(t, 60, cfg.Counts.Staff)
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SYNTHWARD_FORMAT", "csv")
	t.Setenv("SYNTHWARD_COUNTS__WARDS", "25")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Format)
	assert.Equal(t, 25, cfg.Counts.Wards)
}

func TestFlagsWinOverEnv(t *testing.T) {
	t.Setenv("SYNTHWARD_SCALE", "3.0")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("scale", 1.0, "")
	flags.String("out-dir", DefaultOutDir, "")
	require.NoError(t, flags.Parse([]string{"--scale", "0.5", "--out-dir", "elsewhere"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Scale)
	assert.Equal(t, "elsewhere", cfg.OutDir)
}

func TestValidateRejectsBadValues(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Format = "xlsx" }},
		{"locale", func(c *Config) { c.Locale = "de" }},
		{"scale", func(c *Config) { c.Scale = 0 }},
		{"out_dir", func(c *Config) { c.OutDir = "" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load("", nil)
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
