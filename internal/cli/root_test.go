package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "synthward v")
	assert.Contains(t, out, "DuckDB")
}

func TestRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "validate", "--format", "xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx")
}

func TestRejectsUnknownLocale(t *testing.T) {
	_, err := execute(t, "seed", "--locale", "de")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locale")
}

func TestValidateMissingDataset(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nowhere")
	_, err := execute(t, "validate", dir)
	require.Error(t, err)
}

func TestGenerateEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("full pipeline run")
	}
	dir := t.TempDir()
	t.Setenv("SYNTHWARD_COUNTS__WARDS", "3")
	t.Setenv("SYNTHWARD_COUNTS__PATIENTS", "10")
	t.Setenv("SYNTHWARD_COUNTS__STAFF", "5")
	t.Setenv("SYNTHWARD_COUNTS__STAFF_ASSIGNMENTS", "5")
	t.Setenv("SYNTHWARD_COUNTS__DEVICES", "4")
	t.Setenv("SYNTHWARD_COUNTS__ADMISSIONS", "10")
	t.Setenv("SYNTHWARD_COUNTS__DIAGNOSES", "10")
	t.Setenv("SYNTHWARD_COUNTS__VITAL_SIGNS", "20")

	out, err := execute(t, "generate",
		"--out-dir", filepath.Join(dir, "out"),
		"--state-path", filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "patients")
	assert.Contains(t, out, "Dataset written to")

	out, err = execute(t, "validate",
		"--out-dir", filepath.Join(dir, "out"),
		"--state-path", filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}
