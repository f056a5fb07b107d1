package export

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthward-labs/synthward/internal/schema"
	"github.com/synthward-labs/synthward/internal/seed"
	"github.com/synthward-labs/synthward/internal/table"
)

func smallCounts() seed.Counts {
	return seed.Counts{
		Wards:            3,
		Patients:         10,
		Staff:            5,
		StaffAssignments: 5,
		Devices:          4,
		Admissions:       10,
		Diagnoses:        10,
		VitalSigns:       20,
	}
}

func buildSeed(t *testing.T) (*schema.Registry, table.Set) {
	t.Helper()
	reg := schema.Clinical()
	b := seed.NewBuilder(reg, rand.New(rand.NewPCG(42, 42)), nil)
	set, err := b.Build(smallCounts())
	require.NoError(t, err)
	return reg, set
}

func TestExportLoadParquetRoundTrip(t *testing.T) {
	reg, set := buildSeed(t)
	dir := t.TempDir()
	ex := New(reg, nil)
	ctx := context.Background()

	require.NoError(t, ex.Export(ctx, set, dir, FormatParquet, schema.LocaleEN))

	for _, name := range reg.TableNames() {
		spec, _ := reg.Table(name)
		path := filepath.Join(dir, spec.Group, name+".parquet")
		assert.FileExists(t, path)
	}

	loaded, err := ex.Load(ctx, dir, schema.LocaleEN)
	require.NoError(t, err)

	for _, name := range reg.TableNames() {
		require.Equal(t, set[name].Len(), loaded[name].Len(), "table %s", name)
	}

	// Spot-check cell fidelity on a timestamped row.
	want := set["admissions"].Rows[0]
	got := findByKey(t, loaded["admissions"], "admission_id", want["admission_id"])
	wantTs, _ := table.AsTime(want["admit_ts"])
	gotTs, ok := table.AsTime(got["admit_ts"])
	require.True(t, ok)
	assert.True(t, gotTs.Equal(wantTs))
	assert.Equal(t, want["stay_days"], got["stay_days"])
	assert.Equal(t, want["admission_type"], got["admission_type"])
}

func TestExportLoadCSVKeepsStringColumns(t *testing.T) {
	reg, set := buildSeed(t)
	dir := t.TempDir()
	ex := New(reg, nil)
	ctx := context.Background()

	require.NoError(t, ex.Export(ctx, set, dir, FormatCSV, schema.LocaleEN))

	loaded, err := ex.Load(ctx, dir, schema.LocaleEN)
	require.NoError(t, err)

	// Digit-only strings must survive the CSV round trip as strings.
	row := loaded["patients"].Rows[0]
	_, ok := row["postal_code"].(string)
	assert.True(t, ok, "postal_code loaded as %T", row["postal_code"])
	hr, ok := loaded["vital_signs"].Rows[0]["heart_rate"].(int64)
	assert.True(t, ok, "heart_rate loaded as %T", loaded["vital_signs"].Rows[0]["heart_rate"])
	assert.Positive(t, hr)
}

func TestExportItalianHeaders(t *testing.T) {
	reg, set := buildSeed(t)
	dir := t.TempDir()
	ex := New(reg, nil)
	ctx := context.Background()

	require.NoError(t, ex.Export(ctx, set, dir, FormatCSV, schema.LocaleIT))

	data, err := os.ReadFile(filepath.Join(dir, schema.GroupClinical, "patients.csv"))
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.Contains(t, header, "id_paziente")
	assert.Contains(t, header, "data_nascita")
	assert.NotContains(t, header, "patient_id")

	// Loading maps the display headers back to canonical identifiers.
	loaded, err := ex.Load(ctx, dir, schema.LocaleIT)
	require.NoError(t, err)
	assert.True(t, loaded["patients"].HasColumn("patient_id"))
}

func TestLoadMissingArtifact(t *testing.T) {
	reg, _ := buildSeed(t)
	ex := New(reg, nil)

	_, err := ex.Load(context.Background(), t.TempDir(), schema.LocaleEN)
	require.Error(t, err)
	var merr *MissingArtifactError
	require.True(t, errors.As(err, &merr))
}

func TestExportRejectsPartialSet(t *testing.T) {
	reg, set := buildSeed(t)
	delete(set, "devices")
	ex := New(reg, nil)

	err := ex.Export(context.Background(), set, t.TempDir(), FormatParquet, schema.LocaleEN)
	require.Error(t, err)
	var merr *MissingArtifactError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, "devices", merr.Table)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	_, err = ParseFormat("xlsx")
	require.Error(t, err)
}

func findByKey(t *testing.T, tbl *table.Table, col string, want any) table.Row {
	t.Helper()
	for _, row := range tbl.Rows {
		if row[col] == want {
			return row
		}
	}
	t.Fatalf("no row with %s=%v", col, want)
	return nil
}
