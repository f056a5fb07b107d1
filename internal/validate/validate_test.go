package validate

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthward-labs/synthward/internal/schema"
	"github.com/synthward-labs/synthward/internal/seed"
	"github.com/synthward-labs/synthward/internal/table"
)

func buildSeed(t *testing.T, s uint64) (*schema.Registry, table.Set) {
	t.Helper()
	reg := schema.Clinical()
	b := seed.NewBuilder(reg, rand.New(rand.NewPCG(s, s)), nil)
	set, err := b.Build(seed.DefaultCounts())
	require.NoError(t, err)
	return reg, set
}

func TestValidateCleanSeedPasses(t *testing.T) {
	reg, set := buildSeed(t, 42)
	require.NoError(t, New(reg, nil).Validate(set))
}

func TestValidateReportsOrphanDeviceReading(t *testing.T) {
	reg, set := buildSeed(t, 42)
	set["vital_signs"].Rows[3]["device_id"] = "D99999"

	err := New(reg, nil).Validate(set)
	require.Error(t, err)

	var ierr *IntegrityError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, KindOrphan, ierr.Kind)
	assert.Equal(t, "vital_signs.device_id -> devices.device_id", ierr.Relationship)
	assert.Equal(t, 1, ierr.Count)
	assert.Contains(t, ierr.Examples, "D99999")
	assert.Contains(t, err.Error(), "D99999")
}

func TestValidateReportsDuplicatePatientKey(t *testing.T) {
	reg, set := buildSeed(t, 42)
	pat := set["patients"]
	pat.Rows[5]["patient_id"] = pat.Rows[0]["patient_id"]

	err := New(reg, nil).CheckPrimaryKeys(set)
	require.Error(t, err)

	var ierr *IntegrityError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, KindDuplicate, ierr.Kind)
	assert.Equal(t, "patients", ierr.Table)
	assert.Equal(t, 1, ierr.Count)
	dup, _ := table.AsString(pat.Rows[0]["patient_id"])
	assert.Contains(t, ierr.Examples, dup)
}

func TestValidateReportsMissingTable(t *testing.T) {
	reg, set := buildSeed(t, 42)
	delete(set, "wards")

	err := New(reg, nil).CheckPrimaryKeys(set)
	require.Error(t, err)

	var ierr *IntegrityError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, KindMissingTable, ierr.Kind)
	assert.Equal(t, "wards", ierr.Table)
}

func TestValidateSweepsWholeColumn(t *testing.T) {
	reg, set := buildSeed(t, 42)
	adm := set["admissions"]
	for _, i := range []int{0, 1, 2, 3, 4, 5, 6} {
		adm.Rows[i]["admission_type"] = "Walk-in"
	}

	err := New(reg, nil).CheckDomains(set)
	require.Error(t, err)

	var derr *DomainConstraintError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "admissions", derr.Table)
	assert.Equal(t, "allowed_values", derr.Check)
	assert.Equal(t, 7, derr.Count)
	assert.Len(t, derr.Examples, 5)
}

func TestValidateDurationArithmetic(t *testing.T) {
	reg, set := buildSeed(t, 42)
	adm := set["admissions"]
	row := adm.Rows[9]
	days, ok := table.AsInt64(row["stay_days"])
	require.True(t, ok)
	row["stay_days"] = days + 1

	err := New(reg, nil).CheckDomains(set)
	require.Error(t, err)

	var derr *DomainConstraintError
	found := false
	for _, e := range splitJoined(err) {
		if errors.As(e, &derr) && derr.Check == "duration_days" {
			found = true
			break
		}
	}
	require.True(t, found, "expected a duration_days violation, got %v", err)
	assert.Equal(t, []string{"admit_ts", "discharge_ts", "stay_days"}, derr.Columns)
	key, _ := table.AsString(row["admission_id"])
	assert.True(t, strings.Contains(derr.Examples[0], key))
}

func TestValidateFlagsStayBeyondRange(t *testing.T) {
	reg, set := buildSeed(t, 42)
	adm := set["admissions"]
	row := adm.Rows[0]
	admit, ok := table.AsTime(row["admit_ts"])
	require.True(t, ok)
	row["discharge_ts"] = admit.Add(45 * 24 * time.Hour)
	row["stay_days"] = int64(45)

	err := New(reg, nil).CheckDomains(set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside [1, 30]")
}

func TestValidateNullForeignKeySkipped(t *testing.T) {
	reg, set := buildSeed(t, 42)
	// discharge_outcome aside, FK columns in this schema are mandatory,
	// so a nil FK is reported by the null pass rather than as an orphan.
	set["diagnoses"].Rows[2]["admission_id"] = nil

	err := New(reg, nil).CheckForeignKeys(set)
	require.NoError(t, err)

	err = New(reg, nil).CheckDomains(set)
	require.Error(t, err)
	var derr *DomainConstraintError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "not_null", derr.Check)
}

func splitJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, splitJoined(e)...)
		}
		return out
	}
	return []error{err}
}
