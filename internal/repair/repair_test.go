package repair

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthward-labs/synthward/internal/schema"
	"github.com/synthward-labs/synthward/internal/seed"
	"github.com/synthward-labs/synthward/internal/table"
)

func newRand(s uint64) *rand.Rand {
	return rand.New(rand.NewPCG(s, s))
}

func buildSeed(t *testing.T, s uint64) (*schema.Registry, table.Set) {
	t.Helper()
	reg := schema.Clinical()
	b := seed.NewBuilder(reg, newRand(s), nil)
	set, err := b.Build(seed.DefaultCounts())
	require.NoError(t, err)
	return reg, set
}

func TestRepairFixesInvertedDischarge(t *testing.T) {
	reg, set := buildSeed(t, 42)

	adm := set["admissions"]
	require.Greater(t, adm.Len(), 1)

	// Break one row so discharge precedes admission, and snapshot the
	// rest to prove repair leaves untouched rows alone.
	broken := adm.Rows[7]
	admit, ok := table.AsTime(broken["admit_ts"])
	require.True(t, ok)
	broken["discharge_ts"] = admit.Add(-48 * time.Hour)
	broken["stay_days"] = int64(-2)

	before := adm.Clone()

	New(reg, newRand(1), nil).Repair(set)

	start, ok := table.AsTime(broken["admit_ts"])
	require.True(t, ok)
	end, ok := table.AsTime(broken["discharge_ts"])
	require.True(t, ok)
	days, ok := table.AsInt64(broken["stay_days"])
	require.True(t, ok)

	assert.False(t, end.Before(start))
	assert.GreaterOrEqual(t, days, int64(schema.MinStayDays))
	assert.LessOrEqual(t, days, int64(schema.MaxStayDays))
	assert.Equal(t, days, int64(end.Sub(start)/(24*time.Hour)))

	for i, row := range adm.Rows {
		if i == 7 {
			continue
		}
		assert.Equal(t, before.Rows[i], row, "row %d modified without cause", i)
	}
}

func TestRepairRecomputesDriftedDuration(t *testing.T) {
	reg, set := buildSeed(t, 42)

	adm := set["admissions"]
	row := adm.Rows[3]
	row["stay_days"] = int64(29) // dates still valid, stored duration wrong
	start, _ := table.AsTime(row["admit_ts"])
	end, _ := table.AsTime(row["discharge_ts"])

	New(reg, newRand(1), nil).Repair(set)

	days, ok := table.AsInt64(row["stay_days"])
	require.True(t, ok)
	assert.Equal(t, int64(end.Sub(start)/(24*time.Hour)), days)
	// Valid dates are recomputed from, never redrawn.
	gotStart, _ := table.AsTime(row["admit_ts"])
	gotEnd, _ := table.AsTime(row["discharge_ts"])
	assert.True(t, gotStart.Equal(start))
	assert.True(t, gotEnd.Equal(end))
}

func TestRepairOrderedCalibrationDates(t *testing.T) {
	reg, set := buildSeed(t, 42)

	dev := set["devices"]
	row := dev.Rows[0]
	purchase, ok := table.AsTime(row["purchase_date"])
	require.True(t, ok)
	row["last_calibration_date"] = purchase.AddDate(-1, 0, 0)

	New(reg, newRand(1), nil).Repair(set)

	calib, ok := table.AsTime(row["last_calibration_date"])
	require.True(t, ok)
	assert.False(t, calib.Before(purchase))
	assert.False(t, calib.After(schema.CalibrationEnd))
}

func TestRepairIsIdempotent(t *testing.T) {
	reg, set := buildSeed(t, 7)

	// Corrupt a spread of rows across the repairable concerns.
	adm := set["admissions"]
	for _, i := range []int{0, 11, 42} {
		admit, _ := table.AsTime(adm.Rows[i]["admit_ts"])
		adm.Rows[i]["discharge_ts"] = admit.Add(-time.Hour)
	}
	set["patients"].Rows[5]["email"] = "nonsense@wrong.example"

	New(reg, newRand(3), nil).Repair(set)
	once := set.Clone()
	New(reg, newRand(99), nil).Repair(set)

	for _, name := range reg.TableNames() {
		assert.Equal(t, once[name].Rows, set[name].Rows, "table %s changed on second repair", name)
	}
}

func TestRepairRederivesEmails(t *testing.T) {
	reg, set := buildSeed(t, 42)

	pat := set["patients"]
	tampered := pat.Rows[0]
	tampered["email"] = "tampered@elsewhere.example"

	intact := pat.Rows[1]
	intactBefore, ok := table.AsString(intact["email"])
	require.True(t, ok)
	require.NotEmpty(t, schema.NumericSuffix(intactBefore))

	New(reg, newRand(1), nil).Repair(set)

	// The tampered address carried no digit suffix, so the derived
	// replacement has none either.
	first, _ := table.AsString(tampered["first_name"])
	last, _ := table.AsString(tampered["last_name"])
	rule := &schema.EmailRule{Domain: schema.PatientEmailDomain}
	assert.Equal(t, rule.Address(first, last, ""), tampered["email"])

	// Untouched rows keep their suffix, so re-deriving is a no-op.
	assert.Equal(t, intactBefore, intact["email"])
}
