// Package seed builds the reference dataset: one complete, schema-valid
// table set generated from a single seeded random source. Its output is
// both the synthesizer's training input and the ground-truth fixture for
// tests; it satisfies every registry invariant by construction and never
// needs the repair stage.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/synthward-labs/synthward/internal/schema"
	"github.com/synthward-labs/synthward/internal/table"
)

// Counts holds the number of rows to generate per table.
type Counts struct {
	Wards            int `koanf:"wards"`
	Patients         int `koanf:"patients"`
	Staff            int `koanf:"staff"`
	StaffAssignments int `koanf:"staff_assignments"`
	Devices          int `koanf:"devices"`
	Admissions       int `koanf:"admissions"`
	Diagnoses        int `koanf:"diagnoses"`
	VitalSigns       int `koanf:"vital_signs"`
}

// DefaultCounts returns the reference dataset size.
func DefaultCounts() Counts {
	return Counts{
		Wards:            10,
		Patients:         200,
		Staff:            60,
		StaffAssignments: 120,
		Devices:          30,
		Admissions:       400,
		Diagnoses:        500,
		VitalSigns:       2000,
	}
}

// ByTable returns the counts keyed by table name.
func (c Counts) ByTable() map[string]int {
	return map[string]int{
		"wards":             c.Wards,
		"patients":          c.Patients,
		"staff":             c.Staff,
		"staff_assignments": c.StaffAssignments,
		"devices":           c.Devices,
		"admissions":        c.Admissions,
		"diagnoses":         c.Diagnoses,
		"vital_signs":       c.VitalSigns,
	}
}

// Validate rejects degenerate configurations eagerly: every table must
// have at least one row, otherwise children would have no parent keys to
// reference.
func (c Counts) Validate(reg *schema.Registry) error {
	byTable := c.ByTable()
	for _, name := range reg.TableNames() {
		n, ok := byTable[name]
		if !ok {
			return &schema.ConfigurationError{Table: name, Detail: "no row count configured"}
		}
		if n < 1 {
			return &schema.ConfigurationError{Table: name, Detail: fmt.Sprintf("row count must be >= 1, got %d", n)}
		}
	}
	return nil
}

// Builder generates the seed table set. The random source is injected by
// the orchestrator so a fixed seed reproduces the dataset exactly.
type Builder struct {
	reg    *schema.Registry
	rng    *rand.Rand
	logger *slog.Logger
}

// NewBuilder creates a seed builder.
func NewBuilder(reg *schema.Registry, rng *rand.Rand, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{reg: reg, rng: rng, logger: logger}
}

// Build generates every table in relationship-DAG order, so each
// foreign-key column samples from an already-materialized parent.
func (b *Builder) Build(counts Counts) (table.Set, error) {
	if err := counts.Validate(b.reg); err != nil {
		return nil, err
	}

	byTable := counts.ByTable()
	set := make(table.Set, len(byTable))

	for _, name := range b.reg.GenerationOrder() {
		n := byTable[name]
		b.logger.Debug("generating seed table", "table", name, "rows", n)

		var t *table.Table
		switch name {
		case "wards":
			t = b.buildWards(n)
		case "patients":
			t = b.buildPatients(n)
		case "staff":
			t = b.buildStaff(n)
		case "staff_assignments":
			t = b.buildStaffAssignments(n, set)
		case "devices":
			t = b.buildDevices(n, set)
		case "admissions":
			t = b.buildAdmissions(n, set)
		case "diagnoses":
			t = b.buildDiagnoses(n, set)
		case "vital_signs":
			t = b.buildVitalSigns(n, set)
		default:
			return nil, fmt.Errorf("no seed generator for table %q", name)
		}
		set[name] = t
	}

	return set, nil
}

// Name and address pools for generated people.
var (
	firstNames  = []string{"Luca", "Marco", "Giulia", "Sara", "Anna", "Paolo", "Elena", "Matteo", "Chiara", "Davide"}
	lastNames   = []string{"Rossi", "Russo", "Ferrari", "Esposito", "Bianchi", "Romano", "Gallo", "Costa", "Fontana", "Greco"}
	streetNames = []string{"Via Roma", "Corso Italia", "Via Milano", "Via Garibaldi", "Via Dante", "Via Verdi"}
	cities      = []string{"Milano", "Roma", "Torino", "Napoli", "Bologna", "Firenze", "Venezia", "Genova"}
)

func (b *Builder) buildWards(n int) *table.Table {
	tbl, _ := b.reg.Table("wards")
	t := table.New("wards", tbl.ColumnNames())
	ids := makeIDs(tbl.KeyPrefix, n, tbl.KeyWidth)
	for i := 0; i < n; i++ {
		t.Append(table.Row{
			"ward_id":   ids[i],
			"ward_name": fmt.Sprintf("Ward %02d", i+1),
			"specialty": b.pick(schema.Specialties),
		})
	}
	return t
}

func (b *Builder) buildPatients(n int) *table.Table {
	tbl, _ := b.reg.Table("patients")
	t := table.New("patients", tbl.ColumnNames())
	ids := makeIDs(tbl.KeyPrefix, n, tbl.KeyWidth)
	for i := 0; i < n; i++ {
		first := b.pick(firstNames)
		last := b.pick(lastNames)
		suffix := fmt.Sprintf("%d", 1+b.rng.IntN(9998))
		t.Append(table.Row{
			"patient_id":              ids[i],
			"first_name":              first,
			"last_name":               last,
			"sex":                     b.pick([]string{"F", "M"}),
			"birth_date":              b.randomDate(schema.BirthStart, schema.BirthEnd),
			"city":                    b.pick(cities),
			"address":                 fmt.Sprintf("%s %d", b.pick(streetNames), 1+b.rng.IntN(199)),
			"postal_code":             fmt.Sprintf("%05d", 10000+b.rng.IntN(90000)),
			"country":                 "Italy",
			"email":                   tbl.Email.Address(first, last, suffix),
			"phone":                   b.phone(),
			"fiscal_code":             fmt.Sprintf("CF%010d", b.rng.Int64N(9_000_000_000)+1_000_000_000),
			"marital_status":          b.pick(schema.MaritalStatuses),
			"primary_language":        "it",
			"insurance_provider":      b.pick(schema.InsuranceProviders),
			"insurance_plan":          b.pick(schema.InsurancePlans),
			"insurance_id":            fmt.Sprintf("INS%07d", b.rng.Int64N(90_000_000)+10_000_000),
			"emergency_contact_name":  fmt.Sprintf("%s %s", b.pick(firstNames), b.pick(lastNames)),
			"emergency_contact_phone": b.phone(),
			"height_cm":               int64(140 + b.rng.IntN(61)),
			"weight_kg":               int64(45 + b.rng.IntN(76)),
			"blood_type":              b.pick(schema.BloodTypes),
		})
	}
	return t
}

func (b *Builder) buildStaff(n int) *table.Table {
	tbl, _ := b.reg.Table("staff")
	t := table.New("staff", tbl.ColumnNames())
	ids := makeIDs(tbl.KeyPrefix, n, tbl.KeyWidth)
	for i := 0; i < n; i++ {
		first := b.pick(firstNames)
		last := b.pick(lastNames)
		t.Append(table.Row{
			"staff_id":        ids[i],
			"first_name":      first,
			"last_name":       last,
			"role":            b.pick(schema.StaffRoles),
			"department":      b.pick(schema.Specialties),
			"employment_type": b.pick(schema.EmploymentTypes),
			"email":           tbl.Email.Address(first, last, ""),
			"phone":           b.phone(),
			"license_id":      fmt.Sprintf("LIC%06d", b.rng.Int64N(9_000_000)+1_000_000),
			"hire_date":       b.randomDate(schema.HireStart, schema.HireEnd),
		})
	}
	return t
}

func (b *Builder) buildStaffAssignments(n int, set table.Set) *table.Table {
	tbl, _ := b.reg.Table("staff_assignments")
	t := table.New("staff_assignments", tbl.ColumnNames())
	ids := makeIDs(tbl.KeyPrefix, n, tbl.KeyWidth)
	staffIDs := primaryKeys(set["staff"], "staff_id")
	wardIDs := primaryKeys(set["wards"], "ward_id")
	for i := 0; i < n; i++ {
		t.Append(table.Row{
			"assignment_id": ids[i],
			"staff_id":      b.pick(staffIDs),
			"ward_id":       b.pick(wardIDs),
			"shift":         b.pick(schema.Shifts),
		})
	}
	return t
}

func (b *Builder) buildDevices(n int, set table.Set) *table.Table {
	tbl, _ := b.reg.Table("devices")
	t := table.New("devices", tbl.ColumnNames())
	ids := makeIDs(tbl.KeyPrefix, n, tbl.KeyWidth)
	wardIDs := primaryKeys(set["wards"], "ward_id")
	for i := 0; i < n; i++ {
		purchase := b.randomDate(schema.PurchaseStart, schema.PurchaseEnd)
		// Calibration happens after purchase and inside its own window.
		calibFrom := schema.CalibrationStart
		if purchase.After(calibFrom) {
			calibFrom = purchase
		}
		t.Append(table.Row{
			"device_id":             ids[i],
			"ward_id":               b.pick(wardIDs),
			"device_type":           b.pick(schema.DeviceTypes),
			"manufacturer":          b.pick(schema.DeviceManufacturers),
			"model":                 b.pick(schema.DeviceModels),
			"serial_number":         fmt.Sprintf("SN%010d", b.rng.Int64N(9_000_000_000)+1_000_000_000),
			"status":                b.pickWeighted(schema.DeviceStatuses, []float64{0.8, 0.15, 0.05}),
			"purchase_date":         purchase,
			"last_calibration_date": b.randomDate(calibFrom, schema.CalibrationEnd),
		})
	}
	return t
}

func (b *Builder) buildAdmissions(n int, set table.Set) *table.Table {
	tbl, _ := b.reg.Table("admissions")
	t := table.New("admissions", tbl.ColumnNames())
	ids := makeIDs(tbl.KeyPrefix, n, tbl.KeyWidth)
	patientIDs := primaryKeys(set["patients"], "patient_id")
	wardIDs := primaryKeys(set["wards"], "ward_id")
	for i := 0; i < n; i++ {
		admit := b.randomTimestamp(schema.AdmissionsStart, schema.AdmissionsEnd)
		// Sample the stay first and derive the discharge from it; that
		// keeps discharge >= admit and the derived stay_days consistent
		// without a repair pass.
		stay := int64(schema.MinStaySeedDays + b.rng.IntN(schema.MaxStaySeedDays-schema.MinStaySeedDays+1))
		discharge := admit.Add(time.Duration(stay) * 24 * time.Hour)
		t.Append(table.Row{
			"admission_id":      ids[i],
			"patient_id":        b.pick(patientIDs),
			"ward_id":           b.pick(wardIDs),
			"admit_ts":          admit,
			"discharge_ts":      discharge,
			"stay_days":         stay,
			"admission_type":    b.pick(schema.AdmissionTypes),
			"admission_source":  b.pick(schema.AdmissionSources),
			"discharge_outcome": b.pickWeighted(schema.DischargeOutcomes, []float64{0.8, 0.1, 0.08, 0.02}),
		})
	}
	return t
}

func (b *Builder) buildDiagnoses(n int, set table.Set) *table.Table {
	tbl, _ := b.reg.Table("diagnoses")
	t := table.New("diagnoses", tbl.ColumnNames())
	ids := makeIDs(tbl.KeyPrefix, n, tbl.KeyWidth)
	admissionIDs := primaryKeys(set["admissions"], "admission_id")
	for i := 0; i < n; i++ {
		t.Append(table.Row{
			"diagnosis_id": ids[i],
			"admission_id": b.pick(admissionIDs),
			"icd10_code":   b.pick(schema.ICD10Codes),
			"severity":     b.pickWeighted(schema.Severities, []float64{0.5, 0.35, 0.15}),
		})
	}
	return t
}

func (b *Builder) buildVitalSigns(n int, set table.Set) *table.Table {
	tbl, _ := b.reg.Table("vital_signs")
	t := table.New("vital_signs", tbl.ColumnNames())
	ids := makeIDs(tbl.KeyPrefix, n, tbl.KeyWidth)
	patientIDs := primaryKeys(set["patients"], "patient_id")
	deviceIDs := primaryKeys(set["devices"], "device_id")
	for i := 0; i < n; i++ {
		temp := 35.0 + b.rng.Float64()*5.5
		t.Append(table.Row{
			"measurement_id":   ids[i],
			"patient_id":       b.pick(patientIDs),
			"device_id":        b.pick(deviceIDs),
			"measured_at":      b.randomTimestamp(schema.VitalsStart, schema.VitalsEnd),
			"heart_rate":       int64(50 + b.rng.IntN(71)),
			"spo2":             int64(90 + b.rng.IntN(11)),
			"systolic_bp":      int64(95 + b.rng.IntN(66)),
			"diastolic_bp":     int64(60 + b.rng.IntN(41)),
			"temperature_c":    float64(int(temp*10+0.5)) / 10,
			"respiratory_rate": int64(10 + b.rng.IntN(21)),
			"glucose_mg_dl":    int64(70 + b.rng.IntN(111)),
		})
	}
	return t
}

// makeIDs returns zero-padded sequential identifiers with a fixed prefix,
// guaranteeing uniqueness without coordination.
func makeIDs(prefix string, count, width int) []string {
	ids := make([]string, count)
	for i := 0; i < count; i++ {
		ids[i] = fmt.Sprintf("%s%0*d", prefix, width, i+1)
	}
	return ids
}

// primaryKeys returns all PK values of a materialized parent table.
func primaryKeys(t *table.Table, pk string) []string {
	keys := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		keys[i], _ = table.AsString(row[pk])
	}
	return keys
}

func (b *Builder) phone() string {
	return fmt.Sprintf("+39 3%09d", b.rng.Int64N(900_000_000)+100_000_000)
}

func (b *Builder) pick(values []string) string {
	return values[b.rng.IntN(len(values))]
}

// pickWeighted samples one value with the given probabilities.
func (b *Builder) pickWeighted(values []string, weights []float64) string {
	r := b.rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return values[i]
		}
	}
	return values[len(values)-1]
}

// randomTimestamp samples uniformly between two instants at second
// granularity.
func (b *Builder) randomTimestamp(start, end time.Time) time.Time {
	span := end.Unix() - start.Unix()
	return time.Unix(start.Unix()+b.rng.Int64N(span+1), 0).UTC()
}

// randomDate samples a timestamp and truncates it to midnight UTC.
func (b *Builder) randomDate(start, end time.Time) time.Time {
	return b.randomTimestamp(start, end).Truncate(24 * time.Hour)
}
