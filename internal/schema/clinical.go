package schema

// clinical.go - the hospital dataset registry: eight tables grouped into
// clinical records, ward operations, and device telemetry.

import "time"

// Export groups. Each table is persisted under its group's subdirectory.
const (
	GroupClinical   = "clinical"
	GroupOperations = "operations"
	GroupTelemetry  = "telemetry"
)

// Domain value sets shared between the registry and the seed builder.
var (
	Specialties = []string{"Cardiology", "Neurology", "Oncology", "Pediatrics", "Emergency", "ICU", "Orthopedics"}

	MaritalStatuses    = []string{"single", "married", "divorced", "widowed"}
	InsurancePlans     = []string{"basic", "standard", "premium"}
	InsuranceProviders = []string{"Generali", "Unisalute", "Reale Mutua", "Poste Vita", "Sara Assicurazioni"}
	BloodTypes         = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

	StaffRoles      = []string{"Nurse", "Doctor", "Technician", "Therapist"}
	EmploymentTypes = []string{"full_time", "part_time", "contract"}
	Shifts          = []string{"Day", "Night", "Evening"}

	DeviceTypes         = []string{"ECG", "PulseOx", "BPMonitor", "Thermometer"}
	DeviceManufacturers = []string{"Medtronic", "Philips", "GE Healthcare", "Siemens", "Mindray"}
	DeviceModels        = []string{"A1", "B2", "C3", "D4", "E5"}
	DeviceStatuses      = []string{"Active", "Maintenance", "Retired"}

	AdmissionTypes    = []string{"Emergency", "Elective", "Urgent"}
	AdmissionSources  = []string{"ER", "Referral", "Transfer"}
	DischargeOutcomes = []string{"Home", "Transfer", "Rehabilitation", "Deceased"}

	ICD10Codes = []string{"I10", "E11", "J18", "K21", "M54", "N39"}
	Severities = []string{"low", "medium", "high"}
)

// Date windows for generated and validated data.
var (
	BirthStart       = date(1950, 1, 1)
	BirthEnd         = date(2010, 12, 31)
	HireStart        = date(2010, 1, 1)
	HireEnd          = date(2024, 12, 31)
	PurchaseStart    = date(2018, 1, 1)
	PurchaseEnd      = date(2024, 12, 31)
	CalibrationStart = date(2024, 1, 1)
	CalibrationEnd   = date(2026, 12, 31)
	AdmissionsStart  = date(2024, 1, 1)
	AdmissionsEnd    = date(2026, 12, 31)
	VitalsStart      = date(2025, 1, 1)
	VitalsEnd        = date(2026, 12, 31)
)

// Admission stay length: seed draws fall in [MinStaySeedDays, MaxStaySeedDays];
// the declared valid range for the derived stay_days field is wider.
const (
	MinStaySeedDays = 1
	MaxStaySeedDays = 14
	MinStayDays     = 1
	MaxStayDays     = 30
)

// Email domains for derived contact addresses.
const (
	PatientEmailDomain = "example.it"
	StaffEmailDomain   = "hospital.example.it"
)

// Clinical returns the hospital dataset registry. The registry is built
// fresh on every call; construction cannot fail for this fixed schema, so
// an error here is a programming mistake.
func Clinical() *Registry {
	r, err := NewRegistry(clinicalTables(), clinicalRelationships())
	if err != nil {
		panic(err)
	}
	return r
}

func clinicalRelationships() []Relationship {
	return []Relationship{
		{ChildTable: "admissions", ChildColumn: "patient_id", ParentTable: "patients", ParentColumn: "patient_id"},
		{ChildTable: "admissions", ChildColumn: "ward_id", ParentTable: "wards", ParentColumn: "ward_id"},
		{ChildTable: "diagnoses", ChildColumn: "admission_id", ParentTable: "admissions", ParentColumn: "admission_id"},
		{ChildTable: "staff_assignments", ChildColumn: "staff_id", ParentTable: "staff", ParentColumn: "staff_id"},
		{ChildTable: "staff_assignments", ChildColumn: "ward_id", ParentTable: "wards", ParentColumn: "ward_id"},
		{ChildTable: "devices", ChildColumn: "ward_id", ParentTable: "wards", ParentColumn: "ward_id"},
		{ChildTable: "vital_signs", ChildColumn: "patient_id", ParentTable: "patients", ParentColumn: "patient_id"},
		{ChildTable: "vital_signs", ChildColumn: "device_id", ParentTable: "devices", ParentColumn: "device_id"},
	}
}

func clinicalTables() []*Table {
	return []*Table{
		{
			Name:       "wards",
			Group:      GroupOperations,
			PrimaryKey: "ward_id",
			KeyPrefix:  "W",
			KeyWidth:   3,
			Columns: []Column{
				{Name: "ward_id", Type: TypeString},
				{Name: "ward_name", Type: TypeString},
				{Name: "specialty", Type: TypeCategory, Allowed: Specialties},
			},
		},
		{
			Name:       "patients",
			Group:      GroupClinical,
			PrimaryKey: "patient_id",
			KeyPrefix:  "P",
			KeyWidth:   6,
			Columns: []Column{
				{Name: "patient_id", Type: TypeString},
				{Name: "first_name", Type: TypeString},
				{Name: "last_name", Type: TypeString},
				{Name: "sex", Type: TypeCategory, Allowed: []string{"F", "M"}},
				{Name: "birth_date", Type: TypeDate, MinTime: &BirthStart, MaxTime: &BirthEnd},
				{Name: "city", Type: TypeString},
				{Name: "address", Type: TypeString},
				{Name: "postal_code", Type: TypeString},
				{Name: "country", Type: TypeCategory, Allowed: []string{"Italy"}},
				{Name: "email", Type: TypeString},
				{Name: "phone", Type: TypeString},
				{Name: "fiscal_code", Type: TypeString},
				{Name: "marital_status", Type: TypeCategory, Allowed: MaritalStatuses},
				{Name: "primary_language", Type: TypeCategory, Allowed: []string{"it"}},
				{Name: "insurance_provider", Type: TypeString},
				{Name: "insurance_plan", Type: TypeCategory, Allowed: InsurancePlans},
				{Name: "insurance_id", Type: TypeString},
				{Name: "emergency_contact_name", Type: TypeString},
				{Name: "emergency_contact_phone", Type: TypeString},
				{Name: "height_cm", Type: TypeInt, Min: fp(140), Max: fp(200)},
				{Name: "weight_kg", Type: TypeInt, Min: fp(45), Max: fp(120)},
				{Name: "blood_type", Type: TypeCategory, Allowed: BloodTypes},
			},
			Email: &EmailRule{FirstName: "first_name", LastName: "last_name", Email: "email", Domain: PatientEmailDomain},
		},
		{
			Name:       "staff",
			Group:      GroupOperations,
			PrimaryKey: "staff_id",
			KeyPrefix:  "S",
			KeyWidth:   5,
			Columns: []Column{
				{Name: "staff_id", Type: TypeString},
				{Name: "first_name", Type: TypeString},
				{Name: "last_name", Type: TypeString},
				{Name: "role", Type: TypeCategory, Allowed: StaffRoles},
				{Name: "department", Type: TypeCategory, Allowed: Specialties},
				{Name: "employment_type", Type: TypeCategory, Allowed: EmploymentTypes},
				{Name: "email", Type: TypeString},
				{Name: "phone", Type: TypeString},
				{Name: "license_id", Type: TypeString},
				{Name: "hire_date", Type: TypeDate, MinTime: &HireStart, MaxTime: &HireEnd},
			},
			Email: &EmailRule{FirstName: "first_name", LastName: "last_name", Email: "email", Domain: StaffEmailDomain},
		},
		{
			Name:       "staff_assignments",
			Group:      GroupOperations,
			PrimaryKey: "assignment_id",
			KeyPrefix:  "ASG",
			KeyWidth:   6,
			Columns: []Column{
				{Name: "assignment_id", Type: TypeString},
				{Name: "staff_id", Type: TypeString},
				{Name: "ward_id", Type: TypeString},
				{Name: "shift", Type: TypeCategory, Allowed: Shifts},
			},
		},
		{
			Name:       "devices",
			Group:      GroupTelemetry,
			PrimaryKey: "device_id",
			KeyPrefix:  "D",
			KeyWidth:   5,
			Columns: []Column{
				{Name: "device_id", Type: TypeString},
				{Name: "ward_id", Type: TypeString},
				{Name: "device_type", Type: TypeCategory, Allowed: DeviceTypes},
				{Name: "manufacturer", Type: TypeCategory, Allowed: DeviceManufacturers},
				{Name: "model", Type: TypeCategory, Allowed: DeviceModels},
				{Name: "serial_number", Type: TypeString},
				{Name: "status", Type: TypeCategory, Allowed: DeviceStatuses},
				{Name: "purchase_date", Type: TypeDate, MinTime: &PurchaseStart, MaxTime: &PurchaseEnd},
				{Name: "last_calibration_date", Type: TypeDate, MinTime: &CalibrationStart, MaxTime: &CalibrationEnd},
			},
			CrossFields: []CrossField{
				{Kind: CrossFieldOrderedDates, Start: "purchase_date", End: "last_calibration_date"},
			},
		},
		{
			Name:       "admissions",
			Group:      GroupClinical,
			PrimaryKey: "admission_id",
			KeyPrefix:  "ADM",
			KeyWidth:   7,
			Columns: []Column{
				{Name: "admission_id", Type: TypeString},
				{Name: "patient_id", Type: TypeString},
				{Name: "ward_id", Type: TypeString},
				{Name: "admit_ts", Type: TypeTimestamp},
				{Name: "discharge_ts", Type: TypeTimestamp},
				{Name: "stay_days", Type: TypeInt, Min: fp(MinStayDays), Max: fp(MaxStayDays)},
				{Name: "admission_type", Type: TypeCategory, Allowed: AdmissionTypes},
				{Name: "admission_source", Type: TypeCategory, Allowed: AdmissionSources},
				{Name: "discharge_outcome", Type: TypeCategory, Allowed: DischargeOutcomes},
			},
			CrossFields: []CrossField{
				{
					Kind:     CrossFieldDurationDays,
					Start:    "admit_ts",
					End:      "discharge_ts",
					Duration: "stay_days",
					MinDays:  MinStayDays,
					MaxDays:  MaxStayDays,
				},
			},
		},
		{
			Name:       "diagnoses",
			Group:      GroupClinical,
			PrimaryKey: "diagnosis_id",
			KeyPrefix:  "DX",
			KeyWidth:   7,
			Columns: []Column{
				{Name: "diagnosis_id", Type: TypeString},
				{Name: "admission_id", Type: TypeString},
				{Name: "icd10_code", Type: TypeCategory, Allowed: ICD10Codes},
				{Name: "severity", Type: TypeCategory, Allowed: Severities},
			},
		},
		{
			Name:       "vital_signs",
			Group:      GroupTelemetry,
			PrimaryKey: "measurement_id",
			KeyPrefix:  "VS",
			KeyWidth:   7,
			Columns: []Column{
				{Name: "measurement_id", Type: TypeString},
				{Name: "patient_id", Type: TypeString},
				{Name: "device_id", Type: TypeString},
				{Name: "measured_at", Type: TypeTimestamp, MinTime: &VitalsStart, MaxTime: &VitalsEnd},
				{Name: "heart_rate", Type: TypeInt, Min: fp(50), Max: fp(120)},
				{Name: "spo2", Type: TypeInt, Min: fp(90), Max: fp(100)},
				{Name: "systolic_bp", Type: TypeInt, Min: fp(95), Max: fp(160)},
				{Name: "diastolic_bp", Type: TypeInt, Min: fp(60), Max: fp(100)},
				{Name: "temperature_c", Type: TypeFloat, Min: fp(35.0), Max: fp(40.5)},
				{Name: "respiratory_rate", Type: TypeInt, Min: fp(10), Max: fp(30)},
				{Name: "glucose_mg_dl", Type: TypeInt, Min: fp(70), Max: fp(180)},
			},
		},
	}
}

func fp(v float64) *float64 {
	return &v
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
