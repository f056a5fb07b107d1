package schema

// locale.go - optional display-name mapping applied only at export and
// load boundaries. Constraint logic always works on canonical identifiers;
// locale variation never forks the registry itself.

// Locale selects the column display names used when tables are persisted.
type Locale string

const (
	// LocaleEN uses the canonical identifiers unchanged.
	LocaleEN Locale = "en"
	// LocaleIT uses the Italian column names of the source system.
	LocaleIT Locale = "it"
)

// Valid reports whether the locale is supported.
func (l Locale) Valid() bool {
	return l == LocaleEN || l == LocaleIT
}

// italianColumns maps canonical column identifiers to their Italian
// display names, per table.
var italianColumns = map[string]map[string]string{
	"wards": {
		"ward_id":   "id_reparto",
		"ward_name": "nome_reparto",
		"specialty": "specialita",
	},
	"patients": {
		"patient_id":              "id_paziente",
		"first_name":              "nome",
		"last_name":               "cognome",
		"sex":                     "sesso",
		"birth_date":              "data_nascita",
		"city":                    "citta",
		"address":                 "indirizzo",
		"postal_code":             "cap",
		"country":                 "paese",
		"email":                   "email",
		"phone":                   "telefono",
		"fiscal_code":             "codice_fiscale",
		"marital_status":          "stato_civile",
		"primary_language":        "lingua_primaria",
		"insurance_provider":      "compagnia_assicurativa",
		"insurance_plan":          "piano_assicurativo",
		"insurance_id":            "id_assicurazione",
		"emergency_contact_name":  "contatto_emergenza_nome",
		"emergency_contact_phone": "contatto_emergenza_telefono",
		"height_cm":               "altezza_cm",
		"weight_kg":               "peso_kg",
		"blood_type":              "gruppo_sanguigno",
	},
	"staff": {
		"staff_id":        "id_staff",
		"first_name":      "nome",
		"last_name":       "cognome",
		"role":            "ruolo",
		"department":      "reparto",
		"employment_type": "tipo_impiego",
		"email":           "email",
		"phone":           "telefono",
		"license_id":      "id_licenza",
		"hire_date":       "data_assunzione",
	},
	"staff_assignments": {
		"assignment_id": "id_assegnazione",
		"staff_id":      "id_staff",
		"ward_id":       "id_reparto",
		"shift":         "turno",
	},
	"devices": {
		"device_id":             "id_dispositivo",
		"ward_id":               "id_reparto",
		"device_type":           "tipo_dispositivo",
		"manufacturer":          "produttore",
		"model":                 "modello",
		"serial_number":         "numero_serie",
		"status":                "stato",
		"purchase_date":         "data_acquisto",
		"last_calibration_date": "data_ultima_calibrazione",
	},
	"admissions": {
		"admission_id":      "id_ricovero",
		"patient_id":        "id_paziente",
		"ward_id":           "id_reparto",
		"admit_ts":          "data_ricovero",
		"discharge_ts":      "data_dimissione",
		"stay_days":         "durata_degenza_giorni",
		"admission_type":    "tipo_ricovero",
		"admission_source":  "provenienza_ricovero",
		"discharge_outcome": "esito_dimissione",
	},
	"diagnoses": {
		"diagnosis_id": "id_diagnosi",
		"admission_id": "id_ricovero",
		"icd10_code":   "codice_icd10",
		"severity":     "gravita",
	},
	"vital_signs": {
		"measurement_id":   "id_misurazione",
		"patient_id":       "id_paziente",
		"device_id":        "id_dispositivo",
		"measured_at":      "data_misurazione",
		"heart_rate":       "frequenza_cardiaca",
		"spo2":             "saturazione_ossigeno",
		"systolic_bp":      "pressione_sistolica",
		"diastolic_bp":     "pressione_diastolica",
		"temperature_c":    "temperatura_c",
		"respiratory_rate": "frequenza_respiratoria",
		"glucose_mg_dl":    "glicemia_mg_dl",
	},
}

// DisplayName returns the display name for a column under the given
// locale. Unknown columns and LocaleEN return the canonical name.
func DisplayName(loc Locale, tableName, column string) string {
	if loc != LocaleIT {
		return column
	}
	if cols, ok := italianColumns[tableName]; ok {
		if name, ok := cols[column]; ok {
			return name
		}
	}
	return column
}

// CanonicalName maps a persisted column name back to its canonical
// identifier, accepting both canonical and localized forms.
func CanonicalName(tableName, column string) string {
	cols, ok := italianColumns[tableName]
	if !ok {
		return column
	}
	for canonical, display := range cols {
		if display == column {
			return canonical
		}
	}
	return column
}
