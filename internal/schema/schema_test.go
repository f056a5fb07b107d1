package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClinical_Registry(t *testing.T) {
	reg := Clinical()

	names := reg.TableNames()
	require.Len(t, names, 8)

	for _, want := range []string{"wards", "patients", "staff", "staff_assignments", "devices", "admissions", "diagnoses", "vital_signs"} {
		_, ok := reg.Table(want)
		assert.True(t, ok, "missing table %s", want)
	}

	assert.Len(t, reg.Relationships(), 8)

	admissions, _ := reg.Table("admissions")
	assert.Equal(t, "admission_id", admissions.PrimaryKey)
	assert.Len(t, reg.RelationshipsOf("admissions"), 2)
	assert.Len(t, reg.RelationshipsOf("vital_signs"), 2)
	assert.Empty(t, reg.RelationshipsOf("wards"))
}

func TestClinical_GenerationOrder(t *testing.T) {
	reg := Clinical()
	order := reg.GenerationOrder()
	require.Len(t, order, 8)

	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}

	for _, rel := range reg.Relationships() {
		assert.Less(t, pos[rel.ParentTable], pos[rel.ChildTable],
			"parent %s must be generated before child %s", rel.ParentTable, rel.ChildTable)
	}
}

func TestNewRegistry_ForeignKeyMustTargetPrimaryKey(t *testing.T) {
	tables := []*Table{
		{
			Name:       "wards",
			PrimaryKey: "ward_id",
			Columns: []Column{
				{Name: "ward_id", Type: TypeString},
				{Name: "ward_name", Type: TypeString},
			},
		},
		{
			Name:       "devices",
			PrimaryKey: "device_id",
			Columns: []Column{
				{Name: "device_id", Type: TypeString},
				{Name: "ward_id", Type: TypeString},
			},
		},
	}
	rels := []Relationship{
		// Points at ward_name, which is not the wards primary key.
		{ChildTable: "devices", ChildColumn: "ward_id", ParentTable: "wards", ParentColumn: "ward_name"},
	}

	_, err := NewRegistry(tables, rels)
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "wards", cfgErr.Table)
	assert.Contains(t, cfgErr.Error(), "primary key")
}

func TestNewRegistry_UnknownTables(t *testing.T) {
	tables := []*Table{
		{Name: "wards", PrimaryKey: "ward_id", Columns: []Column{{Name: "ward_id", Type: TypeString}}},
	}

	_, err := NewRegistry(tables, []Relationship{
		{ChildTable: "devices", ChildColumn: "ward_id", ParentTable: "wards", ParentColumn: "ward_id"},
	})
	require.Error(t, err)

	_, err = NewRegistry(tables, []Relationship{
		{ChildTable: "wards", ChildColumn: "ward_id", ParentTable: "ghost", ParentColumn: "ghost_id"},
	})
	require.Error(t, err)
}

func TestNewRegistry_MissingPrimaryKeyColumn(t *testing.T) {
	_, err := NewRegistry([]*Table{
		{Name: "wards", PrimaryKey: "ward_id", Columns: []Column{{Name: "ward_name", Type: TypeString}}},
	}, nil)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
}

func TestRelationship_Name(t *testing.T) {
	rel := Relationship{ChildTable: "vital_signs", ChildColumn: "device_id", ParentTable: "devices", ParentColumn: "device_id"}
	assert.Equal(t, "vital_signs.device_id -> devices.device_id", rel.Name())
}

func TestLocale_DisplayRoundTrip(t *testing.T) {
	reg := Clinical()

	for _, tbl := range reg.Tables() {
		for _, col := range tbl.Columns {
			display := DisplayName(LocaleIT, tbl.Name, col.Name)
			assert.Equal(t, col.Name, CanonicalName(tbl.Name, display),
				"%s.%s does not round-trip through locale %s", tbl.Name, col.Name, LocaleIT)

			// Canonical names are stable under the English locale.
			assert.Equal(t, col.Name, DisplayName(LocaleEN, tbl.Name, col.Name))
		}
	}

	assert.Equal(t, "id_paziente", DisplayName(LocaleIT, "patients", "patient_id"))
	assert.Equal(t, "patient_id", CanonicalName("patients", "id_paziente"))
}
