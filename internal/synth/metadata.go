package synth

// metadata.go - the JSON metadata artifact written during fit and
// reloaded before sampling. It round-trips the detected table schemas and
// the relationship graph; byte layout beyond that is unspecified.

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/synthward-labs/synthward/internal/schema"
)

// ColumnMeta describes one detected column.
type ColumnMeta struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableMeta describes one detected table.
type TableMeta struct {
	Name       string       `json:"name"`
	PrimaryKey string       `json:"primary_key"`
	KeyPrefix  string       `json:"key_prefix"`
	KeyWidth   int          `json:"key_width"`
	Columns    []ColumnMeta `json:"columns"`
}

// RelationshipMeta describes one detected foreign-key edge.
type RelationshipMeta struct {
	ChildTable   string `json:"child_table"`
	ChildColumn  string `json:"child_column"`
	ParentTable  string `json:"parent_table"`
	ParentColumn string `json:"parent_column"`
}

// Metadata is the schema the synthesizer detected from the seed tables.
type Metadata struct {
	Tables        []TableMeta        `json:"tables"`
	Relationships []RelationshipMeta `json:"relationships"`
}

// DetectMetadata derives the metadata artifact from the registry.
func DetectMetadata(reg *schema.Registry) *Metadata {
	m := &Metadata{}
	for _, tbl := range reg.Tables() {
		tm := TableMeta{
			Name:       tbl.Name,
			PrimaryKey: tbl.PrimaryKey,
			KeyPrefix:  tbl.KeyPrefix,
			KeyWidth:   tbl.KeyWidth,
		}
		for _, col := range tbl.Columns {
			tm.Columns = append(tm.Columns, ColumnMeta{Name: col.Name, Type: string(col.Type)})
		}
		m.Tables = append(m.Tables, tm)
	}
	for _, rel := range reg.Relationships() {
		m.Relationships = append(m.Relationships, RelationshipMeta{
			ChildTable:   rel.ChildTable,
			ChildColumn:  rel.ChildColumn,
			ParentTable:  rel.ParentTable,
			ParentColumn: rel.ParentColumn,
		})
	}
	return m
}

// Table returns the metadata for the named table.
func (m *Metadata) Table(name string) (*TableMeta, bool) {
	for i := range m.Tables {
		if m.Tables[i].Name == name {
			return &m.Tables[i], true
		}
	}
	return nil, false
}

// Save writes the metadata artifact as indented JSON.
func (m *Metadata) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// LoadMetadata reads a previously saved metadata artifact.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode metadata %s: %w", path, err)
	}
	return &m, nil
}
