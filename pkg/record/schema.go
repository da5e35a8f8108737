// pkg/record/schema.go
package record

import (
	"errors"
	"fmt"
	"strings"
)

// Field describes one persisted attribute of a record
type Field struct {
	Name      string // In-memory name
	Column    string // Persisted column and write parameter name; defaults to Name
	Kind      Kind
	Precision int  // Decimal places for KindFloat
	Joined    bool // Column lives in the schema's Lookup table
}

// Rule returns the comparison rule of the field
func (f Field) Rule() Rule {
	return Rule{Kind: f.Kind, Precision: f.Precision}
}

// ColumnName returns the persisted column name of the field
func (f Field) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// Lookup describes the parent table a record row joins to, e.g. the
// observations table holding obs_name for a header row.
type Lookup struct {
	Table    string
	Alias    string
	IDColumn string // Key in the lookup table, also the foreign key column in the main table
}

// Schema describes how a record type is written and read back
type Schema struct {
	Name        string
	Table       string
	Alias       string
	IDColumn    string // Column holding the identifier assigned on insert
	Procedure   string // Loader procedure name
	Fields      []Field
	Key         []string // Natural key field names
	Lookup      *Lookup
	ParentField string // Field holding the owner's assigned identifier, dependents only
}

// Field returns the field with the given name
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks that the schema is internally consistent
func (s *Schema) Validate() error {
	if s.Name == "" {
		return errors.New("schema name is required")
	}
	if s.Table == "" || s.IDColumn == "" {
		return fmt.Errorf("schema %s: table and id column are required", s.Name)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %s: no fields declared", s.Name)
	}
	if len(s.Key) == 0 {
		return fmt.Errorf("schema %s: natural key is required", s.Name)
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %s: field with empty name", s.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %s: duplicate field %s", s.Name, f.Name)
		}
		seen[f.Name] = true

		if f.Kind == KindFloat && (f.Precision < 0 || f.Precision > 15) {
			return fmt.Errorf("schema %s: field %s has precision %d outside [0,15]", s.Name, f.Name, f.Precision)
		}
		if f.Joined && s.Lookup == nil {
			return fmt.Errorf("schema %s: field %s is joined but schema has no lookup", s.Name, f.Name)
		}
	}

	for _, k := range s.Key {
		if !seen[k] {
			return fmt.Errorf("schema %s: natural key field %s is not declared", s.Name, k)
		}
	}

	if s.ParentField != "" {
		f, ok := s.Field(s.ParentField)
		if !ok {
			return fmt.Errorf("schema %s: parent field %s is not declared", s.Name, s.ParentField)
		}
		if f.Kind != KindInt {
			return fmt.Errorf("schema %s: parent field %s must be an int", s.Name, s.ParentField)
		}
	}

	return nil
}

// alias returns the table alias used in generated queries
func (s *Schema) alias() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Table
}

func (l *Lookup) alias() string {
	if l.Alias != "" {
		return l.Alias
	}
	return l.Table
}

// qualified returns the column reference of f in generated queries
func (s *Schema) qualified(f Field) string {
	if f.Joined {
		return s.Lookup.alias() + "." + f.ColumnName()
	}
	return s.alias() + "." + f.ColumnName()
}

// LookupQuery builds the natural-key read query. Placeholders are '?' and
// must be rebound for the target driver. Arguments follow s.Key order.
func (s *Schema) LookupQuery() string {
	cols := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		cols = append(cols, s.qualified(f))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(fmt.Sprintf(" FROM %s AS %s", s.Table, s.alias()))

	if s.Lookup != nil {
		sb.WriteString(fmt.Sprintf(" LEFT JOIN %s AS %s ON %s.%s=%s.%s",
			s.Lookup.Table, s.Lookup.alias(),
			s.Lookup.alias(), s.Lookup.IDColumn,
			s.alias(), s.Lookup.IDColumn))
	}

	conds := make([]string, 0, len(s.Key))
	for _, k := range s.Key {
		f, _ := s.Field(k)
		conds = append(conds, s.qualified(f)+"=?")
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(conds, " AND "))

	return sb.String()
}
