// pkg/record/record.go
package record

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParentAssigned is returned when a parent identifier is assigned twice
	ErrParentAssigned = errors.New("parent identifier already assigned")
	// ErrNoParentField is returned when assigning a parent to a record whose schema has none
	ErrNoParentField = errors.New("schema has no parent field")
	// ErrParentUnset is returned when a dependent is used before its parent identifier is assigned
	ErrParentUnset = errors.New("parent identifier not assigned")
)

// Record is a set of typed field values described by a Schema. Values are
// fixed at construction; the only later change allowed is the write-once
// assignment of the parent identifier.
type Record struct {
	schema    *Schema
	values    map[string]interface{}
	parentSet bool
}

// New builds a record from values keyed by field name. Every declared field
// must be present except the schema's parent field, which starts unset.
func New(schema *Schema, values map[string]interface{}) (*Record, error) {
	if schema == nil {
		return nil, errors.New("nil schema")
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	r := &Record{
		schema: schema,
		values: make(map[string]interface{}, len(schema.Fields)),
	}

	for _, f := range schema.Fields {
		v, ok := values[f.Name]
		if f.Name == schema.ParentField {
			if ok {
				return nil, fmt.Errorf("%s: %s is assigned by the upload cascade", schema.Name, f.Name)
			}
			continue
		}
		if !ok {
			return nil, fmt.Errorf("%s: missing field %s", schema.Name, f.Name)
		}

		nv, err := normalize(f.Kind, v)
		if err != nil {
			return nil, fmt.Errorf("%s: field %s: %w", schema.Name, f.Name, err)
		}
		r.values[f.Name] = nv
	}

	for name := range values {
		if _, ok := schema.Field(name); !ok {
			return nil, fmt.Errorf("%s: unknown field %s", schema.Name, name)
		}
	}

	return r, nil
}

// Schema returns the record's schema
func (r *Record) Schema() *Schema {
	return r.schema
}

// Value returns the value of the named field
func (r *Record) Value(name string) (interface{}, bool) {
	v, ok := r.values[name]
	return v, ok
}

// String returns the value of a string field, or "" if absent
func (r *Record) String(name string) string {
	s, _ := r.values[name].(string)
	return s
}

// Int returns the value of an int field, or 0 if absent
func (r *Record) Int(name string) int64 {
	i, _ := r.values[name].(int64)
	return i
}

// Float returns the value of a float field, or 0 if absent
func (r *Record) Float(name string) float64 {
	f, _ := r.values[name].(float64)
	return f
}

// ParentAssigned reports whether the record is ready to be uploaded with
// respect to its owner. Records without a parent field are always ready.
func (r *Record) ParentAssigned() bool {
	return r.schema.ParentField == "" || r.parentSet
}

// AssignParent sets the parent identifier. It may be called at most once.
func (r *Record) AssignParent(id int64) error {
	if r.schema.ParentField == "" {
		return fmt.Errorf("%s: %w", r.schema.Name, ErrNoParentField)
	}
	if r.parentSet {
		return fmt.Errorf("%s: %w", r.schema.Name, ErrParentAssigned)
	}
	r.values[r.schema.ParentField] = id
	r.parentSet = true
	return nil
}

// NaturalKey returns the values of the natural key fields in schema order
func (r *Record) NaturalKey() NaturalKey {
	key := make(NaturalKey, 0, len(r.schema.Key))
	for _, name := range r.schema.Key {
		key = append(key, KeyPart{Field: name, Value: r.values[name]})
	}
	return key
}

// KeyPart is one field of a natural key
type KeyPart struct {
	Field string
	Value interface{}
}

// NaturalKey identifies the logical entity a record describes, independent
// of the identifier assigned by the database
type NaturalKey []KeyPart

// Args returns the key values in order, for use as query arguments
func (k NaturalKey) Args() []interface{} {
	args := make([]interface{}, len(k))
	for i, p := range k {
		args[i] = p.Value
	}
	return args
}

// String formats the key as "field=value" pairs
func (k NaturalKey) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		parts[i] = fmt.Sprintf("%s=%v", p.Field, p.Value)
	}
	return strings.Join(parts, " ")
}
