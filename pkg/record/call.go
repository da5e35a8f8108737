// pkg/record/call.go
package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Written is one field as it is handed to the write endpoint
type Written struct {
	Field   Field
	Value   interface{} // Typed value, floats rounded to the field's precision
	Literal string      // Rendered literal
}

// WriteSet renders every field for the write endpoint, in schema order
func (r *Record) WriteSet() ([]Written, error) {
	if !r.ParentAssigned() {
		return nil, fmt.Errorf("%s: %w", r.schema.Name, ErrParentUnset)
	}

	out := make([]Written, 0, len(r.schema.Fields))
	for _, f := range r.schema.Fields {
		v := r.values[f.Name]
		lit, err := f.Rule().Literal(v)
		if err != nil {
			return nil, fmt.Errorf("%s: field %s: %w", r.schema.Name, f.Name, err)
		}
		if f.Kind == KindFloat {
			// store exactly what the literal says
			v, err = strconv.ParseFloat(lit, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: field %s: %w", r.schema.Name, f.Name, err)
			}
		}
		out = append(out, Written{Field: f, Value: v, Literal: lit})
	}
	return out, nil
}

// Param is one named argument of a loader call, already rendered as a literal
type Param struct {
	Name    string
	Literal string
}

// Call is a rendered loader procedure call for one record
type Call struct {
	Procedure string
	Params    []Param
}

// Call renders the record as a loader call with one named parameter per
// field, in schema order.
func (r *Record) Call() (Call, error) {
	set, err := r.WriteSet()
	if err != nil {
		return Call{}, err
	}

	call := Call{
		Procedure: r.schema.Procedure,
		Params:    make([]Param, 0, len(set)),
	}
	for _, w := range set {
		call.Params = append(call.Params, Param{Name: w.Field.ColumnName(), Literal: w.Literal})
	}
	return call, nil
}

// String renders the call in EXEC form:
//
//	EXEC spHeaderLoader @obs_name='P2030_0001', @beam_id=3, ...
func (c Call) String() string {
	args := make([]string, len(c.Params))
	for i, p := range c.Params {
		args[i] = "@" + p.Name + "=" + p.Literal
	}
	return "EXEC " + c.Procedure + " " + strings.Join(args, ", ")
}

// Named renders the call arguments as "name => literal" pairs, the named
// notation accepted by Postgres functions and Snowflake procedures.
func (c Call) Named() string {
	args := make([]string, len(c.Params))
	for i, p := range c.Params {
		args[i] = p.Name + " => " + p.Literal
	}
	return strings.Join(args, ", ")
}
