// pkg/diagnostic/diagnostic.go

// Package diagnostic holds per-beam diagnostic values attached to a header.
package diagnostic

import (
	"github.com/palfa/commondb/pkg/record"
	"github.com/palfa/commondb/pkg/upload"
)

// Well-known diagnostic types
const (
	TypeRFIMaskFraction = "RFI mask percentage"
	TypeNumCandidates   = "Num cands folded"
	TypeNumAboveSigma   = "Num cands above threshold"
)

// Schema describes how a diagnostic is written and read back
var Schema = &record.Schema{
	Name:        "diagnostic",
	Table:       "diagnostics",
	Alias:       "d",
	IDColumn:    "diagnostic_id",
	Procedure:   "spDiagnosticLoader",
	Key:         []string{"header_id", "diagnostic_type"},
	ParentField: "header_id",
	Fields: []record.Field{
		{Name: "header_id", Kind: record.KindInt},
		{Name: "diagnostic_type", Kind: record.KindString},
		{Name: "value", Kind: record.KindFloat, Precision: 8},
	},
}

// Diagnostic is a named value describing how a beam was processed. It gets
// its header_id from the header it is attached to.
type Diagnostic struct {
	rec *record.Record
}

// New creates a diagnostic of the given type
func New(diagnosticType string, value float64) (*Diagnostic, error) {
	rec, err := record.New(Schema, map[string]interface{}{
		"diagnostic_type": diagnosticType,
		"value":           value,
	})
	if err != nil {
		return nil, err
	}
	return &Diagnostic{rec: rec}, nil
}

// Record returns the underlying record
func (d *Diagnostic) Record() *record.Record { return d.rec }

// Dependents implements upload.Uploadable; diagnostics have none
func (d *Diagnostic) Dependents() []upload.Uploadable { return nil }

// HeaderID returns the assigned header identifier, or 0 before upload
func (d *Diagnostic) HeaderID() int64 { return d.rec.Int("header_id") }

// Type returns the diagnostic type
func (d *Diagnostic) Type() string { return d.rec.String("diagnostic_type") }

// Value returns the diagnostic value
func (d *Diagnostic) Value() float64 { return d.rec.Float("value") }
