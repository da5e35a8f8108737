// pkg/upload/verifier.go
package upload

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/palfa/commondb/pkg/record"
)

// Target is the database an upload chain writes to and verifies against.
// Both *sqlx.DB and *sqlx.Tx satisfy it; passing a transaction makes the
// whole chain one unit of atomicity owned by the caller.
type Target = sqlx.ExtContext

// Discrepancy represents a field whose persisted value differs from the
// in-memory record under the field's comparison rule
type Discrepancy struct {
	Field       string
	Column      string
	MemoryValue interface{}
	StoredValue interface{}
	MemoryForm  string
	StoredForm  string
}

// Verifier re-reads persisted records and compares them field by field
type Verifier struct {
	logger *zap.Logger
}

// NewVerifier creates a new verifier
func NewVerifier(logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{logger: logger}
}

// Verify reports whether the row stored under rec's natural key matches rec.
// It returns a not-found or ambiguous *Error when the key does not match
// exactly one row, but never an error for a mismatch.
func (v *Verifier) Verify(ctx context.Context, rec *record.Record, target Target) (bool, error) {
	discrepancies, err := v.Compare(ctx, rec, target)
	if err != nil {
		return false, err
	}
	return len(discrepancies) == 0, nil
}

// Compare reads the row stored under rec's natural key and returns every
// field that does not match
func (v *Verifier) Compare(ctx context.Context, rec *record.Record, target Target) ([]Discrepancy, error) {
	schema := rec.Schema()
	key := rec.NaturalKey()

	row, err := v.fetchRow(ctx, rec, target)
	if err != nil {
		return nil, err
	}

	discrepancies := make([]Discrepancy, 0)
	for _, f := range schema.Fields {
		memVal, _ := rec.Value(f.Name)
		storedVal, exists := row[strings.ToLower(f.ColumnName())]
		if !exists {
			return nil, fmt.Errorf("lookup for %s did not return column %s", schema.Name, f.ColumnName())
		}

		rule := f.Rule()
		if rule.Equal(memVal, storedVal) {
			continue
		}

		memForm, _ := rule.Format(memVal)
		storedForm, _ := rule.Format(storedVal)
		discrepancies = append(discrepancies, Discrepancy{
			Field:       f.Name,
			Column:      f.ColumnName(),
			MemoryValue: memVal,
			StoredValue: storedVal,
			MemoryForm:  memForm,
			StoredForm:  storedForm,
		})
	}

	if len(discrepancies) == 0 {
		v.logger.Debug("Verification successful",
			zap.String("schema", schema.Name),
			zap.Stringer("key", key))
	} else {
		for _, d := range discrepancies {
			v.logger.Warn("Value mismatch",
				zap.String("schema", schema.Name),
				zap.Stringer("key", key),
				zap.String("field", d.Field),
				zap.String("memory", d.MemoryForm),
				zap.String("stored", d.StoredForm))
		}
	}

	return discrepancies, nil
}

// fetchRow returns the single row matching rec's natural key with column
// names lower-cased; drivers disagree on identifier case.
func (v *Verifier) fetchRow(ctx context.Context, rec *record.Record, target Target) (map[string]interface{}, error) {
	schema := rec.Schema()
	key := rec.NaturalKey()

	if !rec.ParentAssigned() {
		return nil, fmt.Errorf("%s (%s): %w", schema.Name, key, record.ErrParentUnset)
	}

	query := target.Rebind(schema.LookupQuery())
	rows, err := target.QueryxContext(ctx, query, key.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s by natural key: %w", schema.Name, err)
	}
	defer rows.Close()

	var matched []map[string]interface{}
	for rows.Next() {
		raw := make(map[string]interface{})
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", schema.Name, err)
		}
		row := make(map[string]interface{}, len(raw))
		for col, val := range raw {
			row[strings.ToLower(col)] = val
		}
		matched = append(matched, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", schema.Name, err)
	}

	switch len(matched) {
	case 0:
		return nil, &Error{Kind: KindNotFound, Schema: schema.Name, Key: key}
	case 1:
		return matched[0], nil
	default:
		return nil, &Error{Kind: KindAmbiguous, Schema: schema.Name, Key: key, Rows: len(matched)}
	}
}
