// pkg/upload/endpoint.go
package upload

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/palfa/commondb/pkg/record"
)

// Endpoint writes one record and returns the identifier assigned to it
type Endpoint interface {
	Load(ctx context.Context, rec *record.Record, target Target) (int64, error)
}

// LoaderMode selects how records are written
type LoaderMode string

const (
	// ModeProcedure calls the schema's loader procedure
	ModeProcedure LoaderMode = "procedure"
	// ModeTable writes the tables directly, for stores without the loader procedures
	ModeTable LoaderMode = "table"
)

// EndpointFor returns the endpoint for a loader mode
func EndpointFor(mode LoaderMode) (Endpoint, error) {
	switch mode {
	case ModeProcedure, "":
		return ProcedureEndpoint{}, nil
	case ModeTable:
		return TableEndpoint{}, nil
	default:
		return nil, fmt.Errorf("unknown loader mode %q", mode)
	}
}

// ProcedureEndpoint submits a record as a single loader procedure call.
// String values are interpolated verbatim; the procedure is responsible for
// handling them safely.
type ProcedureEndpoint struct{}

// Statement renders the loader call in the dialect of the given driver
func (ProcedureEndpoint) Statement(call record.Call, driverName string) (string, error) {
	switch driverName {
	case "pgx", "postgres":
		return fmt.Sprintf("SELECT %s(%s)", call.Procedure, call.Named()), nil
	case "snowflake":
		return fmt.Sprintf("CALL %s(%s)", call.Procedure, call.Named()), nil
	case "sqlserver", "mssql":
		return call.String(), nil
	default:
		return "", fmt.Errorf("driver %q has no loader procedures, use %s mode", driverName, ModeTable)
	}
}

// Load executes the loader call and reads back the assigned identifier
func (e ProcedureEndpoint) Load(ctx context.Context, rec *record.Record, target Target) (int64, error) {
	call, err := rec.Call()
	if err != nil {
		return 0, err
	}
	if call.Procedure == "" {
		return 0, fmt.Errorf("schema %s has no loader procedure", rec.Schema().Name)
	}

	stmt, err := e.Statement(call, target.DriverName())
	if err != nil {
		return 0, err
	}

	var id int64
	if err := target.QueryRowxContext(ctx, stmt).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s failed: %w", call.Procedure, err)
	}
	return id, nil
}

// TableEndpoint performs the loader's work with plain statements: it finds
// or creates the joined lookup row, then inserts the record row and returns
// its identifier via RETURNING.
type TableEndpoint struct{}

// Load inserts the record and returns the assigned identifier
func (TableEndpoint) Load(ctx context.Context, rec *record.Record, target Target) (int64, error) {
	schema := rec.Schema()
	set, err := rec.WriteSet()
	if err != nil {
		return 0, err
	}

	columns := make([]string, 0, len(set)+1)
	args := make([]interface{}, 0, len(set)+1)

	if schema.Lookup != nil {
		lookupID, err := ensureLookup(ctx, schema.Lookup, set, target)
		if err != nil {
			return 0, err
		}
		columns = append(columns, schema.Lookup.IDColumn)
		args = append(args, lookupID)
	}

	for _, w := range set {
		if w.Field.Joined {
			continue
		}
		columns = append(columns, w.Field.ColumnName())
		args = append(args, w.Value)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		schema.Table,
		strings.Join(columns, ", "),
		placeholders(len(columns)),
		schema.IDColumn)

	var id int64
	if err := target.QueryRowxContext(ctx, target.Rebind(query), args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert into %s failed: %w", schema.Table, err)
	}
	return id, nil
}

// ensureLookup returns the id of the lookup row identified by the joined
// fields, inserting it when absent
func ensureLookup(ctx context.Context, lookup *record.Lookup, set []record.Written, target Target) (int64, error) {
	var columns []string
	var args []interface{}
	for _, w := range set {
		if w.Field.Joined {
			columns = append(columns, w.Field.ColumnName())
			args = append(args, w.Value)
		}
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("lookup %s has no joined fields", lookup.Table)
	}

	conds := make([]string, len(columns))
	for i, c := range columns {
		conds[i] = c + "=?"
	}
	selectQuery := fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		lookup.IDColumn, lookup.Table, strings.Join(conds, " AND "))

	var id int64
	err := target.QueryRowxContext(ctx, target.Rebind(selectQuery), args...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up %s: %w", lookup.Table, err)
	}

	insertQuery := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		lookup.Table, strings.Join(columns, ", "), placeholders(len(columns)), lookup.IDColumn)
	if err := target.QueryRowxContext(ctx, target.Rebind(insertQuery), args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert into %s failed: %w", lookup.Table, err)
	}
	return id, nil
}

func placeholders(n int) string {
	p := make([]string, n)
	for i := range p {
		p[i] = "?"
	}
	return strings.Join(p, ", ")
}
