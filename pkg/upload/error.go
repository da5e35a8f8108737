// pkg/upload/error.go
package upload

import (
	"fmt"
	"strings"

	"github.com/palfa/commondb/pkg/record"
)

// ErrorKind identifies why an upload chain was aborted
type ErrorKind int

const (
	// KindConstruction indicates a record could not be built from its input
	KindConstruction ErrorKind = iota + 1
	// KindNotFound indicates the natural key matched no row on verification
	KindNotFound
	// KindAmbiguous indicates the natural key matched more than one row
	KindAmbiguous
	// KindMismatch indicates the persisted row differs from the in-memory record
	KindMismatch
	// KindDependent indicates a dependent's own upload failed
	KindDependent
)

// String returns a string representation of the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindConstruction:
		return "construction"
	case KindNotFound:
		return "not found"
	case KindAmbiguous:
		return "ambiguous"
	case KindMismatch:
		return "mismatch"
	case KindDependent:
		return "dependent failure"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrConstruction = &Error{Kind: KindConstruction}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrAmbiguous    = &Error{Kind: KindAmbiguous}
	ErrMismatch     = &Error{Kind: KindMismatch}
	ErrDependent    = &Error{Kind: KindDependent}
)

// Error is the single error type of the upload protocol. Every kind aborts
// the whole chain; the context needed to diagnose it is carried as data.
type Error struct {
	Kind   ErrorKind
	Schema string            // Record type, e.g. "header"
	Key    record.NaturalKey // Natural key of the record being uploaded
	Source []string          // Input files, construction errors only
	Fields []string          // Mismatched fields, mismatch errors only
	Rows   int               // Rows matched by the natural key, not-found/ambiguous only
	Err    error             // Underlying cause, if any
}

// Error returns a formatted error message
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())

	if e.Schema != "" {
		sb.WriteString(" [" + e.Schema + "]")
	}
	if len(e.Key) > 0 {
		sb.WriteString(" (" + e.Key.String() + ")")
	}

	switch e.Kind {
	case KindConstruction:
		sb.WriteString(fmt.Sprintf(": couldn't create record for files %v", e.Source))
	case KindNotFound:
		sb.WriteString(": no matching entry in common DB")
	case KindAmbiguous:
		sb.WriteString(fmt.Sprintf(": %d matching entries in common DB", e.Rows))
	case KindMismatch:
		sb.WriteString(": persisted row doesn't match what was uploaded")
		if len(e.Fields) > 0 {
			sb.WriteString(" (fields: " + strings.Join(e.Fields, ", ") + ")")
		}
	case KindDependent:
		sb.WriteString(": dependent upload failed")
	}

	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// ConstructionError reports that a record could not be built from files
func ConstructionError(schema string, files []string, cause error) *Error {
	src := make([]string, len(files))
	copy(src, files)
	return &Error{Kind: KindConstruction, Schema: schema, Source: src, Err: cause}
}
