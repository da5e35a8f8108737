// pkg/upload/dependents.go
package upload

import "github.com/palfa/commondb/pkg/record"

// Uploadable is anything that can go through the verified-write protocol:
// a record plus the dependents that need its assigned identifier.
type Uploadable interface {
	Record() *record.Record
	Dependents() []Uploadable
}

// Dependents is an ordered list of records owned by a primary record.
// Insertion order is upload order.
type Dependents struct {
	items []Uploadable
}

// Attach appends a dependent. Dependents are neither reordered nor deduplicated.
func (d *Dependents) Attach(dep Uploadable) {
	d.items = append(d.items, dep)
}

// Items returns the dependents in attachment order
func (d *Dependents) Items() []Uploadable {
	out := make([]Uploadable, len(d.items))
	copy(out, d.items)
	return out
}

// Len returns the number of attached dependents
func (d *Dependents) Len() int {
	return len(d.items)
}
