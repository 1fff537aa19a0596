package collection

import (
	"sort"
)

// IDField is the physical field holding a document's unique id.
const IDField = "_id"

// Document is a physical record as stored by a collection.
type Document map[string]any

// ID returns the document id, or "" when it has none.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}

	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}

	return out
}

// Exists is a filter clause matching on the presence of a field rather than its value.
type Exists bool

// Filter maps physical fields to the value they must equal, or to an Exists clause.
type Filter map[string]any

// Modifier describes the changes of an update.
type Modifier struct {
	Set   Document
	Unset []string
}

// IsEmpty reports whether the modifier changes nothing.
func (m Modifier) IsEmpty() bool {
	return len(m.Set) == 0 && len(m.Unset) == 0
}

// FieldNames returns the fields touched by the modifier in sorted order.
func (m Modifier) FieldNames() []string {
	names := make([]string, 0, len(m.Set)+len(m.Unset))
	for name := range m.Set {
		names = append(names, name)
	}
	names = append(names, m.Unset...)
	sort.Strings(names)

	return names
}

const (
	Ascending  = 1
	Descending = -1
)

// SortKey orders by a physical field, Order is Ascending or Descending.
type SortKey struct {
	Field string
	Order int
}

// FindOptions controls the order and window of a find. Zero Skip or Limit means unset.
type FindOptions struct {
	Sort  []SortKey
	Skip  int
	Limit int
}
