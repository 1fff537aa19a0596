package graph

import (
	"fmt"

	"github.com/emrgen/linkgraph/internal/collection"
	"github.com/emrgen/linkgraph/internal/link"
)

// Query translates selector into a collection filter. An id selector (a
// string or number) matches the id field, a link selector matches each of its
// mapped fields, with Undefined matching documents that lack the field.
func (g *Graph) Query(selector any) (collection.Filter, error) {
	switch s := selector.(type) {
	case link.Link:
		return g.linkQuery(s), nil
	case map[string]any:
		return g.linkQuery(s), nil
	case string, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		physical, ok := g.fields.Physical(link.IDField)
		if !ok {
			return nil, ErrNoIDField
		}
		return collection.Filter{physical: s}, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrInvalidSelector, selector)
}

func (g *Graph) linkQuery(selector map[string]any) collection.Filter {
	filter := make(collection.Filter)
	for _, field := range g.fields {
		value, ok := selector[field.Logical]
		if !ok {
			continue
		}

		if link.IsUndefined(value) {
			filter[field.Physical] = collection.Exists(false)
		} else {
			filter[field.Physical] = value
		}
	}

	return filter
}

// Options translates find options to physical field names. Sort keys of
// unmapped fields are dropped. opts is not modified.
func (g *Graph) Options(opts *link.Options) collection.FindOptions {
	var out collection.FindOptions
	if opts == nil {
		return out
	}

	for _, key := range opts.Sort {
		physical, ok := g.fields.Physical(key.Field)
		if !ok {
			continue
		}

		order := collection.Descending
		if key.Ascending {
			order = collection.Ascending
		}
		out.Sort = append(out.Sort, collection.SortKey{Field: physical, Order: order})
	}

	if opts.Skip > 0 {
		out.Skip = opts.Skip
	}
	if opts.Limit > 0 {
		out.Limit = opts.Limit
	}

	return out
}
