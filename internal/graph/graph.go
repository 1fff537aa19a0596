// Package graph stores links in a document collection, translating between
// logical link fields and the physical fields of the documents.
package graph

import (
	"context"
	"fmt"

	"github.com/emrgen/linkgraph/internal/collection"
	"github.com/emrgen/linkgraph/internal/link"
)

var _ link.Graph = (*Graph)(nil)

// Graph is a link.Graph backed by a collection.
type Graph struct {
	collection collection.Collection
	fields     link.Fields
}

// New creates a graph storing links in c, with fields mapping logical link
// fields to physical document fields.
func New(c collection.Collection, fields link.Fields) (*Graph, error) {
	if c == nil {
		return nil, ErrNilCollection
	}

	if len(fields) == 0 {
		return nil, ErrNoFields
	}

	logical := make(map[string]bool, len(fields))
	physical := make(map[string]bool, len(fields))
	for _, field := range fields {
		if field.Logical == "" || field.Physical == "" {
			return nil, ErrInvalidField
		}

		if logical[field.Logical] || physical[field.Physical] {
			return nil, fmt.Errorf("%w: %s=%s", ErrDuplicateField, field.Logical, field.Physical)
		}

		logical[field.Logical] = true
		physical[field.Physical] = true
	}

	mapping := make(link.Fields, len(fields))
	copy(mapping, fields)

	return &Graph{
		collection: c,
		fields:     mapping,
	}, nil
}

// Collection returns the collection the graph stores links in.
func (g *Graph) Collection() collection.Collection {
	return g.collection
}

// Fields returns a copy of the field mapping.
func (g *Graph) Fields() link.Fields {
	fields := make(link.Fields, len(g.fields))
	copy(fields, g.fields)
	return fields
}

// Insert stores the mapped fields of l and returns the id of the new link.
func (g *Graph) Insert(ctx context.Context, l link.Link) (string, error) {
	doc := make(collection.Document)
	for _, field := range g.fields {
		value, ok := l[field.Logical]
		if !ok || link.IsUndefined(value) {
			continue
		}
		doc[field.Physical] = value
	}

	return g.collection.Insert(ctx, doc)
}

// Update sets the defined and unsets the undefined mapped fields of modifier
// on every link matched by selector. A modifier without mapped fields changes nothing.
func (g *Graph) Update(ctx context.Context, selector any, modifier link.Link) (int64, error) {
	filter, err := g.Query(selector)
	if err != nil {
		return 0, err
	}

	mod := g.modifier(modifier)
	if mod.IsEmpty() {
		return 0, nil
	}

	return g.collection.Update(ctx, filter, mod)
}

// Remove deletes every link matched by selector.
func (g *Graph) Remove(ctx context.Context, selector any) (int64, error) {
	filter, err := g.Query(selector)
	if err != nil {
		return 0, err
	}

	return g.collection.Remove(ctx, filter)
}

// Fetch returns every link matched by selector.
func (g *Graph) Fetch(ctx context.Context, selector any, opts *link.Options) ([]link.Link, error) {
	cursor, err := g.find(ctx, selector, opts)
	if err != nil {
		return nil, err
	}

	docs, err := cursor.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	links := make([]link.Link, 0, len(docs))
	for _, doc := range docs {
		links = append(links, g.link(doc))
	}

	return links, nil
}

// Each calls fn once for every matching link, sequentially and in query order.
// It stops at the first error returned by fn.
func (g *Graph) Each(ctx context.Context, selector any, opts *link.Options, fn func(link.Link) error) error {
	cursor, err := g.find(ctx, selector, opts)
	if err != nil {
		return err
	}

	return cursor.Each(ctx, func(doc collection.Document) error {
		return fn(g.link(doc))
	})
}

// Map returns fn applied to every matching link, in query order.
func (g *Graph) Map(ctx context.Context, selector any, opts *link.Options, fn func(link.Link) (any, error)) ([]any, error) {
	cursor, err := g.find(ctx, selector, opts)
	if err != nil {
		return nil, err
	}

	return cursor.Map(ctx, func(doc collection.Document) (any, error) {
		return fn(g.link(doc))
	})
}

// MapLinks is Map with a typed result.
func MapLinks[T any](ctx context.Context, g link.Graph, selector any, opts *link.Options, fn func(link.Link) (T, error)) ([]T, error) {
	out := make([]T, 0)
	err := g.Each(ctx, selector, opts, func(l link.Link) error {
		v, err := fn(l)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (g *Graph) find(ctx context.Context, selector any, opts *link.Options) (collection.Cursor, error) {
	filter, err := g.Query(selector)
	if err != nil {
		return nil, err
	}

	return g.collection.Find(ctx, filter, g.Options(opts))
}

// link projects doc into a link holding the mapped fields present on doc.
func (g *Graph) link(doc collection.Document) link.Link {
	if doc == nil {
		return nil
	}

	l := make(link.Link)
	for _, field := range g.fields {
		if value, ok := doc[field.Physical]; ok {
			l[field.Logical] = value
		}
	}

	return l
}

func (g *Graph) modifier(modifier link.Link) collection.Modifier {
	var mod collection.Modifier
	for _, field := range g.fields {
		value, ok := modifier[field.Logical]
		if !ok {
			continue
		}

		if link.IsUndefined(value) {
			mod.Unset = append(mod.Unset, field.Physical)
			continue
		}

		if mod.Set == nil {
			mod.Set = make(collection.Document)
		}
		mod.Set[field.Physical] = value
	}

	return mod
}
