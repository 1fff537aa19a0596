package collection

import (
	"context"
)

// Collection is a store of documents that notifies hooks after every mutation.
type Collection interface {
	// Name returns the collection name.
	Name() string
	// Insert stores doc and returns its id, generating one when doc has none.
	Insert(ctx context.Context, doc Document) (string, error)
	// Update applies modifier to every document matching filter.
	Update(ctx context.Context, filter Filter, modifier Modifier) (int64, error)
	// Remove deletes every document matching filter.
	Remove(ctx context.Context, filter Filter) (int64, error)
	// Find returns a cursor over the documents matching filter.
	Find(ctx context.Context, filter Filter, opts FindOptions) (Cursor, error)
	// After returns the hooks run after mutations.
	After() *Hooks
}

// Cursor iterates the result of a find.
type Cursor interface {
	// Fetch returns all documents.
	Fetch(ctx context.Context) ([]Document, error)
	// Each calls fn for every document in order and stops at the first error.
	Each(ctx context.Context, fn func(Document) error) error
	// Map returns fn applied to every document in order.
	Map(ctx context.Context, fn func(Document) (any, error)) ([]any, error)
	// Count returns the number of documents.
	Count(ctx context.Context) (int, error)
}

type userIDKey struct{}

// WithUserID returns a context carrying the id of the user performing mutations.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID returns the user id carried by ctx, or "".
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey{}).(string)
	return userID
}

var _ Cursor = (*sliceCursor)(nil)

// sliceCursor is a cursor over documents already materialized by a find.
type sliceCursor struct {
	docs []Document
}

func newSliceCursor(docs []Document) *sliceCursor {
	return &sliceCursor{docs: docs}
}

func (c *sliceCursor) Fetch(ctx context.Context) ([]Document, error) {
	out := make([]Document, 0, len(c.docs))
	for _, doc := range c.docs {
		out = append(out, doc.Clone())
	}

	return out, nil
}

func (c *sliceCursor) Each(ctx context.Context, fn func(Document) error) error {
	for _, doc := range c.docs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := fn(doc.Clone()); err != nil {
			return err
		}
	}

	return nil
}

func (c *sliceCursor) Map(ctx context.Context, fn func(Document) (any, error)) ([]any, error) {
	out := make([]any, 0, len(c.docs))
	err := c.Each(ctx, func(doc Document) error {
		v, err := fn(doc)
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

func (c *sliceCursor) Count(ctx context.Context) (int, error) {
	return len(c.docs), nil
}
