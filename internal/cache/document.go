package cache

import (
	"context"

	"github.com/emrgen/linkgraph/internal/model"
)

// DocumentCache is a cache for stored documents.
type DocumentCache interface {
	// GetDocument gets a document from the cache, returning nil on a miss.
	GetDocument(ctx context.Context, collection, id string) (*model.Document, error)
	// SetDocument sets a document in the cache.
	SetDocument(ctx context.Context, doc *model.Document) error
	// DeleteDocument deletes a document from the cache.
	DeleteDocument(ctx context.Context, collection, id string) error
}
