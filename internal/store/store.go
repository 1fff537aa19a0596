package store

import (
	"context"
	"errors"
	"time"

	"github.com/emrgen/linkgraph/internal/model"
)

var (
	// ErrDocumentNotFound is returned when no live document has the requested id.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrVersionConflict is returned when a document changed since it was read.
	ErrVersionConflict = errors.New("document was updated concurrently")
)

type Store interface {
	DocumentStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type DocumentStore interface {
	// CreateDocument creates a new document.
	CreateDocument(ctx context.Context, doc *model.Document) error
	// GetDocument retrieves a document of a collection by ID.
	GetDocument(ctx context.Context, collection, id string) (*model.Document, error)
	// ListDocuments retrieves the documents of a collection in creation order.
	ListDocuments(ctx context.Context, collection string) ([]*model.Document, error)
	// UpdateDocument stores doc if the stored version is doc.Version-1.
	UpdateDocument(ctx context.Context, doc *model.Document) error
	// DeleteDocument soft deletes a document by ID.
	DeleteDocument(ctx context.Context, collection, id string) error
	// EraseDeletedDocuments permanently removes documents soft deleted before the given time.
	EraseDeletedDocuments(ctx context.Context, before time.Time) (int64, error)
}
