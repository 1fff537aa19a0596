package store

import (
	"context"
	"errors"
	"time"

	"github.com/emrgen/linkgraph/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

// CreateDocument inserts doc, first erasing a soft deleted document with the same key.
func (g *GormStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	db := g.db.WithContext(ctx)
	err := db.Unscoped().
		Where("collection = ? AND id = ? AND deleted_at IS NOT NULL", doc.Collection, doc.ID).
		Delete(&model.Document{}).Error
	if err != nil {
		return err
	}

	return db.Create(doc).Error
}

func (g *GormStore) GetDocument(ctx context.Context, collection, id string) (*model.Document, error) {
	var doc model.Document
	err := g.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

func (g *GormStore) ListDocuments(ctx context.Context, collection string) ([]*model.Document, error) {
	var docs []*model.Document
	err := g.db.WithContext(ctx).Where("collection = ?", collection).Order("created_at asc").Order("id asc").Find(&docs).Error
	return docs, err
}

// UpdateDocument writes the new payload of doc, guarded by its previous version.
func (g *GormStore) UpdateDocument(ctx context.Context, doc *model.Document) error {
	res := g.db.WithContext(ctx).Model(&model.Document{}).
		Where("collection = ? AND id = ? AND version = ?", doc.Collection, doc.ID, doc.Version-1).
		Updates(map[string]any{
			"data":        doc.Data,
			"compression": doc.Compression,
			"version":     doc.Version,
		})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		logrus.Warnf("document %s/%s changed before version %d was written", doc.Collection, doc.ID, doc.Version)
		return ErrVersionConflict
	}

	return nil
}

func (g *GormStore) DeleteDocument(ctx context.Context, collection, id string) error {
	return g.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).Delete(&model.Document{}).Error
}

func (g *GormStore) EraseDeletedDocuments(ctx context.Context, before time.Time) (int64, error) {
	res := g.db.WithContext(ctx).Unscoped().Where("deleted_at IS NOT NULL AND deleted_at < ?", before).Delete(&model.Document{})
	return res.RowsAffected, res.Error
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
