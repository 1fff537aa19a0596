package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/emrgen/linkgraph/internal/cache"
	"github.com/emrgen/linkgraph/internal/compress"
	"github.com/emrgen/linkgraph/internal/model"
	"github.com/emrgen/linkgraph/internal/store"
	"github.com/sirupsen/logrus"
)

var _ Collection = (*StoreCollection)(nil)

// StoreCollection keeps documents as encoded rows of a store. Lookups by id go
// through the optional cache.
type StoreCollection struct {
	name     string
	store    store.Store
	compress compress.Compress
	cache    cache.DocumentCache
	hooks    Hooks
}

// NewStoreCollection creates a collection on top of store. cache may be nil.
func NewStoreCollection(name string, store store.Store, compress compress.Compress, cache cache.DocumentCache) *StoreCollection {
	return &StoreCollection{
		name:     name,
		store:    store,
		compress: compress,
		cache:    cache,
	}
}

func (s *StoreCollection) Name() string {
	return s.name
}

func (s *StoreCollection) After() *Hooks {
	return &s.hooks
}

func (s *StoreCollection) Insert(ctx context.Context, doc Document) (string, error) {
	doc = withID(doc)

	row, err := s.encode(doc, 0)
	if err != nil {
		return "", err
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		_, err := tx.GetDocument(ctx, s.name, row.ID)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrDuplicateID, row.ID)
		}
		if !errors.Is(err, store.ErrDocumentNotFound) {
			return err
		}

		return tx.CreateDocument(ctx, row)
	})
	if err != nil {
		return "", err
	}

	s.hooks.Fire(OpInsert, HookContext{UserID: UserID(ctx)}, doc)

	return row.ID, nil
}

func (s *StoreCollection) Update(ctx context.Context, filter Filter, modifier Modifier) (int64, error) {
	userID := UserID(ctx)
	fieldNames := modifier.FieldNames()
	events := make([]event, 0)

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		rows, docs, err := s.match(ctx, tx, filter)
		if err != nil {
			return err
		}

		for i, prev := range docs {
			next, err := Apply(prev, modifier)
			if err != nil {
				return err
			}

			row, err := s.encode(next, rows[i].Version+1)
			if err != nil {
				return err
			}

			if err := tx.UpdateDocument(ctx, row); err != nil {
				return err
			}

			events = append(events, event{
				op:  OpUpdate,
				hc:  HookContext{UserID: userID, Previous: prev, FieldNames: fieldNames},
				doc: next,
			})
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	s.evict(ctx, events)
	s.hooks.fireAll(events)

	return int64(len(events)), nil
}

func (s *StoreCollection) Remove(ctx context.Context, filter Filter) (int64, error) {
	userID := UserID(ctx)
	events := make([]event, 0)

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		_, docs, err := s.match(ctx, tx, filter)
		if err != nil {
			return err
		}

		for _, doc := range docs {
			if err := tx.DeleteDocument(ctx, s.name, doc.ID()); err != nil {
				return err
			}

			events = append(events, event{op: OpRemove, hc: HookContext{UserID: userID}, doc: doc})
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	s.evict(ctx, events)
	s.hooks.fireAll(events)

	return int64(len(events)), nil
}

func (s *StoreCollection) Find(ctx context.Context, filter Filter, opts FindOptions) (Cursor, error) {
	if id, ok := FormatID(filter[IDField]); ok {
		row, err := s.cached(ctx, id)
		if err != nil {
			return nil, err
		}

		docs := make([]Document, 0, 1)
		if row != nil {
			doc, err := s.decode(row)
			if err != nil {
				return nil, err
			}
			if Match(doc, filter) {
				docs = append(docs, doc)
			}
		}

		return newSliceCursor(Window(docs, opts)), nil
	}

	_, docs, err := s.match(ctx, s.store, filter)
	if err != nil {
		return nil, err
	}

	return newSliceCursor(Window(docs, opts)), nil
}

// match returns the rows of the collection matching filter along with their decoded documents.
func (s *StoreCollection) match(ctx context.Context, st store.Store, filter Filter) ([]*model.Document, []Document, error) {
	var candidates []*model.Document
	if id, ok := FormatID(filter[IDField]); ok {
		row, err := st.GetDocument(ctx, s.name, id)
		if errors.Is(err, store.ErrDocumentNotFound) {
			return nil, nil, nil
		}
		if err != nil {
			return nil, nil, err
		}
		candidates = []*model.Document{row}
	} else {
		rows, err := st.ListDocuments(ctx, s.name)
		if err != nil {
			return nil, nil, err
		}
		candidates = rows
	}

	rows := make([]*model.Document, 0, len(candidates))
	docs := make([]Document, 0, len(candidates))
	for _, row := range candidates {
		doc, err := s.decode(row)
		if err != nil {
			return nil, nil, err
		}

		if Match(doc, filter) {
			rows = append(rows, row)
			docs = append(docs, doc)
		}
	}

	return rows, docs, nil
}

// cached reads a row through the cache, filling it on a miss.
func (s *StoreCollection) cached(ctx context.Context, id string) (*model.Document, error) {
	if s.cache != nil {
		row, err := s.cache.GetDocument(ctx, s.name, id)
		if err != nil {
			logrus.Errorf("error reading document %s/%s from cache: %v", s.name, id, err)
		} else if row != nil {
			return row, nil
		}
	}

	row, err := s.store.GetDocument(ctx, s.name, id)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetDocument(ctx, row); err != nil {
			logrus.Errorf("error caching document %s/%s: %v", s.name, id, err)
		} else {
			s.recheck(ctx, row)
		}
	}

	return row, nil
}

// recheck drops a freshly cached row when the store moved past it. A writer
// commits before it evicts, so one that committed before this read is caught
// here and one that commits after it evicts the cached row itself.
func (s *StoreCollection) recheck(ctx context.Context, row *model.Document) {
	current, err := s.store.GetDocument(ctx, s.name, row.ID)
	if err != nil && !errors.Is(err, store.ErrDocumentNotFound) {
		logrus.Errorf("error rechecking cached document %s/%s: %v", s.name, row.ID, err)
		return
	}
	if current != nil && current.Version == row.Version {
		return
	}

	if err := s.cache.DeleteDocument(ctx, s.name, row.ID); err != nil {
		logrus.Errorf("error evicting document %s/%s from cache: %v", s.name, row.ID, err)
	}
}

func (s *StoreCollection) evict(ctx context.Context, events []event) {
	if s.cache == nil {
		return
	}

	for _, e := range events {
		if err := s.cache.DeleteDocument(ctx, s.name, e.doc.ID()); err != nil {
			logrus.Errorf("error evicting document %s/%s from cache: %v", s.name, e.doc.ID(), err)
		}
	}
}

func (s *StoreCollection) encode(doc Document, version int64) (*model.Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	encoded, err := s.compress.Encode(data)
	if err != nil {
		return nil, err
	}

	return &model.Document{
		ID:          doc.ID(),
		Collection:  s.name,
		Version:     version,
		Data:        encoded,
		Compression: s.compress.Name(),
	}, nil
}

// decode reads a row with the codec it was written with.
func (s *StoreCollection) decode(row *model.Document) (Document, error) {
	codec, err := compress.ByName(row.Compression)
	if err != nil {
		return nil, err
	}

	data, err := codec.Decode(row.Data)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	doc := make(Document)
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}

	for field, value := range doc {
		doc[field] = fromJSONNumbers(value)
	}

	return doc, nil
}

// fromJSONNumbers turns decoded json.Number values into int64 when they are
// integers and float64 otherwise.
func fromJSONNumbers(value any) any {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		for key, item := range v {
			v[key] = fromJSONNumbers(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = fromJSONNumbers(item)
		}
		return v
	}

	return value
}
