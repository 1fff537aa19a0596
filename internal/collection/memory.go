package collection

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var _ Collection = (*MemoryCollection)(nil)

// MemoryCollection keeps documents in memory in insertion order.
type MemoryCollection struct {
	name  string
	mu    sync.RWMutex
	docs  map[string]Document
	order []string
	hooks Hooks
}

// NewMemoryCollection creates an empty in-memory collection.
func NewMemoryCollection(name string) *MemoryCollection {
	return &MemoryCollection{
		name: name,
		docs: make(map[string]Document),
	}
}

func (m *MemoryCollection) Name() string {
	return m.name
}

func (m *MemoryCollection) After() *Hooks {
	return &m.hooks
}

func (m *MemoryCollection) Insert(ctx context.Context, doc Document) (string, error) {
	doc = withID(doc)
	id := doc.ID()

	m.mu.Lock()
	if _, ok := m.docs[id]; ok {
		m.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	m.docs[id] = doc
	m.order = append(m.order, id)
	m.mu.Unlock()

	m.hooks.Fire(OpInsert, HookContext{UserID: UserID(ctx)}, doc)

	return id, nil
}

func (m *MemoryCollection) Update(ctx context.Context, filter Filter, modifier Modifier) (int64, error) {
	userID := UserID(ctx)
	fieldNames := modifier.FieldNames()

	m.mu.Lock()
	events := make([]event, 0)
	for _, id := range m.order {
		prev := m.docs[id]
		if !Match(prev, filter) {
			continue
		}

		next, err := Apply(prev, modifier)
		if err != nil {
			m.mu.Unlock()
			return 0, err
		}

		m.docs[id] = next
		events = append(events, event{
			op:  OpUpdate,
			hc:  HookContext{UserID: userID, Previous: prev, FieldNames: fieldNames},
			doc: next,
		})
	}
	m.mu.Unlock()

	m.hooks.fireAll(events)

	return int64(len(events)), nil
}

func (m *MemoryCollection) Remove(ctx context.Context, filter Filter) (int64, error) {
	userID := UserID(ctx)

	m.mu.Lock()
	events := make([]event, 0)
	order := make([]string, 0, len(m.order))
	for _, id := range m.order {
		doc := m.docs[id]
		if !Match(doc, filter) {
			order = append(order, id)
			continue
		}

		delete(m.docs, id)
		events = append(events, event{op: OpRemove, hc: HookContext{UserID: userID}, doc: doc})
	}
	m.order = order
	m.mu.Unlock()

	m.hooks.fireAll(events)

	return int64(len(events)), nil
}

func (m *MemoryCollection) Find(ctx context.Context, filter Filter, opts FindOptions) (Cursor, error) {
	m.mu.RLock()
	docs := make([]Document, 0)
	for _, id := range m.order {
		if doc := m.docs[id]; Match(doc, filter) {
			docs = append(docs, doc)
		}
	}
	m.mu.RUnlock()

	return newSliceCursor(Window(docs, opts)), nil
}

// withID returns a copy of doc carrying a string id, generating one if missing.
func withID(doc Document) Document {
	doc = doc.Clone()
	if doc == nil {
		doc = make(Document)
	}

	switch id := doc[IDField].(type) {
	case nil:
		doc[IDField] = uuid.New().String()
	case string:
		if id == "" {
			doc[IDField] = uuid.New().String()
		}
	default:
		if formatted, ok := FormatID(id); ok {
			doc[IDField] = formatted
		} else {
			doc[IDField] = fmt.Sprint(id)
		}
	}

	return doc
}
