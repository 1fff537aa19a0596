package collection

import (
	"sync"
)

// Op is a kind of collection mutation.
type Op int

const (
	OpInsert Op = iota
	OpUpdate
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpRemove:
		return "remove"
	}

	return "unknown"
}

// HookContext describes the mutation a hook is called for.
type HookContext struct {
	// UserID is the user that performed the mutation.
	UserID string
	// Previous is the document before an update, nil otherwise.
	Previous Document
	// FieldNames are the fields touched by an update.
	FieldNames []string
}

// Hook is called with the inserted, updated or removed document.
type Hook func(hc HookContext, doc Document)

type hookEntry struct {
	id int
	fn Hook
}

// Hooks holds the functions run after collection mutations. The zero value is ready to use.
type Hooks struct {
	mu     sync.RWMutex
	nextID int
	hooks  map[Op][]hookEntry
}

// Insert registers fn to run after every insert.
func (h *Hooks) Insert(fn Hook) func() {
	return h.add(OpInsert, fn)
}

// Update registers fn to run after every updated document.
func (h *Hooks) Update(fn Hook) func() {
	return h.add(OpUpdate, fn)
}

// Remove registers fn to run after every removed document.
func (h *Hooks) Remove(fn Hook) func() {
	return h.add(OpRemove, fn)
}

// Len returns the number of hooks registered for op.
func (h *Hooks) Len(op Op) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.hooks[op])
}

// Fire runs the hooks registered for op in registration order.
func (h *Hooks) Fire(op Op, hc HookContext, doc Document) {
	h.mu.RLock()
	entries := make([]hookEntry, len(h.hooks[op]))
	copy(entries, h.hooks[op])
	h.mu.RUnlock()

	for _, entry := range entries {
		entry.fn(hc, doc.Clone())
	}
}

func (h *Hooks) add(op Op, fn Hook) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.hooks == nil {
		h.hooks = make(map[Op][]hookEntry)
	}

	h.nextID++
	id := h.nextID
	h.hooks[op] = append(h.hooks[op], hookEntry{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(op, id) })
	}
}

func (h *Hooks) remove(op Op, id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := h.hooks[op]
	for i, entry := range entries {
		if entry.id == id {
			h.hooks[op] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// event is a mutation whose hooks still have to run.
type event struct {
	op  Op
	hc  HookContext
	doc Document
}

func (h *Hooks) fireAll(events []event) {
	for _, e := range events {
		h.Fire(e.op, e.hc, e.doc)
	}
}
