package graph

import (
	"fmt"

	"github.com/emrgen/linkgraph/internal/collection"
	"github.com/emrgen/linkgraph/internal/link"
)

// eventOps lists the collection mutations each event is raised for.
var eventOps = map[link.Event][]collection.Op{
	link.EventInsert: {collection.OpInsert},
	link.EventUpdate: {collection.OpUpdate},
	link.EventRemove: {collection.OpRemove},
	link.EventLink:   {collection.OpInsert, collection.OpUpdate},
	link.EventUnlink: {collection.OpUpdate, collection.OpRemove},
}

// On calls listener for every collection mutation raising event. Every call
// registers a new subscription; the returned func cancels it.
func (g *Graph) On(event link.Event, listener link.Listener) (func(), error) {
	ops, ok := eventOps[event]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}

	hooks := g.collection.After()
	cancels := make([]func(), 0, len(ops))
	for _, op := range ops {
		switch op {
		case collection.OpInsert:
			cancels = append(cancels, hooks.Insert(func(hc collection.HookContext, doc collection.Document) {
				listener(nil, g.link(doc), link.EventContext{UserID: hc.UserID})
			}))
		case collection.OpUpdate:
			cancels = append(cancels, hooks.Update(func(hc collection.HookContext, doc collection.Document) {
				listener(g.link(hc.Previous), g.link(doc), link.EventContext{UserID: hc.UserID})
			}))
		case collection.OpRemove:
			cancels = append(cancels, hooks.Remove(func(hc collection.HookContext, doc collection.Document) {
				listener(g.link(doc), nil, link.EventContext{UserID: hc.UserID})
			}))
		}
	}

	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}, nil
}
