package link

import (
	"context"

	"github.com/emrgen/linkgraph/internal/collection"
)

// Event names a kind of link change notification.
type Event string

const (
	EventInsert Event = "insert"
	EventUpdate Event = "update"
	EventRemove Event = "remove"
	// EventLink fires on insert and update.
	EventLink Event = "link"
	// EventUnlink fires on update and remove.
	EventUnlink Event = "unlink"
)

// Events lists every event kind a Graph accepts.
var Events = []Event{EventInsert, EventUpdate, EventRemove, EventLink, EventUnlink}

// EventContext carries additional information about a change.
type EventContext struct {
	UserID string
}

// Listener receives link changes. old is nil on insert, new is nil on remove.
type Listener func(old, new Link, ec EventContext)

// Graph is the set of operations a link store provides to generic graph code.
type Graph interface {
	// Insert stores a new link and returns its id.
	Insert(ctx context.Context, link Link) (string, error)
	// Update applies modifier to every link matched by selector.
	Update(ctx context.Context, selector any, modifier Link) (int64, error)
	// Remove deletes every link matched by selector.
	Remove(ctx context.Context, selector any) (int64, error)
	// Query translates a selector into a collection filter.
	Query(selector any) (collection.Filter, error)
	// Options translates link options into collection find options.
	Options(opts *Options) collection.FindOptions
	// Fetch returns all matching links.
	Fetch(ctx context.Context, selector any, opts *Options) ([]Link, error)
	// Each calls fn once per matching link, sequentially.
	Each(ctx context.Context, selector any, opts *Options, fn func(Link) error) error
	// Map collects fn applied to every matching link.
	Map(ctx context.Context, selector any, opts *Options, fn func(Link) (any, error)) ([]any, error)
	// On subscribes listener to an event and returns a func removing the subscription.
	On(event Event, listener Listener) (func(), error)
}

// Targets returns the target of every link leaving source.
func Targets(ctx context.Context, g Graph, source any) ([]any, error) {
	return g.Map(ctx, Link{SourceField: source}, nil, func(l Link) (any, error) {
		return l[TargetField], nil
	})
}

// Sources returns the source of every link entering target.
func Sources(ctx context.Context, g Graph, target any) ([]any, error) {
	return g.Map(ctx, Link{TargetField: target}, nil, func(l Link) (any, error) {
		return l[SourceField], nil
	})
}
