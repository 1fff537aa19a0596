package graph

import (
	"context"
	"testing"

	"github.com/emrgen/linkgraph/internal/collection"
	"github.com/emrgen/linkgraph/internal/link"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	old link.Link
	new link.Link
	ec  link.EventContext
}

func recorder(out *[]received) link.Listener {
	return func(old, new link.Link, ec link.EventContext) {
		*out = append(*out, received{old: old, new: new, ec: ec})
	}
}

// mutate inserts, updates and removes one link as user-1.
func mutate(t *testing.T, g *Graph) string {
	t.Helper()
	ctx := collection.WithUserID(context.TODO(), "user-1")

	id, err := g.Insert(ctx, link.Link{"source": "a", "target": "b"})
	require.NoError(t, err)
	_, err = g.Update(ctx, id, link.Link{"target": "c"})
	require.NoError(t, err)
	_, err = g.Remove(ctx, id)
	require.NoError(t, err)

	return id
}

func TestGraph_On(t *testing.T) {
	g, _ := newTestGraph(t)

	events := make(map[link.Event]*[]received)
	for _, event := range link.Events {
		out := make([]received, 0)
		events[event] = &out
		_, err := g.On(event, recorder(&out))
		require.NoError(t, err)
	}

	id := mutate(t, g)

	inserted := link.Link{"id": id, "source": "a", "target": "b"}
	updated := link.Link{"id": id, "source": "a", "target": "c"}
	ec := link.EventContext{UserID: "user-1"}

	assert.Equal(t, []received{{old: nil, new: inserted, ec: ec}}, *events[link.EventInsert])
	assert.Equal(t, []received{{old: inserted, new: updated, ec: ec}}, *events[link.EventUpdate])
	assert.Equal(t, []received{{old: updated, new: nil, ec: ec}}, *events[link.EventRemove])
	assert.Equal(t, []received{
		{old: nil, new: inserted, ec: ec},
		{old: inserted, new: updated, ec: ec},
	}, *events[link.EventLink])
	assert.Equal(t, []received{
		{old: inserted, new: updated, ec: ec},
		{old: updated, new: nil, ec: ec},
	}, *events[link.EventUnlink])
}

func TestGraph_OnTwiceRegistersTwice(t *testing.T) {
	g, c := newTestGraph(t)

	out := make([]received, 0)
	_, err := g.On(link.EventInsert, recorder(&out))
	require.NoError(t, err)
	_, err = g.On(link.EventInsert, recorder(&out))
	require.NoError(t, err)
	assert.Equal(t, 2, c.After().Len(collection.OpInsert))

	_, err = g.Insert(context.TODO(), link.Link{"source": "a"})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestGraph_OnUnsubscribe(t *testing.T) {
	g, c := newTestGraph(t)

	out := make([]received, 0)
	cancel, err := g.On(link.EventUnlink, recorder(&out))
	require.NoError(t, err)
	assert.Equal(t, 1, c.After().Len(collection.OpUpdate))
	assert.Equal(t, 1, c.After().Len(collection.OpRemove))

	cancel()
	assert.Equal(t, 0, c.After().Len(collection.OpUpdate))
	assert.Equal(t, 0, c.After().Len(collection.OpRemove))

	mutate(t, g)
	assert.Empty(t, out)
}

func TestGraph_OnUnknownEvent(t *testing.T) {
	g, _ := newTestGraph(t)

	cancel, err := g.On("relink", recorder(&[]received{}))
	assert.ErrorIs(t, err, ErrUnknownEvent)
	assert.Nil(t, cancel)
}
