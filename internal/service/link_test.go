package service

import (
	"context"
	"net"
	"testing"
	"time"

	v1 "github.com/emrgen/linkgraph/apis/v1"
	"github.com/emrgen/linkgraph/internal/collection"
	"github.com/emrgen/linkgraph/internal/graph"
	"github.com/emrgen/linkgraph/internal/link"
	"github.com/emrgen/linkgraph/internal/module"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func newTestClient(t *testing.T) v1.LinkServiceClient {
	t.Helper()

	g, err := graph.New(collection.NewMemoryCollection("links"), link.Fields{
		{Logical: "id", Physical: "_id"},
		{Logical: "source", Physical: "from"},
		{Logical: "target", Physical: "to"},
		{Logical: "label", Physical: "l"},
	})
	require.NoError(t, err)

	listener := bufconn.Listen(1 << 20)
	server := grpc.NewServer(
		grpc.UnaryInterceptor(module.UnaryServerActorInterceptor()),
		grpc.StreamInterceptor(module.StreamServerActorInterceptor()),
	)
	v1.RegisterLinkServiceServer(server, NewLinkService(g))
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return v1.NewLinkServiceClient(conn)
}

func TestLinkService_CRUD(t *testing.T) {
	client := newTestClient(t)
	ctx := context.TODO()

	inserted, err := client.Insert(ctx, &v1.InsertRequest{Link: map[string]any{"source": "a", "target": "b", "label": "x"}})
	require.NoError(t, err)
	require.NotEmpty(t, inserted.Id)

	_, err = client.Insert(ctx, &v1.InsertRequest{Link: map[string]any{"id": "fixed", "source": "a", "target": "c"}})
	require.NoError(t, err)

	_, err = client.Insert(ctx, &v1.InsertRequest{Link: map[string]any{"id": "fixed"}})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	fetched, err := client.Fetch(ctx, &v1.FetchRequest{Selector: &v1.Selector{Id: inserted.Id}})
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"id": inserted.Id, "source": "a", "target": "b", "label": "x"}}, fetched.Links)

	updated, err := client.Update(ctx, &v1.UpdateRequest{
		Selector: &v1.Selector{Link: map[string]any{"source": "a"}},
		Set:      map[string]any{"target": "d"},
		Unset:    []string{"label"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Count)

	fetched, err = client.Fetch(ctx, &v1.FetchRequest{
		Selector: &v1.Selector{Undefined: []string{"label"}},
		Sort:     []v1.SortKey{{Field: "id", Ascending: false}},
		Limit:    1,
	})
	require.NoError(t, err)
	require.Len(t, fetched.Links, 1)
	assert.Equal(t, "fixed", fetched.Links[0]["id"])
	assert.Equal(t, "d", fetched.Links[0]["target"])

	_, err = client.Update(ctx, &v1.UpdateRequest{Selector: &v1.Selector{Id: "fixed"}, Set: map[string]any{"id": "other"}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	removed, err := client.Remove(ctx, &v1.RemoveRequest{Selector: &v1.Selector{Link: map[string]any{"target": "d"}}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed.Count)

	fetched, err = client.Fetch(ctx, &v1.FetchRequest{})
	require.NoError(t, err)
	assert.Empty(t, fetched.Links)
}

func TestLinkService_Watch(t *testing.T) {
	client := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Watch(ctx, &v1.WatchRequest{Event: string(link.EventLink)})
	require.NoError(t, err)

	header, err := stream.Header()
	require.NoError(t, err)
	assert.Equal(t, []string{string(link.EventLink)}, header.Get(watchEventHeader))

	inserted, err := client.Insert(module.WithOutgoingUserID(ctx, "user-1"), &v1.InsertRequest{Link: map[string]any{"source": "a", "target": "b"}})
	require.NoError(t, err)

	event, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "user-1", event.UserId)
	assert.Nil(t, event.Old)
	assert.Equal(t, map[string]any{"id": inserted.Id, "source": "a", "target": "b"}, event.New)

	_, err = client.Update(module.WithOutgoingUserID(ctx, "user-2"), &v1.UpdateRequest{
		Selector: &v1.Selector{Id: inserted.Id},
		Set:      map[string]any{"target": "c"},
	})
	require.NoError(t, err)

	event, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, string(link.EventLink), event.Event)
	assert.Equal(t, "user-2", event.UserId)
	assert.Equal(t, "b", event.Old["target"])
	assert.Equal(t, "c", event.New["target"])
}

func TestLinkService_WatchUnknownEvent(t *testing.T) {
	client := newTestClient(t)

	stream, err := client.Watch(context.TODO(), &v1.WatchRequest{Event: "relink"})
	require.NoError(t, err)

	_, err = stream.Recv()
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSelector(t *testing.T) {
	tests := []struct {
		name     string
		selector *v1.Selector
		want     any
	}{
		{name: "nil", selector: nil, want: link.Link{}},
		{name: "empty", selector: &v1.Selector{}, want: link.Link{}},
		{name: "id", selector: &v1.Selector{Id: "a"}, want: "a"},
		{name: "link", selector: &v1.Selector{Link: map[string]any{"source": "x"}}, want: link.Link{"source": "x"}},
		{name: "undefined", selector: &v1.Selector{Undefined: []string{"label"}}, want: link.Link{"label": link.Undefined}},
		{name: "id and link", selector: &v1.Selector{Id: "a", Link: map[string]any{"source": "x"}}, want: link.Link{"id": "a", "source": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selector(tt.selector))
		})
	}
}
