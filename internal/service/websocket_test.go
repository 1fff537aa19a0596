package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	v1 "github.com/emrgen/linkgraph/apis/v1"
	"github.com/emrgen/linkgraph/internal/collection"
	"github.com/emrgen/linkgraph/internal/graph"
	"github.com/emrgen/linkgraph/internal/link"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchHandler(t *testing.T) {
	g, err := graph.New(collection.NewMemoryCollection("links"), link.Fields{
		{Logical: "id", Physical: "_id"},
		{Logical: "source", Physical: "from"},
		{Logical: "target", Physical: "to"},
	})
	require.NoError(t, err)

	server := httptest.NewServer(WatchHandler(g))
	defer server.Close()
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	t.Run("unknown event", func(t *testing.T) {
		_, res, err := websocket.DefaultDialer.Dial(url+"?event=moved", nil)
		require.Error(t, err)
		require.NotNil(t, res)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("unlink", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(url+"?event=unlink", nil)
		require.NoError(t, err)
		defer conn.Close()

		ctx := collection.WithUserID(context.Background(), "u1")
		id, err := g.Insert(ctx, link.Link{"source": "a", "target": "b"})
		require.NoError(t, err)
		_, err = g.Remove(ctx, id)
		require.NoError(t, err)

		// the insert is not an unlink event
		var event v1.WatchEvent
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, "unlink", event.Event)
		assert.Equal(t, map[string]any{"id": id, "source": "a", "target": "b"}, event.Old)
		assert.Nil(t, event.New)
		assert.Equal(t, "u1", event.UserId)
	})
}
