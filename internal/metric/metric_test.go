package metric

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emrgen/linkgraph/internal/collection"
	"github.com/emrgen/linkgraph/internal/graph"
	"github.com/emrgen/linkgraph/internal/link"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Watch(t *testing.T) {
	g, err := graph.New(collection.NewMemoryCollection("links"), link.Fields{
		{Logical: "id", Physical: "_id"},
		{Logical: "source", Physical: "source"},
		{Logical: "target", Physical: "target"},
	})
	require.NoError(t, err)

	m := NewMetrics()
	cancel, err := m.Watch(g)
	require.NoError(t, err)

	ctx := context.Background()
	id, err := g.Insert(ctx, link.Link{"source": "a", "target": "b"})
	require.NoError(t, err)
	_, err = g.Update(ctx, id, link.Link{"target": "c"})
	require.NoError(t, err)
	_, err = g.Remove(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinkEvents.WithLabelValues("insert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinkEvents.WithLabelValues("update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinkEvents.WithLabelValues("remove")))

	cancel()
	_, err = g.Insert(ctx, link.Link{"source": "a", "target": "b"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinkEvents.WithLabelValues("insert")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("/linkgraph.v1.LinkService/Insert", "OK", 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/linkgraph.v1.LinkService/Insert", "OK")))

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	res, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "linkgraph_grpc_requests_total")

	health, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}
