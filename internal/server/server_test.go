package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	v1 "github.com/emrgen/linkgraph/apis/v1"
	"github.com/emrgen/linkgraph/internal/compress"
	"github.com/emrgen/linkgraph/internal/config"
	"github.com/emrgen/linkgraph/internal/link"
	"github.com/emrgen/linkgraph/internal/metric"
	"github.com/emrgen/linkgraph/internal/module"
	"github.com/emrgen/linkgraph/internal/tester"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func testConfig(t *testing.T) *config.Config {
	fields, err := link.ParseFields("id=_id,source=from,target=to")
	require.NoError(t, err)

	return &config.Config{
		Driver:         config.DriverSqlite,
		DSN:            filepath.Join(t.TempDir(), "linkgraph.db"),
		CacheTTL:       time.Minute,
		Compression:    compress.NameGZip,
		Collection:     "links",
		Fields:         fields,
		PurgeSchedule:  "@every 1h",
		PurgeRetention: time.Hour,
	}
}

func TestNewBackend_Memory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Driver = config.DriverMemory

	backend, err := NewBackend(cfg)
	require.NoError(t, err)
	assert.Nil(t, backend.Store)

	ctx := context.Background()
	_, err = backend.Graph.Insert(ctx, link.Link{"source": "a", "target": "b"})
	require.NoError(t, err)

	targets, err := link.Targets(ctx, backend.Graph, "a")
	require.NoError(t, err)
	assert.Equal(t, []any{"b"}, targets)
}

func TestNewBackend_SqliteWithRedis(t *testing.T) {
	_, redisServer := tester.Redis(t)

	cfg := testConfig(t)
	cfg.RedisAddr = redisServer.Addr()

	backend, err := NewBackend(cfg)
	require.NoError(t, err)
	require.NotNil(t, backend.Store)

	ctx := context.Background()
	id, err := backend.Graph.Insert(ctx, link.Link{"source": "a", "target": "b"})
	require.NoError(t, err)

	// a lookup by id goes through the cache
	links, err := backend.Graph.Fetch(ctx, id, nil)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "b", links[0]["target"])
	assert.NotEmpty(t, redisServer.Keys())

	doc, err := backend.Store.GetDocument(ctx, "links", id)
	require.NoError(t, err)
	assert.Equal(t, compress.NameGZip, doc.Compression)
}

func TestNewBackend_UnknownCompression(t *testing.T) {
	cfg := testConfig(t)
	cfg.Compression = "zip"

	_, err := NewBackend(cfg)
	assert.ErrorIs(t, err, compress.ErrUnknownCodec)
}

func TestNewGrpcServer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Driver = config.DriverMemory
	backend, err := NewBackend(cfg)
	require.NoError(t, err)

	var actors []string
	_, err = backend.Graph.On(link.EventInsert, func(_, _ link.Link, ec link.EventContext) {
		actors = append(actors, ec.UserID)
	})
	require.NoError(t, err)

	listener := bufconn.Listen(1 << 20)
	metrics := metric.NewMetrics()
	grpcServer := NewGrpcServer(backend.Graph, metrics)
	go func() {
		_ = grpcServer.Serve(listener)
	}()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(UnaryRequestTimeInterceptor()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})
	client := v1.NewLinkServiceClient(conn)

	ctx := module.WithOutgoingUserID(context.Background(), "u1")
	res, err := client.Insert(ctx, &v1.InsertRequest{Link: map[string]any{"source": "a", "target": "b"}})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Id)
	assert.Equal(t, []string{"u1"}, actors)

	fetched, err := client.Fetch(ctx, &v1.FetchRequest{Selector: &v1.Selector{Id: res.Id}})
	require.NoError(t, err)
	require.Len(t, fetched.Links, 1)
	assert.Equal(t, "a", fetched.Links[0]["source"])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(v1.LinkService_Insert_FullMethodName, "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(v1.LinkService_Fetch_FullMethodName, "OK")))
}

func TestNewHttpServer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Driver = config.DriverMemory
	backend, err := NewBackend(cfg)
	require.NoError(t, err)

	server := httptest.NewServer(NewHttpServer("", backend.Graph, metric.NewMetrics()).Handler)
	defer server.Close()

	for _, path := range []string{"/health", "/metrics"} {
		res, err := http.Get(server.URL + path)
		require.NoError(t, err)
		_ = res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode, path)
	}

	// a plain request to the websocket endpoint is rejected by the upgrader
	res, err := http.Get(server.URL + "/watch?event=insert")
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
