package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	v1 "github.com/emrgen/linkgraph/apis/v1"
	"github.com/emrgen/linkgraph/internal/cache"
	"github.com/emrgen/linkgraph/internal/collection"
	"github.com/emrgen/linkgraph/internal/compress"
	"github.com/emrgen/linkgraph/internal/config"
	"github.com/emrgen/linkgraph/internal/graph"
	"github.com/emrgen/linkgraph/internal/jobs"
	"github.com/emrgen/linkgraph/internal/link"
	"github.com/emrgen/linkgraph/internal/metric"
	"github.com/emrgen/linkgraph/internal/module"
	"github.com/emrgen/linkgraph/internal/relay"
	"github.com/emrgen/linkgraph/internal/service"
	"github.com/emrgen/linkgraph/internal/store"
	grpcmiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpcrecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
	"google.golang.org/grpc"
)

// Backend is a graph together with the store it persists to. Store is nil
// for in-memory graphs.
type Backend struct {
	Graph *graph.Graph
	Store store.Store
}

// NewBackend builds the graph configured by cfg, migrating its database.
func NewBackend(cfg *config.Config) (*Backend, error) {
	if cfg.Driver == config.DriverMemory {
		g, err := graph.New(collection.NewMemoryCollection(cfg.Collection), cfg.Fields)
		if err != nil {
			return nil, err
		}
		return &Backend{Graph: g}, nil
	}

	db, err := config.GetDb(cfg)
	if err != nil {
		return nil, err
	}

	docStore := store.NewGormStore(db)
	err = docStore.Migrate()
	if err != nil {
		return nil, err
	}

	compressor, err := compress.ByName(cfg.Compression)
	if err != nil {
		return nil, err
	}

	var docCache cache.DocumentCache
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		docCache = cache.NewRedisDocumentCache(client, cfg.CacheTTL)
		logrus.Infof("caching documents in redis at %s", cfg.RedisAddr)
	}

	g, err := graph.New(collection.NewStoreCollection(cfg.Collection, docStore, compressor, docCache), cfg.Fields)
	if err != nil {
		return nil, err
	}

	return &Backend{Graph: g, Store: docStore}, nil
}

// NewGrpcServer creates a grpc server serving g. m may be nil.
func NewGrpcServer(g link.Graph, m *metric.Metrics) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(grpcmiddleware.ChainUnaryServer(
			grpcrecovery.UnaryServerInterceptor(),
			// make the user in the request metadata the actor of the mutations
			module.UnaryServerActorInterceptor(),
			// log the request time
			UnaryGrpcRequestTimeInterceptor(m),
		)),
		grpc.StreamInterceptor(grpcmiddleware.ChainStreamServer(
			grpcrecovery.StreamServerInterceptor(),
			module.StreamServerActorInterceptor(),
			StreamGrpcRequestTimeInterceptor(m),
		)),
	)

	v1.RegisterLinkServiceServer(grpcServer, service.NewLinkService(g))

	return grpcServer
}

// NewHttpServer creates the http server exposing the metrics and the
// websocket watch endpoint.
func NewHttpServer(addr string, g link.Graph, m *metric.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/", m.Handler())
	mux.Handle("/watch", service.WatchHandler(g))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Start starts the grpc server and the purge job and blocks until the process is signalled.
func Start(cfg *config.Config) error {
	logrus.SetLevel(cfg.LogLevel)

	backend, err := NewBackend(cfg)
	if err != nil {
		return err
	}

	grpcPort := ":" + cfg.GrpcPort
	gl, err := net.Listen("tcp", grpcPort)
	if err != nil {
		return err
	}

	var executor *jobs.TaskExecutor
	if backend.Store != nil {
		executor = jobs.NewTaskExecutor(jobs.NewPurgeTask(backend.Store, cfg.PurgeSchedule, cfg.PurgeRetention))
		if err := executor.Start(); err != nil {
			return err
		}
	}

	metrics := metric.NewMetrics()
	stopMetrics, err := metrics.Watch(backend.Graph)
	if err != nil {
		return err
	}
	defer stopMetrics()

	var httpServer *http.Server
	if cfg.HttpPort != "0" {
		httpServer = NewHttpServer(":"+cfg.HttpPort, backend.Graph, metrics)
		go func() {
			logrus.Infof("starting http server on: %s", httpServer.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("http server failed: %v", err)
			}
		}()
	}

	if cfg.NatsURL != "" {
		conn, err := relay.Connect(cfg.NatsURL, "linkgraph")
		if err != nil {
			return err
		}
		defer conn.Close()

		stopRelay, err := relay.NewNatsRelay(conn, cfg.NatsSubject).Attach(backend.Graph)
		if err != nil {
			return err
		}
		defer stopRelay()
		logrus.Infof("relaying link events to %s on %s.*", cfg.NatsURL, cfg.NatsSubject)
	}

	grpcServer := NewGrpcServer(backend.Graph, metrics)

	// make sure to wait for the server to stop before exiting
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Infof("starting grpc server on: %s, collection %s with fields %s", grpcPort, cfg.Collection, cfg.Fields)
		if err := grpcServer.Serve(gl); err != nil {
			logrus.Errorf("grpc failed to start: %v", err)
		}
		logrus.Infof("grpc server stopped")
	}()

	logrus.Infof("Press Ctrl+C to stop the server")

	// listen for interrupt signal to gracefully shut down the server
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	if executor != nil {
		executor.Stop()
	}
	grpcServer.Stop()
	if httpServer != nil {
		_ = httpServer.Shutdown(context.Background())
	}
	wg.Wait()

	return nil
}
