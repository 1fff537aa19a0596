package server

import (
	"context"
	"time"

	"github.com/emrgen/linkgraph/internal/metric"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// UnaryGrpcRequestTimeInterceptor logs the method, status code and duration
// of each call and records them in m when it is not nil.
func UnaryGrpcRequestTimeInterceptor(m *metric.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		requestEntry(info.FullMethod, start, err).Info("request time")
		if m != nil {
			m.ObserveRequest(info.FullMethod, status.Code(err).String(), time.Since(start))
		}
		return resp, err
	}
}

// StreamGrpcRequestTimeInterceptor logs how long each watch stream stayed open.
func StreamGrpcRequestTimeInterceptor(m *metric.Metrics) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if m != nil {
			m.WatchStreams.Inc()
			defer m.WatchStreams.Dec()
		}

		start := time.Now()
		err := handler(srv, ss)
		requestEntry(info.FullMethod, start, err).Info("stream closed")
		if m != nil {
			m.Requests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		}
		return err
	}
}

func UnaryRequestTimeInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req interface{},
		reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		requestEntry(method, start, err).Debug("request time")
		return err
	}
}

func requestEntry(method string, start time.Time, err error) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"method":   method,
		"code":     status.Code(err).String(),
		"duration": time.Since(start),
	})
}
