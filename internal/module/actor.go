package module

import (
	"context"
	"strings"

	"github.com/emrgen/linkgraph/internal/collection"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	// UserIDHeader carries the id of the user performing a request.
	UserIDHeader = "x-user-id"
)

// UnaryServerActorInterceptor makes the requesting user the actor of the mutations of a unary call.
func UnaryServerActorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		return handler(withActor(ctx), req)
	}
}

// StreamServerActorInterceptor does the same for streaming calls.
func StreamServerActorInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		return handler(srv, &actorStream{ServerStream: ss, ctx: withActor(ss.Context())})
	}
}

// WithOutgoingUserID adds the user id to the metadata of outgoing calls.
func WithOutgoingUserID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, UserIDHeader, userID)
}

func withActor(ctx context.Context) context.Context {
	userID := userIDFromHeader(ctx, UserIDHeader)
	if userID == "" {
		return ctx
	}

	return collection.WithUserID(ctx, userID)
}

func userIDFromHeader(ctx context.Context, header string) string {
	headers, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	val := headers.Get(header)
	if len(val) == 0 {
		return ""
	}

	return strings.TrimSpace(val[0])
}

type actorStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *actorStream) Context() context.Context {
	return s.ctx
}
