// Package linkgraph is the client of the link graph service.
package linkgraph

import (
	"io"

	v1 "github.com/emrgen/linkgraph/apis/v1"
	"github.com/emrgen/linkgraph/internal/server"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type Client interface {
	io.Closer
	v1.LinkServiceClient
}

type client struct {
	conn *grpc.ClientConn
	v1.LinkServiceClient
}

// NewClient connects to the link service at addr. opts are appended to the
// default insecure transport.
func NewClient(addr string, opts ...grpc.DialOption) (Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(server.UnaryRequestTimeInterceptor()),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, err
	}

	return &client{
		conn:              conn,
		LinkServiceClient: v1.NewLinkServiceClient(conn),
	}, nil
}

func (c *client) Close() error {
	return c.conn.Close()
}
