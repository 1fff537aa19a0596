package service

import (
	"errors"

	"github.com/emrgen/linkgraph/internal/collection"
	"github.com/emrgen/linkgraph/internal/graph"
	"github.com/emrgen/linkgraph/internal/store"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrWatchOverflow is returned when a watcher does not keep up with the changes.
	ErrWatchOverflow = errors.New("watch buffer overflow, events were dropped")
)

// toStatus maps link errors to gRPC status errors. Unknown errors are returned as they are.
func toStatus(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, graph.ErrInvalidSelector),
		errors.Is(err, graph.ErrNoIDField),
		errors.Is(err, graph.ErrUnknownEvent),
		errors.Is(err, collection.ErrCannotModifyID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, collection.ErrDuplicateID):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, store.ErrVersionConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, ErrWatchOverflow):
		return status.Error(codes.ResourceExhausted, err.Error())
	}

	return err
}
