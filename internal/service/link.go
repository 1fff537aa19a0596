package service

import (
	"context"

	v1 "github.com/emrgen/linkgraph/apis/v1"
	"github.com/emrgen/linkgraph/internal/link"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/metadata"
)

const watchEventHeader = "x-watch-event"

var (
	_ v1.LinkServiceServer = (*LinkService)(nil)
)

// NewLinkService creates a new LinkService.
func NewLinkService(graph link.Graph) *LinkService {
	return &LinkService{
		graph: graph,
	}
}

// LinkService serves a link graph over gRPC.
type LinkService struct {
	graph link.Graph
	v1.UnimplementedLinkServiceServer
}

// Insert inserts a new link.
func (l *LinkService) Insert(ctx context.Context, request *v1.InsertRequest) (*v1.InsertResponse, error) {
	id, err := l.graph.Insert(ctx, request.Link)
	if err != nil {
		return nil, toStatus(err)
	}

	return &v1.InsertResponse{Id: id}, nil
}

// Update sets and unsets fields of the selected links.
func (l *LinkService) Update(ctx context.Context, request *v1.UpdateRequest) (*v1.UpdateResponse, error) {
	modifier := make(link.Link, len(request.Set)+len(request.Unset))
	for field, value := range request.Set {
		modifier[field] = value
	}
	for _, field := range request.Unset {
		modifier[field] = link.Undefined
	}

	count, err := l.graph.Update(ctx, selector(request.Selector), modifier)
	if err != nil {
		return nil, toStatus(err)
	}

	return &v1.UpdateResponse{Count: count}, nil
}

// Remove removes the selected links.
func (l *LinkService) Remove(ctx context.Context, request *v1.RemoveRequest) (*v1.RemoveResponse, error) {
	count, err := l.graph.Remove(ctx, selector(request.Selector))
	if err != nil {
		return nil, toStatus(err)
	}

	return &v1.RemoveResponse{Count: count}, nil
}

// Fetch returns the selected links.
func (l *LinkService) Fetch(ctx context.Context, request *v1.FetchRequest) (*v1.FetchResponse, error) {
	opts := &link.Options{Skip: request.Skip, Limit: request.Limit}
	for _, key := range request.Sort {
		opts.Sort = append(opts.Sort, link.SortKey{Field: key.Field, Ascending: key.Ascending})
	}

	links, err := l.graph.Fetch(ctx, selector(request.GetSelector()), opts)
	if err != nil {
		return nil, toStatus(err)
	}

	res := &v1.FetchResponse{Links: make([]map[string]any, 0, len(links))}
	for _, found := range links {
		res.Links = append(res.Links, found)
	}

	return res, nil
}

// Watch streams link changes of the requested event until the client goes away.
func (l *LinkService) Watch(request *v1.WatchRequest, stream v1.LinkService_WatchServer) error {
	w, err := watch(l.graph, request.Event)
	if err != nil {
		return toStatus(err)
	}
	defer w.cancel()

	// the header tells the client that changes from now on are delivered
	if err := stream.SendHeader(metadata.Pairs(watchEventHeader, request.Event)); err != nil {
		return err
	}

	logrus.Infof("watching %s events", request.Event)

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			logrus.Infof("stopped watching %s events", request.Event)
			return nil
		case <-w.overflow:
			logrus.Warnf("dropping %s watcher: %v", request.Event, ErrWatchOverflow)
			return toStatus(ErrWatchOverflow)
		case event := <-w.events:
			if err := stream.Send(event); err != nil {
				return err
			}
		}
	}
}

// selector converts a request selector into a graph selector.
func selector(s *v1.Selector) any {
	if s == nil {
		return link.Link{}
	}

	if s.Link == nil && len(s.Undefined) == 0 && s.Id != "" {
		return s.Id
	}

	sel := make(link.Link, len(s.Link)+len(s.Undefined)+1)
	for field, value := range s.Link {
		sel[field] = value
	}
	for _, field := range s.Undefined {
		sel[field] = link.Undefined
	}
	if s.Id != "" {
		sel[link.IDField] = s.Id
	}

	return sel
}
