package service

import (
	"sync"

	v1 "github.com/emrgen/linkgraph/apis/v1"
	"github.com/emrgen/linkgraph/internal/link"
)

const watchBufferSize = 64

// watcher buffers the events of one subscription. overflow is closed once an
// event had to be dropped.
type watcher struct {
	events   chan *v1.WatchEvent
	overflow chan struct{}
	cancel   func()
}

func watch(g link.Graph, event string) (*watcher, error) {
	w := &watcher{
		events:   make(chan *v1.WatchEvent, watchBufferSize),
		overflow: make(chan struct{}),
	}

	var once sync.Once
	cancel, err := g.On(link.Event(event), func(old, new link.Link, ec link.EventContext) {
		select {
		case w.events <- &v1.WatchEvent{Event: event, Old: old, New: new, UserId: ec.UserID}:
		default:
			once.Do(func() { close(w.overflow) })
		}
	})
	if err != nil {
		return nil, err
	}
	w.cancel = cancel

	return w, nil
}
