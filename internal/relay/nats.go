// Package relay republishes link changes on a NATS subject per event kind.
package relay

import (
	"encoding/json"
	"time"

	v1 "github.com/emrgen/linkgraph/apis/v1"
	"github.com/emrgen/linkgraph/internal/link"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const DefaultPrefix = "links"

// Connect opens a NATS connection that keeps reconnecting until closed.
func Connect(url, name string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logrus.Warnf("nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			logrus.Infof("nats reconnected to %s", conn.ConnectedUrl())
		}),
	)
}

// NatsRelay publishes the changes of a graph as v1.WatchEvent JSON messages.
type NatsRelay struct {
	conn   *nats.Conn
	prefix string
}

func NewNatsRelay(conn *nats.Conn, prefix string) *NatsRelay {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &NatsRelay{conn: conn, prefix: prefix}
}

// Subject is the subject events of the given kind are published on.
func (r *NatsRelay) Subject(event link.Event) string {
	return r.prefix + "." + string(event)
}

// Attach starts relaying the insert, update and remove events of g. The
// returned func stops relaying.
func (r *NatsRelay) Attach(g link.Graph) (func(), error) {
	var cancels []func()
	cancel := func() {
		for _, c := range cancels {
			c()
		}
	}

	for _, event := range []link.Event{link.EventInsert, link.EventUpdate, link.EventRemove} {
		c, err := g.On(event, r.listener(event))
		if err != nil {
			cancel()
			return nil, err
		}
		cancels = append(cancels, c)
	}

	return cancel, nil
}

func (r *NatsRelay) listener(event link.Event) link.Listener {
	subject := r.Subject(event)
	return func(old, new link.Link, ec link.EventContext) {
		data, err := json.Marshal(&v1.WatchEvent{
			Event:  string(event),
			Old:    old,
			New:    new,
			UserId: ec.UserID,
		})
		if err != nil {
			logrus.Errorf("error encoding %s event: %v", event, err)
			return
		}

		if err := r.conn.Publish(subject, data); err != nil {
			logrus.Errorf("error publishing to %s: %v", subject, err)
		}
	}
}
