package service

import (
	"net/http"
	"time"

	"github.com/emrgen/linkgraph/internal/link"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WatchHandler streams link changes as JSON websocket messages. The event kind
// comes from the "event" query parameter, defaulting to link.
func WatchHandler(g link.Graph) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		event := r.URL.Query().Get("event")
		if event == "" {
			event = string(link.EventLink)
		}

		w, err := watch(g, event)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusBadRequest)
			return
		}
		defer w.cancel()

		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			// the upgrader already replied with an http error
			logrus.Errorf("websocket upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		logrus.Infof("watching %s events over websocket", event)

		// the reader notices when the client goes away
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				logrus.Infof("stopped watching %s events over websocket", event)
				return
			case <-w.overflow:
				logrus.Warnf("dropping %s websocket watcher: %v", event, ErrWatchOverflow)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, ErrWatchOverflow.Error()),
					time.Now().Add(writeWait))
				return
			case e := <-w.events:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(e); err != nil {
					logrus.Errorf("error writing %s event: %v", event, err)
					return
				}
			}
		}
	})
}
