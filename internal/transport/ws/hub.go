// Package ws fans task change events out to websocket subscribers.
package ws

import (
	"context"
	"encoding/json"

	"github.com/taskflow/backend/internal/domain"
	"github.com/taskflow/backend/internal/infrastructure/logger"
)

// TextMessage matches the websocket text frame opcode.
const TextMessage = 1

const (
	broadcastBuffer  = 256
	subscriberBuffer = 16
)

// Conn is the subset of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type subscriber struct {
	conn Conn
	send chan []byte
	// stopped is closed when the write pump has returned.
	stopped chan struct{}
}

// Hub owns the subscriber set on its own goroutine. A subscriber whose
// buffer is full is dropped rather than stalling the others.
type Hub struct {
	log        *logger.Logger
	register   chan *subscriber
	unregister chan *subscriber
	broadcast  chan []byte
	done       chan struct{}
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		log:        log,
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then closes every subscriber.
func (h *Hub) Run(ctx context.Context) {
	subscribers := make(map[*subscriber]struct{})
	defer close(h.done)

	drop := func(s *subscriber) {
		if _, ok := subscribers[s]; ok {
			delete(subscribers, s)
			close(s.send)
		}
	}

	for {
		select {
		case <-ctx.Done():
			for s := range subscribers {
				drop(s)
			}
			h.log.Infow("task_events_hub_stopped")
			return

		case s := <-h.register:
			subscribers[s] = struct{}{}
			go h.writePump(s)
			h.log.Infow("task_events_subscribed", "subscribers", len(subscribers))

		case s := <-h.unregister:
			drop(s)
			h.log.Infow("task_events_unsubscribed", "subscribers", len(subscribers))

		case msg := <-h.broadcast:
			for s := range subscribers {
				select {
				case s.send <- msg:
				default:
					h.log.Warnw("task_events_subscriber_dropped", "reason", "buffer_full")
					drop(s)
				}
			}
		}
	}
}

// Subscribe attaches conn to the feed. The returned function detaches it and
// must be called once the connection's read side ends. It returns only after
// the hub has stopped touching conn, so the caller may release it.
func (h *Hub) Subscribe(conn Conn) func() {
	s := &subscriber{
		conn:    conn,
		send:    make(chan []byte, subscriberBuffer),
		stopped: make(chan struct{}),
	}
	select {
	case h.register <- s:
	case <-h.done:
		_ = conn.Close()
		return func() {}
	}
	return func() {
		select {
		case h.unregister <- s:
		case <-h.done:
		}
		<-s.stopped
	}
}

// Publish implements ports.TaskEventPublisher. It never blocks the caller.
func (h *Hub) Publish(event domain.TaskEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Errorw("task_events_marshal_failed", "type", event.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		h.log.Warnw("task_events_broadcast_dropped", "type", event.Type, "id", event.Task.ID)
	}
}

func (h *Hub) writePump(s *subscriber) {
	defer close(s.stopped)
	for msg := range s.send {
		if err := s.conn.WriteMessage(TextMessage, msg); err != nil {
			h.log.Warnw("task_events_write_failed", "error", err)
			_ = s.conn.Close()
			// Closing ends the reader, which unsubscribes and closes send.
			for range s.send {
			}
			return
		}
	}
	_ = s.conn.Close()
}
