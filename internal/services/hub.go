package services

import (
	"context"
	"sync"
	"time"

	"astro-admin-go/internal/store"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const hubWriteTimeout = 5 * time.Second

// StateHub fans store events out to websocket clients. Publish never
// blocks the store; events are dropped when the buffer is full.
type StateHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	ch      chan store.Event
	log     logrus.FieldLogger
}

func NewStateHub(log logrus.FieldLogger) *StateHub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StateHub{
		clients: map[*websocket.Conn]bool{},
		ch:      make(chan store.Event, 64),
		log:     log,
	}
}

// Attach subscribes the hub to st and returns the unsubscribe func.
func (h *StateHub) Attach(st *store.Store) func() {
	return st.Subscribe(h.Publish)
}

func (h *StateHub) Run(ctx context.Context) {
	for {
		select {
		case event := <-h.ch:
			h.broadcast(event)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *StateHub) Publish(event store.Event) {
	select {
	case h.ch <- event:
	default:
		h.log.WithField("event", event.Type()).Debug("state hub buffer full, dropping event")
	}
}

func (h *StateHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *StateHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *StateHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *StateHub) broadcast(event store.Event) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(hubWriteTimeout))
		if err := conn.WriteJSON(event); err != nil {
			h.log.WithField("error", err).Debug("dropping websocket client")
			h.Remove(conn)
			_ = conn.Close()
		}
	}
}

func (h *StateHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}
