// Package ws streams snapshots to websocket clients.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
)

const EventSnapshot = "snapshot"

type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub fans snapshots out to connected clients. Slow clients are dropped
// rather than holding up the broadcast.
type Hub struct {
	clients map[*Client]bool
	count   atomic.Int64

	register   chan *Client
	unregister chan *Client
	events     chan []byte
	done       chan struct{}

	log logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),

		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		events:     make(chan []byte, 256),
		done:       make(chan struct{}),

		log: log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.log.Info("ws: hub shutting down", "clients", len(h.clients))
			for c := range h.clients {
				h.remove(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.count.Store(int64(len(h.clients)))
			h.log.Info("ws: client registered", "id", c.ID, "total_clients", len(h.clients))

		case c := <-h.unregister:
			if h.clients[c] {
				h.remove(c)
				h.log.Info("ws: client unregistered", "id", c.ID, "total_clients", len(h.clients))
			}

		case msg := <-h.events:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.log.Warn("ws: client channel full, force unregister", "id", c.ID)
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int64(len(h.clients)))
}

func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Write queues s for broadcast. A full queue drops the snapshot.
func (h *Hub) Write(_ context.Context, s domain.Snapshot) error {
	msg, err := json.Marshal(Event{Event: EventSnapshot, Data: s})
	if err != nil {
		return fmt.Errorf("encode snapshot event: %w", err)
	}

	select {
	case h.events <- msg:
	default:
		h.log.Warn("ws: broadcast buffer full, dropping snapshot")
	}
	return nil
}
