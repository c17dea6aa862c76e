package socket

import (
	"context"
	"encoding/json"
	"sync"

	"notepost/pkg/logger"
	"notepost/store"

	"github.com/gorilla/websocket"
)

const (
	EntryAddedType   = "ENTRY_ADDED"   // An entry was committed
	EntryDeletedType = "ENTRY_DELETED" // An entry was removed

	broadcastBuffer = 64
	sendBuffer      = 16
)

// Event is pushed to every connected viewer.
type Event struct {
	Type  string      `json:"type"`
	Entry store.Entry `json:"entry"`
}

// Hub fans entry events out to the viewers connected to the feed.
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan Event
	Register   chan *Client
	Unregister chan *Client

	mu   sync.Mutex
	done chan struct{}
}

// Client is one viewer's websocket.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan Event, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, after
// closing every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		for client := range h.Clients {
			delete(h.Clients, client)
			close(client.Send)
		}
		h.mu.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client] = true
			n := len(h.Clients)
			h.mu.Unlock()
			logger.Sugar.Debugf("Feed viewer joined (%d connected)", n)

		case client := <-h.Unregister:
			h.remove(client)

		case ev := <-h.Broadcast:
			payload, err := json.Marshal(ev)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling feed event: %v", err)
				continue
			}

			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Clients))
			for client := range h.Clients {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// A lagging viewer must not block the hub.
					logger.Sugar.Warn("Feed viewer's send buffer is full. Dropping.")
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.Clients[client]; ok {
		delete(h.Clients, client)
		close(client.Send)
	}
}

// Publish queues an event without blocking the caller. Events are dropped
// when the hub has stopped or its buffer is full.
func (h *Hub) Publish(ev Event) {
	select {
	case <-h.done:
	case h.Broadcast <- ev:
	default:
		logger.Sugar.Warnf("Feed buffer full, dropping %s event", ev.Type)
	}
}

// Count reports the number of connected viewers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Clients)
}

func (h *Hub) register(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}
