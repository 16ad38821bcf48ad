package handlers

import (
	"context"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// roomClient wraps a single participant's active WebSocket connection.
type roomClient struct {
	participantID uuid.UUID
	cancel        context.CancelFunc
	outChan       chan interface{}
}

// send queues a message for the client without blocking the caller. A
// full queue drops the message; the client recovers by requesting a
// snapshot, which always reflects current state.
func (c *roomClient) send(msg interface{}) {
	select {
	case c.outChan <- msg:
	default:
		log.Warnf("dropping message for participant %s: outbound queue full", c.participantID)
	}
}

// roomHub tracks the live connections of one room.
type roomHub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*roomClient
}

func newRoomHub() *roomHub {
	return &roomHub{clients: make(map[uuid.UUID]*roomClient)}
}

func (h *roomHub) add(c *roomClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.clients[c.participantID]; ok {
		// Stale connection for the same seat: cancel it and take over.
		prev.cancel()
	}
	h.clients[c.participantID] = c
}

func (h *roomHub) remove(c *roomClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.participantID]; ok && cur == c {
		delete(h.clients, c.participantID)
	}
}

// broadcast queues a message for every connected client.
func (h *roomHub) broadcast(msg interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		c.send(msg)
	}
}
