// Package stream pushes render snapshots to connected map clients over
// WebSocket. Each agent may have any number of subscribers (the agent's own
// device, an admin dashboard); every stored snapshot is fanned out to all of
// them.
package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"dispatchmap/internal/domain/entities"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 1024
	sendBuffer     = 4
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type subscriber struct {
	send chan []byte
}

// Hub tracks subscribers per agent.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
	logger      *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[*subscriber]struct{}),
		logger:      logger,
	}
}

// Publish sends the snapshot to every subscriber of its agent. Slow
// subscribers lose their oldest pending snapshot rather than the newest.
func (h *Hub) Publish(snapshot *entities.Snapshot) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		h.logger.Error("marshal snapshot", zap.String("agent_id", snapshot.AgentID), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[snapshot.AgentID] {
		sub.offer(payload)
	}
}

func (s *subscriber) offer(payload []byte) {
	select {
	case s.send <- payload:
		return
	default:
	}
	select {
	case <-s.send:
	default:
	}
	select {
	case s.send <- payload:
	default:
	}
}

// SubscriberCount returns the number of live connections for agentID.
func (h *Hub) SubscriberCount(agentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[agentID])
}

func (h *Hub) register(agentID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.subscribers[agentID]; !exists {
		h.subscribers[agentID] = make(map[*subscriber]struct{})
	}
	h.subscribers[agentID][sub] = struct{}{}
}

func (h *Hub) unregister(agentID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, exists := h.subscribers[agentID]; exists {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subscribers, agentID)
		}
	}
}

// Serve upgrades the request and streams agentID's snapshots until the
// client disconnects. initial, when non-nil, is sent first so a new
// subscriber does not wait for the next pass.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, agentID string, initial *entities.Snapshot) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := &subscriber{send: make(chan []byte, sendBuffer)}
	h.register(agentID, sub)
	defer h.unregister(agentID, sub)

	if initial != nil {
		if payload, err := json.Marshal(initial); err == nil {
			sub.offer(payload)
		}
	}

	// The read loop only exists to process pongs and notice the close frame.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxMessageSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	h.logger.Debug("stream subscriber connected", zap.String("agent_id", agentID))
	defer h.logger.Debug("stream subscriber disconnected", zap.String("agent_id", agentID))

	for {
		select {
		case payload := <-sub.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return nil
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-closed:
			return nil
		}
	}
}
