package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection represents one client subscribed to a session's events
type Connection struct {
	SessionID string
	Send      chan []byte
}

type event struct {
	sessionID string
	message   *Message
}

// Hub fans session events out to subscribed WebSocket connections. A
// session may have several subscribers (e.g. a reconnecting tab); a
// slow subscriber drops messages rather than blocking the engine.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*Connection]struct{}

	register   chan *Connection
	unregister chan *Connection
	events     chan *event
}

// NewHub creates a new hub and starts its dispatch loop
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		events:     make(chan *event, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.SessionID] == nil {
				h.conns[conn.SessionID] = make(map[*Connection]struct{})
			}
			h.conns[conn.SessionID][conn] = struct{}{}
			h.mu.Unlock()
			log.Printf("[WS] Subscriber joined session %s", conn.SessionID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.conns[conn.SessionID]; ok {
				if _, ok := subs[conn]; ok {
					delete(subs, conn)
					close(conn.Send)
					if len(subs) == 0 {
						delete(h.conns, conn.SessionID)
					}
					log.Printf("[WS] Subscriber left session %s", conn.SessionID)
				}
			}
			h.mu.Unlock()

		case ev := <-h.events:
			h.mu.RLock()
			data, _ := json.Marshal(ev.message)
			for conn := range h.conns[ev.sessionID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// SessionEvent pushes an engine event to the session's subscribers
// (implements session.EventSink)
func (h *Hub) SessionEvent(sessionID string, eventType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.events <- &event{
		sessionID: sessionID,
		message: &Message{
			Type:    eventType,
			Payload: data,
		},
	}
}
