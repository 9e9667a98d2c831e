package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server message types
const (
	MsgTyping      MessageType = "typing"
	MsgStep        MessageType = "step"
	MsgError       MessageType = "error"
	MsgSessionOver MessageType = "session_over"
)

// Client command types
const (
	CmdAnswer = "answer"
	CmdBack   = "back"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Command is the client-to-server envelope
type Command struct {
	Type   string          `json:"type"`
	Answer json.RawMessage `json:"answer,omitempty"`
}

// Hub tracks the one live chat connection per member and survey.
type Hub struct {
	conns map[string]*Connection

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
}

// Connection represents one member's chat connection to one survey.
type Connection struct {
	SurveyID string
	MemberID string
	Send     chan []byte
	Hub      *Hub
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
	}
	go h.run()
	return h
}

func key(surveyID, memberID string) string {
	return surveyID + "/" + memberID
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			k := key(conn.SurveyID, conn.MemberID)
			if existing, ok := h.conns[k]; ok {
				// Single session model: a new connection replaces the old.
				close(existing.Send)
			}
			h.conns[k] = conn
			h.mu.Unlock()
			log.Printf("Member %s connected to survey %s", conn.MemberID, conn.SurveyID)

		case conn := <-h.unregister:
			h.mu.Lock()
			k := key(conn.SurveyID, conn.MemberID)
			if existing, ok := h.conns[k]; ok && existing == conn {
				delete(h.conns, k)
				close(conn.Send)
				log.Printf("Member %s disconnected from survey %s", conn.MemberID, conn.SurveyID)
			}
			h.mu.Unlock()
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

// SendTo delivers a typed message to a member's survey connection. The
// message is dropped when the buffer is full or the member is gone.
func (h *Hub) SendTo(surveyID, memberID string, msgType MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg, _ := json.Marshal(&Message{Type: msgType, Payload: data})

	h.mu.RLock()
	defer h.mu.RUnlock()
	if conn, ok := h.conns[key(surveyID, memberID)]; ok {
		select {
		case conn.Send <- msg:
		default:
		}
	}
}
