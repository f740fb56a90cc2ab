package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Dashboard message types
const (
	MsgResultsUpdate MessageType = "results_update"
)

// Team message types
const (
	MsgSelectionUpdate MessageType = "selection_update"
	MsgTeamSubmitted   MessageType = "team_submitted"
	MsgError           MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections: facilitator dashboards per session and
// team members per team. Multiple connections may share a scope (several
// members of one team, a dashboard open on two screens).
type Hub struct {
	dashboardConns map[string]map[*Connection]bool            // sessionID -> conns
	teamConns      map[string]map[string]map[*Connection]bool // sessionID -> teamID -> conns

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	SessionID   string
	TeamID      string // Empty for dashboard connections
	IsDashboard bool
	Send        chan []byte
	Hub         *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	SessionID   string
	ToDashboard bool
	ToTeam      string
	Message     *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		dashboardConns: make(map[string]map[*Connection]bool),
		teamConns:      make(map[string]map[string]map[*Connection]bool),
		register:       make(chan *Connection),
		unregister:     make(chan *Connection),
		broadcast:      make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsDashboard {
				if h.dashboardConns[conn.SessionID] == nil {
					h.dashboardConns[conn.SessionID] = make(map[*Connection]bool)
				}
				h.dashboardConns[conn.SessionID][conn] = true
				log.Printf("Dashboard connected to session %s", conn.SessionID)
			} else {
				if h.teamConns[conn.SessionID] == nil {
					h.teamConns[conn.SessionID] = make(map[string]map[*Connection]bool)
				}
				if h.teamConns[conn.SessionID][conn.TeamID] == nil {
					h.teamConns[conn.SessionID][conn.TeamID] = make(map[*Connection]bool)
				}
				h.teamConns[conn.SessionID][conn.TeamID][conn] = true
				log.Printf("Team %s member connected in session %s", conn.TeamID, conn.SessionID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conn.IsDashboard {
				if conns, ok := h.dashboardConns[conn.SessionID]; ok && conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.dashboardConns, conn.SessionID)
					}
					log.Printf("Dashboard disconnected from session %s", conn.SessionID)
				}
			} else {
				if teams, ok := h.teamConns[conn.SessionID]; ok {
					if conns, ok := teams[conn.TeamID]; ok && conns[conn] {
						delete(conns, conn)
						close(conn.Send)
						if len(conns) == 0 {
							delete(teams, conn.TeamID)
						}
						if len(teams) == 0 {
							delete(h.teamConns, conn.SessionID)
						}
						log.Printf("Team %s member disconnected from session %s", conn.TeamID, conn.SessionID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			if msg.ToDashboard {
				for conn := range h.dashboardConns[msg.SessionID] {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			} else if msg.ToTeam != "" {
				if teams, ok := h.teamConns[msg.SessionID]; ok {
					for conn := range teams[msg.ToTeam] {
						select {
						case conn.Send <- data:
						default:
						}
					}
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

// BroadcastToDashboard sends a message to the session's dashboard
// connections (implements service.Broadcaster)
func (h *Hub) BroadcastToDashboard(sessionID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		SessionID:   sessionID,
		ToDashboard: true,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastToTeam sends a message to every member of one team (implements
// service.Broadcaster)
func (h *Hub) BroadcastToTeam(sessionID, teamID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		ToTeam:    teamID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
