package ws

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"gobag/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub        *Hub
	authSvc    *service.AuthService
	aggSvc     *service.AggregationService
	sessionSvc *service.SessionService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, aggSvc *service.AggregationService, sessionSvc *service.SessionService) *Handler {
	return &Handler{
		hub:        hub,
		authSvc:    authSvc,
		aggSvc:     aggSvc,
		sessionSvc: sessionSvc,
	}
}

// DashboardWS handles GET /v1/ws/sessions/{id}/dashboard. Each connection
// starts a live aggregation watcher that is torn down with the socket.
func (h *Handler) DashboardWS(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateFacilitatorToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	watcher, err := h.aggSvc.WatchSession(context.Background(), sessionID)
	if err != nil {
		if err == service.ErrSessionNotFound {
			http.Error(w, "session not found", http.StatusNotFound)
		} else {
			http.Error(w, "failed to watch session", http.StatusInternalServerError)
		}
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		watcher.Stop()
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		SessionID:   sessionID,
		IsDashboard: true,
		Send:        make(chan []byte, 256),
		Hub:         h.hub,
	}

	h.hub.Register(conn)

	log.Printf("Facilitator %s watching session %s via WebSocket", claims.FacilitatorID, sessionID)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn, watcher)
}

// TeamWS handles GET /v1/ws/sessions/{id}/teams/{teamId}. Knowing the team's
// access code is what got the member here; no further credential is needed,
// matching the join flow.
func (h *Handler) TeamWS(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]
	teamID := vars["teamId"]

	team, err := h.sessionSvc.GetTeam(r.Context(), teamID)
	if err != nil {
		http.Error(w, "failed to load team", http.StatusInternalServerError)
		return
	}
	if team == nil || team.SessionID != sessionID {
		http.Error(w, "team not found", http.StatusNotFound)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		SessionID: sessionID,
		TeamID:    teamID,
		Send:      make(chan []byte, 256),
		Hub:       h.hub,
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn, nil)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection, watcher *service.Watcher) {
	defer func() {
		if watcher != nil {
			watcher.Stop()
		}
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		// We don't process incoming messages for now
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
