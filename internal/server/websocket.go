package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"sketch-guess/internal/game"
	"sketch-guess/internal/surface"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const wsWriteTimeout = 5 * time.Second

type wsMessage struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// wsCommand is an inbound message. Pointer fields are only set for
// type "pointer".
type wsCommand struct {
	Type string           `json:"type"`
	Kind game.PointerKind `json:"kind"`
	Prev surface.Point    `json:"prev"`
	Cur  surface.Point    `json:"cur"`
}

// wsClient serializes writes; gorilla connections allow one writer at a time.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*wsClient]struct{}
	log    zerolog.Logger
}

func newWSHub(log zerolog.Logger) *wsHub {
	return &wsHub{
		groups: make(map[string]map[*wsClient]struct{}),
		log:    log,
	}
}

func (h *wsHub) Add(sessionID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[sessionID]
	if group == nil {
		group = make(map[*wsClient]struct{})
		h.groups[sessionID] = group
	}
	group[client] = struct{}{}
}

func (h *wsHub) Remove(sessionID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = client.conn.Close()
	group := h.groups[sessionID]
	if group == nil {
		return
	}
	delete(group, client)
	if len(group) == 0 {
		delete(h.groups, sessionID)
	}
}

// Connected reports whether the session has any clients.
func (h *wsHub) Connected(sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[sessionID]) > 0
}

// CloseGroup disconnects every client of a session.
func (h *wsHub) CloseGroup(sessionID string) {
	h.mu.Lock()
	group := h.groups[sessionID]
	delete(h.groups, sessionID)
	h.mu.Unlock()
	for client := range group {
		_ = client.conn.Close()
	}
}

func (h *wsHub) Send(client *wsClient, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = client.write(data)
}

func (h *wsHub) Broadcast(sessionID string, payload any) {
	h.mu.Lock()
	group := h.groups[sessionID]
	clients := make([]*wsClient, 0, len(group))
	for client := range group {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, client := range clients {
		if err := client.write(data); err != nil {
			h.log.Debug().Err(err).Str("session_id", sessionID).Msg("ws write failed")
			h.Remove(sessionID, client)
		}
	}
}

// sinks fans a session's UI updates out to its websocket clients.
func (h *wsHub) sinks(sessionID string) game.Sinks {
	send := func(kind string, value any) {
		h.Broadcast(sessionID, wsMessage{Type: kind, Value: value})
	}
	return game.Sinks{
		Label:      func(text string) { send("label", text) },
		Confidence: func(text string) { send("confidence", text) },
		Score:      func(score int) { send("score", score) },
		TargetWord: func(word string) { send("target_word", word) },
		Overlay:    func(visible bool) { send("overlay", visible) },
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	session, ok := s.store.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &wsClient{conn: conn}
	s.log.Info().Str("session_id", id).Str("remote", r.RemoteAddr).Msg("ws connected")
	s.ws.Add(id, client)
	s.ws.Send(client, wsMessage{Type: "snapshot", Value: session.Snapshot()})
	go s.readWS(id, session, client)
}

func (s *Server) readWS(id string, session *game.Session, client *wsClient) {
	defer func() {
		s.ws.Remove(id, client)
		if !s.ws.Connected(id) {
			s.closeSession(id)
		}
	}()
	limiter := rate.NewLimiter(rate.Limit(s.cfg.WSMessagesPerSecond), s.cfg.WSBurst)
	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			s.log.Info().Str("session_id", id).Err(err).Msg("ws disconnected")
			return
		}
		if !limiter.Allow() {
			s.ws.Send(client, wsMessage{Type: "error", Value: "rate limited"})
			continue
		}
		var cmd wsCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.ws.Send(client, wsMessage{Type: "error", Value: "invalid message"})
			continue
		}
		if err := s.applyCommand(id, session, client, cmd); err != nil {
			s.ws.Send(client, wsMessage{Type: "error", Value: err.Error()})
		}
	}
}

func (s *Server) applyCommand(id string, session *game.Session, client *wsClient, cmd wsCommand) error {
	switch cmd.Type {
	case "pointer":
		return session.Pointer(game.PointerEvent{Kind: cmd.Kind, Prev: cmd.Prev, Cur: cmd.Cur})
	case "clear":
		s.clear(id, session)
	case "skip":
		session.Skip()
	case "snapshot":
		s.ws.Send(client, wsMessage{Type: "snapshot", Value: session.Snapshot()})
	default:
		return errUnknownCommand
	}
	return nil
}
