// Package chatws serves the planning conversation over a websocket. A
// connection follows one session at a time and receives every update the
// session publishes: new turns, reveal ticks, busy changes, the export and
// the forecast.
package chatws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/travelbudgetfx/internal/dialogue"
	"github.com/ziadkadry99/travelbudgetfx/internal/trip"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades /ws/chat requests and drives the dialogue engine.
type Handler struct {
	engine *dialogue.Engine
}

// New creates a websocket chat handler.
func New(engine *dialogue.Engine) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/chat", h.handleWebSocket)
}

// clientFrame is the incoming message format.
type clientFrame struct {
	Type      string    `json:"type"` // "start", "join" or "message"
	SessionID string    `json:"session_id,omitempty"`
	Trip      *tripForm `json:"trip,omitempty"`
	Content   string    `json:"content,omitempty"`
}

type tripForm struct {
	Destination   string `json:"destination"`
	Duration      string `json:"duration"`
	Budget        string `json:"budget"`
	HomeCurrency  string `json:"home_currency"`
	DepartureDate string `json:"departure_date"`
}

// serverFrame is the outgoing message format.
type serverFrame struct {
	Type      string             `json:"type"` // "session", "update" or "error"
	SessionID string             `json:"session_id,omitempty"`
	Snapshot  *dialogue.Snapshot `json:"snapshot,omitempty"`
	Update    *dialogue.Update   `json:"update,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// conn is one websocket client. Only writeLoop writes to ws.
type conn struct {
	ws     *websocket.Conn
	engine *dialogue.Engine
	ctx    context.Context
	out    chan serverFrame
	done   chan struct{}

	mu          sync.Mutex
	sessionID   string
	unsubscribe func()
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("chatws: websocket upgrade: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &conn{
		ws:     ws,
		engine: h.engine,
		ctx:    ctx,
		out:    make(chan serverFrame, 16),
		done:   make(chan struct{}),
	}
	go c.writeLoop()

	defer func() {
		cancel()
		c.follow(nil)
		close(c.done)
		ws.Close()
	}()
	c.readLoop()
}

func (c *conn) readLoop() {
	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("chatws: websocket read: %v", err)
			}
			return
		}

		var f clientFrame
		if err := json.Unmarshal(msg, &f); err != nil {
			c.sendError("", "invalid message format")
			continue
		}

		switch f.Type {
		case "start":
			c.handleStart(f)
		case "join":
			c.handleJoin(f)
		case "message":
			c.handleMessage(f)
		default:
			c.sendError(f.SessionID, "unknown message type: "+f.Type)
		}
	}
}

func (c *conn) writeLoop() {
	for {
		select {
		case f := <-c.out:
			if err := c.ws.WriteJSON(f); err != nil {
				log.Printf("chatws: websocket write: %v", err)
				c.ws.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *conn) send(f serverFrame) {
	select {
	case c.out <- f:
	case <-c.done:
	}
}

func (c *conn) sendError(sessionID, msg string) {
	c.send(serverFrame{Type: "error", SessionID: sessionID, Error: msg})
}

// follow switches the connection to s, ending the previous subscription.
// A nil session just unsubscribes.
func (c *conn) follow(s *dialogue.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.sessionID = ""
	if s == nil {
		return
	}

	updates, cancel := s.Subscribe()
	c.unsubscribe = cancel
	c.sessionID = s.ID
	go func() {
		for u := range updates {
			u := u
			c.send(serverFrame{Type: "update", SessionID: u.SessionID, Update: &u})
		}
	}()
}

func (c *conn) current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *conn) handleStart(f clientFrame) {
	if f.Trip == nil {
		c.sendError("", "trip details are required")
		return
	}
	p, err := trip.Parse(f.Trip.Destination, f.Trip.Duration, f.Trip.Budget, f.Trip.HomeCurrency, f.Trip.DepartureDate)
	if err != nil {
		c.sendError("", err.Error())
		return
	}
	s, err := c.engine.Start(c.ctx, p)
	if err != nil {
		c.sendError("", "failed to start session: "+err.Error())
		return
	}
	c.attach(s)
}

func (c *conn) handleJoin(f clientFrame) {
	s, err := c.engine.Session(c.ctx, f.SessionID)
	if err != nil {
		c.sendError(f.SessionID, err.Error())
		return
	}
	c.attach(s)
}

func (c *conn) attach(s *dialogue.Session) {
	c.follow(s)
	snap := s.Snapshot()
	c.send(serverFrame{Type: "session", SessionID: s.ID, Snapshot: &snap})
}

// handleMessage sends in the background so reveal and forecast updates keep
// streaming while the chat request runs.
func (c *conn) handleMessage(f clientFrame) {
	id := f.SessionID
	if id == "" {
		id = c.current()
	}
	if id == "" {
		c.sendError("", "no active session: send a start or join frame first")
		return
	}

	go func() {
		_, err := c.engine.Send(c.ctx, id, f.Content)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		c.sendError(id, err.Error())
	}()
}
