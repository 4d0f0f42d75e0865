/* hub.go
 * Contains the websocket clients that stream bracket views. Each client subscribes to the session of one event: views
 * published by the session are written to the socket and renderer events read from the socket are dispatched to it.
 * The hub keeps track of the clients of each event
 * Authors: Zachary Bower
 */

package web

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"pickleball-brackets/api/session"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Message is the envelope of everything written to a websocket. Type is "view" or "error"
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client is one websocket connection watching an event
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	event       string
	session     *session.Session
	views       <-chan session.View
	unsubscribe func()
	errs        chan string
}

// Hub maintains the set of connected clients grouped by event
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[c.event]; !ok {
		h.rooms[c.event] = make(map[*Client]bool)
	}
	h.rooms[c.event][c] = true
	log.Printf("websocket client registered to event %s, %d watching", c.event, len(h.rooms[c.event]))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.event]
	if !ok || !room[c] {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.event)
	}
	log.Printf("websocket client unregistered from event %s, %d watching", c.event, len(room))
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, room := range h.rooms {
		n += len(room)
	}
	return n
}

// CountEvent returns the number of clients watching an event
func (h *Hub) CountEvent(event string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[event])
}

// CloseAll disconnects every client, used on shutdown
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, room := range h.rooms {
		for c := range room {
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(writeWait))
			c.conn.Close()
		}
	}
}

// serveWs handles GET /events/{name}/ws
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	event := chi.URLParam(r, "name")
	sess, err := s.api.Session(r.Context(), event)
	if err != nil {
		errorResponse(w, err)
		return
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the http error
		log.Printf("failed to upgrade connection for event %s: %v", event, err)
		return
	}

	views, unsubscribe := sess.Subscribe()
	c := &Client{
		hub:         s.hub,
		conn:        conn,
		event:       event,
		session:     sess,
		views:       views,
		unsubscribe: unsubscribe,
		errs:        make(chan string, 8),
	}
	s.hub.register(c)

	go c.writePump()
	go c.readPump()
}

// Helper function to build the upgrader, accepting the same origins as the cors middleware
func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range s.origins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
}

// readPump dispatches renderer events sent by the client until the connection closes
func (c *Client) readPump() {
	defer func() {
		c.unsubscribe()
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error for event %s: %v", c.event, err)
			}
			return
		}

		var e session.Event
		if err := json.Unmarshal(data, &e); err != nil {
			c.reportError("message is not a valid event")
			continue
		}
		if err := c.session.Dispatch(e); err != nil {
			c.reportError(err.Error())
		}
	}
}

// writePump writes published views and errors to the connection and keeps it alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case view, ok := <-c.views:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(Message{Type: "view", Payload: view}); err != nil {
				log.Printf("failed to write view for event %s: %v", c.event, err)
				return
			}
		case msg := <-c.errs:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(Message{Type: "error", Payload: msg}); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Helper function to queue an error for the client. Errors are dropped if the client is not keeping up
func (c *Client) reportError(msg string) {
	select {
	case c.errs <- msg:
	default:
	}
}
