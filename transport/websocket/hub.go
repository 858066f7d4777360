package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/finesse/game/engine"
)

// Event names carried in Message.Event
const (
	EventBoardUpdate = "board_update"
	EventSolve       = "solve"
	EventLock        = "lock"
	EventLineClear   = "line_clear"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Viewers never send anything larger than a control frame
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is one frame pushed to a viewer. Seq increases by one per message
// within a session, so a viewer can tell when frames were dropped.
type Message struct {
	SessionID string             `json:"session_id"`
	Seq       uint64             `json:"seq"`
	Event     string             `json:"event,omitempty"`
	State     *engine.FieldState `json:"state,omitempty"`
	Data      interface{}        `json:"data,omitempty"`
}

// Client is one connected viewer of a session
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// room is the per-session viewer set. It outlives its viewers so the last
// board can be replayed to whoever connects next.
type room struct {
	clients map[*Client]struct{}
	seq     uint64
	board   []byte
}

type countQuery struct {
	sessionID string
	reply     chan int
}

// Hub fans session events out to websocket viewers. rooms is owned by the
// Run goroutine; every other method talks to it over channels.
type Hub struct {
	rooms map[string]*room

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	forget     chan string
	count      chan countQuery

	done chan struct{}
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]*room),
		broadcast:  make(chan *Message, engine.WebSocketBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		forget:     make(chan string),
		count:      make(chan countQuery),
		done:       make(chan struct{}),
	}
}

// Run serves hub requests until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.join(client)
		case client := <-h.unregister:
			h.leave(client)
		case message := <-h.broadcast:
			h.deliver(message)
		case sessionID := <-h.forget:
			h.drop(sessionID)
		case q := <-h.count:
			q.reply <- h.viewers(q.sessionID)
		case <-h.done:
			for sessionID := range h.rooms {
				h.drop(sessionID)
			}
			return
		}
	}
}

// Stop ends Run and disconnects every viewer. It is safe to call twice.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// ClientCount reports how many viewers watch a session, or 0 once stopped
func (h *Hub) ClientCount(sessionID string) int {
	q := countQuery{sessionID: sessionID, reply: make(chan int, 1)}
	select {
	case h.count <- q:
		return <-q.reply
	case <-h.done:
		return 0
	}
}

// Forget disconnects a session's viewers and discards its replay board.
// Call it when the session is deleted.
func (h *Hub) Forget(sessionID string) {
	select {
	case h.forget <- sessionID:
	case <-h.done:
	}
}

// ServeWS upgrades the request and attaches the connection to sessionID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, engine.WebSocketBufferSize),
		sessionID: sessionID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastToSession pushes the current board of a session
func (h *Hub) BroadcastToSession(sessionID string, state *engine.FieldState) {
	h.publish(&Message{SessionID: sessionID, Event: EventBoardUpdate, State: state})
}

// BroadcastEvent pushes an arbitrary event payload to a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.publish(&Message{SessionID: sessionID, Event: event, Data: data})
}

// publish never blocks the caller: with the queue full the message is
// dropped and viewers see a gap in Seq.
func (h *Hub) publish(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		log.Printf("WebSocket queue full, dropping %s for session %s", message.Event, message.SessionID)
	}
}

func (h *Hub) room(sessionID string) *room {
	rm, ok := h.rooms[sessionID]
	if !ok {
		rm = &room{clients: make(map[*Client]struct{})}
		h.rooms[sessionID] = rm
	}
	return rm
}

func (h *Hub) viewers(sessionID string) int {
	if rm, ok := h.rooms[sessionID]; ok {
		return len(rm.clients)
	}
	return 0
}

// join adds a viewer and replays the last board it missed
func (h *Hub) join(client *Client) {
	rm := h.room(client.sessionID)
	rm.clients[client] = struct{}{}
	if rm.board != nil {
		client.send <- rm.board
	}
	log.Printf("Viewer joined session %s (%d watching)", client.sessionID, len(rm.clients))
}

func (h *Hub) leave(client *Client) {
	rm, ok := h.rooms[client.sessionID]
	if !ok {
		return
	}
	if _, ok := rm.clients[client]; !ok {
		return
	}
	delete(rm.clients, client)
	close(client.send)
	if len(rm.clients) == 0 && rm.board == nil {
		delete(h.rooms, client.sessionID)
	}
	log.Printf("Viewer left session %s (%d watching)", client.sessionID, len(rm.clients))
}

func (h *Hub) drop(sessionID string) {
	rm, ok := h.rooms[sessionID]
	if !ok {
		return
	}
	for client := range rm.clients {
		close(client.send)
	}
	delete(h.rooms, sessionID)
}

// deliver stamps the message with the session's next Seq and queues it for
// every viewer. A viewer whose queue is full is disconnected.
func (h *Hub) deliver(message *Message) {
	rm := h.room(message.SessionID)
	rm.seq++
	message.Seq = rm.seq

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to encode %s for session %s: %v", message.Event, message.SessionID, err)
		return
	}
	if message.Event == EventBoardUpdate {
		rm.board = data
	}

	for client := range rm.clients {
		select {
		case client.send <- data:
		default:
			h.leave(client)
		}
	}
}

// readPump only drains control frames; it ends the client when the peer
// goes away or stops answering pings.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error on session %s: %v", c.sessionID, err)
			}
			return
		}
	}
}

// writePump sends each queued message as its own text frame, so every frame
// is one JSON document.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
