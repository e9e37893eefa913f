// Package gateway terminates websocket connections and shuttles JSON
// envelopes between clients and table actors. A connection authenticates
// once, at upgrade time, via its session token; after that the table only
// ever sees the resolved user ID.
package gateway

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pokerhall/apps/server/internal/auth"
	"pokerhall/apps/server/internal/codec"
	"pokerhall/apps/server/internal/lobby"
	"pokerhall/apps/server/internal/table"
	"pokerhall/holdem"
)

const (
	readLimit     = 65536
	pongWait      = 60 * time.Second
	pingInterval  = 30 * time.Second
	writeDeadline = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict origins once a frontend domain exists
	},
}

// Connection is one authenticated websocket client.
type Connection struct {
	ID      string
	UserID  uint64
	Name    string
	Conn    *websocket.Conn
	Send    chan []byte
	Gateway *Gateway

	// Current game association.
	Table *table.Table
}

// Gateway owns all live connections.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	userConns   map[uint64]*Connection
	nextConnID  uint64

	lobby *lobby.Lobby
	auth  auth.Service
}

func New(lby *lobby.Lobby, authService auth.Service) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		userConns:   make(map[uint64]*Connection),
		lobby:       lby,
		auth:        authService,
	}
}

// HandleWebSocket upgrades the request and starts the pumps. The session
// token rides the query string; an unresolvable token closes the socket.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	token := r.URL.Query().Get("token")
	userID, username, ok := g.auth.ResolveSession(token)
	if !ok {
		log.Printf("[Gateway] Rejected connection with bad token")
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid session"),
			time.Now().Add(writeDeadline))
		conn.Close()
		return
	}

	g.mu.Lock()
	g.nextConnID++
	c := &Connection{
		ID:      fmt.Sprintf("conn_%d", g.nextConnID),
		UserID:  userID,
		Name:    username,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		Gateway: g,
	}
	if old := g.userConns[userID]; old != nil {
		// One connection per user; the newer one wins.
		close(old.Send)
		delete(g.connections, old.ID)
	}
	g.connections[c.ID] = c
	g.userConns[userID] = c
	total := len(g.connections)
	g.mu.Unlock()

	log.Printf("[Gateway] Client connected: %s user=%d (%s), total=%d", c.ID, userID, username, total)
	go c.readPump()
	go c.writePump()
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
		if c.Table != nil {
			_ = c.Table.SubmitEvent(table.Event{Type: table.EventLeave, UserID: c.UserID})
		}
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			break
		}
		if messageType == websocket.TextMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	env, err := codec.ParseClient(data)
	if err != nil {
		log.Printf("[Gateway] Bad message from user %d: %v", c.UserID, err)
		c.sendError(1, "invalid message format")
		return
	}

	switch env.Type {
	case codec.ClientJoin, codec.ClientSit:
		// Sit targets a specific game by ID; join quick-starts when no ID
		// is given. handleJoin covers both.
		c.handleJoin(env)
	case codec.ClientAction:
		c.handleAction(env)
	case codec.ClientLeave:
		if c.Table != nil {
			_ = c.Table.SubmitEvent(table.Event{Type: table.EventLeave, UserID: c.UserID})
			c.Table = nil
		}
	case codec.ClientBack:
		if c.Table != nil {
			_ = c.Table.SubmitEvent(table.Event{Type: table.EventBack, UserID: c.UserID})
		}
	case codec.ClientPing:
		// Liveness handled by ws ping/pong; nothing to do.
	}
}

func (c *Connection) handleJoin(env codec.ClientEnvelope) {
	var t *table.Table
	var err error
	if env.GameID != "" {
		t = c.Gateway.lobby.GetTable(env.GameID)
		if t == nil {
			c.sendError(2, "no such game")
			return
		}
	} else {
		t, err = c.Gateway.lobby.QuickStart(c.UserID, c.Gateway.broadcastToUser)
		if err != nil {
			c.sendError(2, err.Error())
			return
		}
	}

	name := env.Name
	if name == "" {
		name = c.Name
	}
	if err := t.SubmitEvent(table.Event{Type: table.EventJoin, UserID: c.UserID, Name: name}); err != nil {
		c.sendError(2, err.Error())
		return
	}
	c.Table = t
	log.Printf("[Gateway] User %d joined game %s", c.UserID, t.ID)
}

func (c *Connection) handleAction(env codec.ClientEnvelope) {
	if c.Table == nil {
		c.sendError(3, "not in a game")
		return
	}
	action, ok := holdem.ParseAction(env.Action)
	if !ok {
		c.sendError(3, fmt.Sprintf("unknown action %q", env.Action))
		return
	}
	err := c.Table.SubmitEvent(table.Event{
		Type:   table.EventAction,
		UserID: c.UserID,
		Action: action,
		Raise:  env.Raise,
	})
	if err != nil {
		log.Printf("[Gateway] Action rejected user=%d: %v", c.UserID, err)
	}
}

func (c *Connection) sendError(code int, msg string) {
	env := &codec.ServerEnvelope{
		TsMs:  time.Now().UnixMilli(),
		Type:  codec.MsgError,
		Error: &codec.ErrorNote{Code: code, Message: msg},
	}
	if c.Table != nil {
		env.GameID = c.Table.ID
	}
	data, err := codec.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connections, c.ID)
	if g.userConns[c.UserID] == c {
		delete(g.userConns, c.UserID)
	}
	log.Printf("[Gateway] Client disconnected: %s, total=%d", c.ID, len(g.connections))
}

// broadcastToUser is the send callback handed to table actors. It never
// blocks: a slow client just misses messages until the next full view.
func (g *Gateway) broadcastToUser(userID uint64, data []byte) {
	g.mu.RLock()
	c := g.userConns[userID]
	g.mu.RUnlock()
	if c == nil {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}
