package main

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Conn manages a single WebSocket player session
type Conn struct {
	ID     string
	ws     *websocket.Conn
	codec  Codec
	mu     sync.Mutex // protects ws writes and closed
	closed bool
}

// NewConn creates a new connection wrapper
func NewConn(ws *websocket.Conn, codec Codec) *Conn {
	return &Conn{
		ID:    uuid.New().String(),
		ws:    ws,
		codec: codec,
	}
}

// Send encodes msg with the connection's codec and writes it to the WebSocket
func (c *Conn) Send(msg any) error {
	data, err := c.codec.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(c.codec.FrameType(), data)
}

// Close marks connection closed
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.ws.Close()
}

// ReadLoop handles incoming messages for a connection until it disconnects.
// onMessage runs on the read goroutine; onDisconnect is called once when the
// connection closes.
func (c *Conn) ReadLoop(onMessage func(ClientMessage), onDisconnect func(conn *Conn)) {
	defer func() {
		onDisconnect(c)
		c.Close()
	}()

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read error for %s: %v", c.ID, err)
			}
			return
		}

		var msg ClientMessage
		if err := c.codec.Unmarshal(raw, &msg); err != nil {
			log.Printf("bad message from %s: %v", c.ID, err)
			continue
		}
		onMessage(msg)
	}
}

// sendErrorAndClose sends an error message then closes the connection
func sendErrorAndClose(ws *websocket.Conn, codec Codec, msg string) {
	data, _ := codec.Marshal(ErrorMsg{Type: MsgError, Message: msg})
	_ = ws.WriteMessage(codec.FrameType(), data)
	ws.Close()
}

// ConnManager manages all active connections
type ConnManager struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

// NewConnManager creates an empty connection manager
func NewConnManager() *ConnManager {
	return &ConnManager{conns: make(map[string]*Conn)}
}

// Add registers a connection
func (m *ConnManager) Add(c *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[c.ID] = c
}

// Remove unregisters a connection
func (m *ConnManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, id)
}

// Count returns the number of active connections
func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// CloseAll closes every registered connection, ending their read loops
func (m *ConnManager) CloseAll() {
	m.mu.RLock()
	list := make([]*Conn, 0, len(m.conns))
	for _, c := range m.conns {
		list = append(list, c)
	}
	m.mu.RUnlock()

	for _, c := range list {
		c.Close()
	}
}
