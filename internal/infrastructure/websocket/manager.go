// Package websocket is the transport layer for realtime delivery. It
// moves frames between connections and the rest of the app and knows
// nothing about topics, records or read state.
package websocket

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer bounds how far a slow client can fall behind before we
	// drop the connection rather than the whole process.
	sendBuffer = 64
)

// Client represents one WebSocket connection.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	// OnMessage receives every text frame read from the connection.
	OnMessage func(data []byte)
	// OnClose runs exactly once when the read loop exits.
	OnClose func()

	closeOnce sync.Once
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
	}
}

// Manager manages all active WebSocket connections.
type Manager struct {
	clients    map[string]map[*Client]struct{}
	Register   chan *Client
	Unregister chan *Client
	broadcast  chan []byte
	mutex      sync.RWMutex
}

// NewManager creates a new WebSocket connection manager.
func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan []byte),
	}
}

// Start runs the manager's main loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if m.clients[client.UserID] == nil {
					m.clients[client.UserID] = make(map[*Client]struct{})
				}
				m.clients[client.UserID][client] = struct{}{}
				m.mutex.Unlock()
				log.Printf("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if conns, ok := m.clients[client.UserID]; ok {
					if _, ok := conns[client]; ok {
						delete(conns, client)
						close(client.Send)
						if len(conns) == 0 {
							delete(m.clients, client.UserID)
						}
					}
				}
				m.mutex.Unlock()
				log.Printf("Client unregistered: %s", client.UserID)

			case message := <-m.broadcast:
				m.mutex.RLock()
				for _, conns := range m.clients {
					for client := range conns {
						select {
						case client.Send <- message:
						default:
							// Slow consumer; the read loop will clean up.
						}
					}
				}
				m.mutex.RUnlock()

			case <-ctx.Done():
				return
			}
		}
	}()
}

// SendToUser sends a message to every connection a user has open.
func (m *Manager) SendToUser(userID string, message []byte) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for client := range m.clients[userID] {
		select {
		case client.Send <- message:
		default:
		}
	}
}

// Broadcast sends a message to every connected client.
func (m *Manager) Broadcast(message []byte) {
	m.broadcast <- message
}

// ConnectionCount returns the number of open connections.
func (m *Manager) ConnectionCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	n := 0
	for _, conns := range m.clients {
		n += len(conns)
	}
	return n
}

// ReadPump reads frames from the connection and hands them to OnMessage.
// It owns connection teardown: on exit the client is unregistered and
// OnClose fires.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		c.closeOnce.Do(func() {
			if c.OnClose != nil {
				c.OnClose()
			}
		})
		m.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error for %s: %v", c.UserID, err)
			}
			break
		}

		if c.OnMessage != nil {
			c.OnMessage(message)
		}
	}
}

// WritePump sends queued frames and keepalive pings to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error for %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
