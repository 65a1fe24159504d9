package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// writeWait bounds a single websocket write.
	writeWait = 5 * time.Second
	// sendBuffer is how many events a client may fall behind before it is
	// dropped.
	sendBuffer = 32
)

type socketClient struct {
	conn *websocket.Conn
	send chan []byte
}

// writeLoop writes queued events until send is closed or a write fails.
func (c *socketClient) writeLoop(s *Sockets, id string) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Warn().Err(err).Str("client", id).Msg("dropping websocket client")
			s.drop(id, c)
			return
		}
	}
}

// Sockets forwards hub events to connected websocket clients as JSON.
type Sockets struct {
	mu      sync.RWMutex
	clients map[string]*socketClient
	sub     *Subscription
}

// NewSockets subscribes to every entity on hub and broadcasts each event.
func NewSockets(hub *Hub) *Sockets {
	s := &Sockets{clients: make(map[string]*socketClient)}
	s.sub = hub.Subscribe(AllEntities, s.forward)
	return s
}

func (s *Sockets) forward(e Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("entity", e.Entity).Msg("encoding change event")
		return
	}
	s.Broadcast(msg)
}

// Register adds a connection under a unique client ID and starts its
// writer.
func (s *Sockets) Register(id string, conn *websocket.Conn) {
	c := &socketClient{conn: conn, send: make(chan []byte, sendBuffer)}

	s.mu.Lock()
	if old, ok := s.clients[id]; ok {
		close(old.send)
	}
	s.clients[id] = c
	s.mu.Unlock()

	go c.writeLoop(s, id)
	log.Debug().Str("client", id).Msg("websocket client registered")
}

// Unregister removes a client and stops its writer. The caller closes the
// connection.
func (s *Sockets) Unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[id]; ok {
		delete(s.clients, id)
		close(c.send)
		log.Debug().Str("client", id).Msg("websocket client unregistered")
	}
}

// drop unregisters c if it is still registered under id and closes its
// connection.
func (s *Sockets) drop(id string, c *socketClient) {
	s.mu.Lock()
	if cur, ok := s.clients[id]; ok && cur == c {
		delete(s.clients, id)
		close(c.send)
	}
	s.mu.Unlock()
	c.conn.Close()
}

// Broadcast queues msg for every client without waiting on the network.
// Clients whose queue is full are dropped and closed.
func (s *Sockets) Broadcast(msg []byte) {
	var slow map[string]*socketClient

	s.mu.RLock()
	for id, c := range s.clients {
		select {
		case c.send <- msg:
		default:
			if slow == nil {
				slow = make(map[string]*socketClient)
			}
			slow[id] = c
		}
	}
	s.mu.RUnlock()

	for id, c := range slow {
		log.Warn().Str("client", id).Msg("websocket client too slow, dropping")
		s.drop(id, c)
	}
}

// Len returns the number of connected clients.
func (s *Sockets) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close stops forwarding events and disconnects all clients.
func (s *Sockets) Close() {
	s.sub.Unsubscribe()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		close(c.send)
		c.conn.Close()
		delete(s.clients, id)
	}
}
