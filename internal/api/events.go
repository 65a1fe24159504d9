package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/erazemk/kns/internal/notify"
)

// pongWait is how long a client may stay silent before it is dropped.
const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventsHandler streams record changes over a websocket.
type EventsHandler struct {
	Sockets *notify.Sockets
}

// Serve handles GET /api/events. Browsers pass the token as a query
// parameter since they cannot set headers on websocket requests.
func (h *EventsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("upgrading websocket")
		return
	}

	clientID := actorID(r.Context()) + "/" + uuid.NewString()
	h.Sockets.Register(clientID, conn)
	defer func() {
		h.Sockets.Unregister(clientID)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Clients only send keepalives; the read loop ends when they disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client", clientID).Msg("websocket closed unexpectedly")
			}
			return
		}
	}
}
