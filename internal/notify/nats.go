package notify

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// SubjectPrefix prefixes the NATS subject of every change event.
const SubjectPrefix = "kns.changes."

// Subject returns the NATS subject for changes to entity.
func Subject(entity string) string {
	return SubjectPrefix + entity
}

// Publisher is the subset of *nats.Conn the bridge needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSBridge republishes hub events on NATS so other processes can follow
// changes.
type NATSBridge struct {
	pub  Publisher
	conn *nats.Conn
	sub  *Subscription
}

// ConnectNATS connects to a NATS server and starts bridging hub events.
func ConnectNATS(url string, hub *Hub) (*NATSBridge, error) {
	nc, err := nats.Connect(url,
		nats.Name("kns"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	b := NewBridge(nc, hub)
	b.conn = nc
	return b, nil
}

// NewBridge forwards hub events to pub.
func NewBridge(pub Publisher, hub *Hub) *NATSBridge {
	b := &NATSBridge{pub: pub}
	b.sub = hub.Subscribe(AllEntities, b.forward)
	return b
}

func (b *NATSBridge) forward(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("entity", e.Entity).Msg("encoding change event")
		return
	}
	if err := b.pub.Publish(Subject(e.Entity), data); err != nil {
		log.Warn().Err(err).Str("entity", e.Entity).Msg("publishing change event to nats")
	}
}

// Close stops bridging and drains the connection, if the bridge owns one.
func (b *NATSBridge) Close() error {
	b.sub.Unsubscribe()
	if b.conn != nil {
		return b.conn.Drain()
	}
	return nil
}
