package ws

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/solutions-systems/bolas-locas/internal/comm"
)

// Broker bridges the jackpot subject on NATS to the websocket hub.
type Broker struct {
	Conn *nats.Conn
	Hub  *Hub
}

func NewBroker(conn *nats.Conn, hub *Hub) *Broker {
	return &Broker{Conn: conn, Hub: hub}
}

// Subscribe starts consuming jackpot events and fanning them out to the
// connected clients.
func (b *Broker) Subscribe() (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(comm.SubjectJackpotEvents, b.handleMessage)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (b *Broker) handleMessage(msgNats *nats.Msg) {
	event := &comm.JackpotEvent{}
	if err := json.Unmarshal(msgNats.Data, event); err != nil {
		log.Errorf("Error %s", err)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	b.Hub.Broadcast(&comm.WSMessage{Type: "jackpot-update", Data: data})
}
