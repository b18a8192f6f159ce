package nats

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/solutions-systems/bolas-locas/internal/comm"
)

// Publisher emits jackpot events after every confirmed purchase.
type Publisher struct {
	nats *Nats
}

func NewPublisher(n *Nats) *Publisher {
	return &Publisher{nats: n}
}

func (p *Publisher) PublishJackpot(event comm.JackpotEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.nats.Conn.Publish(comm.SubjectJackpotEvents, payload); err != nil {
		log.Errorf("Error publishing to topic %s: %s", comm.SubjectJackpotEvents, err)
		return err
	}

	return nil
}
