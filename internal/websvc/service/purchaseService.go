package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/solutions-systems/bolas-locas/internal/comm"
	"github.com/solutions-systems/bolas-locas/internal/websvc/store"
)

// JackpotPublisher pushes committed jackpot updates to whoever listens (the
// websocket feed in this deployment). Best effort.
type JackpotPublisher interface {
	PublishJackpot(event comm.JackpotEvent) error
}

// Notifier sends a human-readable note to the operators. Fire and forget.
type Notifier interface {
	SendNotification(message string)
}

type PurchaseService struct {
	purchaseStore *store.PurchaseStore
	publisher     JackpotPublisher
	notifier      Notifier
}

func NewPurchaseService(purchaseStore *store.PurchaseStore, publisher JackpotPublisher, notifier Notifier) *PurchaseService {
	return &PurchaseService{
		purchaseStore: purchaseStore,
		publisher:     publisher,
		notifier:      notifier,
	}
}

// Buy runs the transactional purchase and, once committed, emits the jackpot
// event and the operator notification. Neither side channel can fail the
// purchase.
func (s *PurchaseService) Buy(ctx context.Context, userId int64, boardID, qty int) (*store.PurchaseResult, error) {
	res, err := s.purchaseStore.Buy(ctx, userId, boardID, qty)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := comm.JackpotEvent{
			BoardID:     res.BoardID,
			AccumUnits:  res.Jackpot.AccumUnits,
			AccumAmount: res.Jackpot.AccumAmount,
			WinnerPrize: res.Jackpot.WinnerPrize,
			Timestamp:   time.Now().Unix(),
		}
		if err := s.publisher.PublishJackpot(event); err != nil {
			log.Warnf("jackpot event not published for board %d: %v", res.BoardID, err)
		}
	}

	if s.notifier != nil {
		s.notifier.SendNotification(purchaseNote(userId, res))
	}

	return res, nil
}

func purchaseNote(userId int64, res *store.PurchaseResult) string {
	return fmt.Sprintf(
		"🛒 *COMPRA DE BOLITAS*\n\n"+
			"👤 *Jugador:* %d\n"+
			"🎲 *Tablero:* %d\n"+
			"🔮 *Bolitas:* %d\n"+
			"💵 *Costo:* %s\n"+
			"💰 *Acumulado:* %s",
		userId,
		res.BoardID,
		res.Units,
		res.Cost.StringFixed(0),
		res.Jackpot.AccumAmount.StringFixed(0),
	)
}
