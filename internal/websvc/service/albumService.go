package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/solutions-systems/bolas-locas/internal/payment"
	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
	"github.com/solutions-systems/bolas-locas/internal/websvc/store"
)

// ErrAlbumNotAvailable signals a purchase attempt against a missing or
// inactive album.
var ErrAlbumNotAvailable = errors.New("album does not exist or is not active")

// PaymentGateway requests a hosted payment link for an amount and reference.
type PaymentGateway interface {
	CreatePaymentLink(ctx context.Context, req payment.LinkRequest) (string, error)
}

type AlbumService struct {
	albumStore *store.AlbumStore
	gateway    PaymentGateway
	notifier   Notifier
}

func NewAlbumService(albumStore *store.AlbumStore, gateway PaymentGateway, notifier Notifier) *AlbumService {
	return &AlbumService{albumStore: albumStore, gateway: gateway, notifier: notifier}
}

func (s *AlbumService) ListActive(ctx context.Context) ([]*models.Album, error) {
	return s.albumStore.ListActive(ctx)
}

// StartPurchase records a pending compras_albumes row and asks the gateway
// for a payment link, using the new row's id as the payment reference. The
// pending row stays behind if the gateway call fails; the callback never
// arrives for it and it simply remains pendiente.
func (s *AlbumService) StartPurchase(ctx context.Context, userId int64, albumID int) (string, error) {
	album, err := s.albumStore.GetActiveByID(ctx, albumID)
	if err != nil {
		return "", err
	}
	if album == nil {
		return "", ErrAlbumNotAvailable
	}

	purchaseID, err := s.albumStore.CreatePendingPurchase(ctx, userId, albumID)
	if err != nil {
		return "", err
	}

	url, err := s.gateway.CreatePaymentLink(ctx, payment.LinkRequest{
		Amount:      album.Price,
		Currency:    "COP",
		Description: fmt.Sprintf("Compra de álbum: %s", album.Name),
		Reference:   fmt.Sprintf("%d", purchaseID),
	})
	if err != nil {
		return "", fmt.Errorf("payment link for purchase %d: %w", purchaseID, err)
	}

	if s.notifier != nil {
		s.notifier.SendNotification(fmt.Sprintf(
			"📚 *COMPRA DE ÁLBUM INICIADA*\n\n"+
				"👤 *Usuario:* %d\n"+
				"🆔 *Álbum:* %d\n"+
				"💵 *Precio:* %s\n"+
				"🔗 *Referencia:* %d",
			userId, albumID, album.Price.StringFixed(0), purchaseID,
		))
	}

	return url, nil
}

// Settle records the state the gateway callback reported for a purchase.
func (s *AlbumService) Settle(ctx context.Context, purchaseID int64, state string) error {
	return s.albumStore.SettlePurchase(ctx, purchaseID, state)
}
