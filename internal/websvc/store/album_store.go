package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
)

type AlbumStore struct {
	db *pgxpool.Pool
}

func NewAlbumStore(db *pgxpool.Pool) *AlbumStore {
	return &AlbumStore{db: db}
}

func (s *AlbumStore) ListActive(ctx context.Context) ([]*models.Album, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id_album, nombre, descripcion, precio, estado
		FROM albumes
		WHERE estado = $1
		ORDER BY id_album
	`, models.AlbumStateActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active albums: %w", err)
	}
	defer rows.Close()

	var albums []*models.Album
	for rows.Next() {
		a := &models.Album{}
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Price, &a.State); err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}

	return albums, rows.Err()
}

func (s *AlbumStore) GetActiveByID(ctx context.Context, albumID int) (*models.Album, error) {
	a := &models.Album{}
	err := s.db.QueryRow(ctx, `
		SELECT id_album, nombre, descripcion, precio, estado
		FROM albumes
		WHERE id_album = $1 AND estado = $2
	`, albumID, models.AlbumStateActive).Scan(&a.ID, &a.Name, &a.Description, &a.Price, &a.State)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // missing or inactive
		}
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	return a, nil
}

// CreatePendingPurchase inserts a compras_albumes row in pendiente state and
// returns its id, which becomes the payment reference sent to the gateway.
func (s *AlbumStore) CreatePendingPurchase(ctx context.Context, userId int64, albumID int) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO compras_albumes (user_id, id_album, estado)
		VALUES ($1, $2, $3)
		RETURNING id_compra_album
	`, userId, albumID, models.AlbumPurchasePending).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create album purchase: %w", err)
	}
	return id, nil
}

// SettlePurchase records the state the payment gateway reported for a
// purchase reference.
func (s *AlbumStore) SettlePurchase(ctx context.Context, purchaseID int64, state string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE compras_albumes
		SET estado = $1, fecha_confirmacion = NOW()
		WHERE id_compra_album = $2
	`, state, purchaseID)
	if err != nil {
		return fmt.Errorf("failed to settle album purchase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("unknown album purchase reference")
	}
	return nil
}
