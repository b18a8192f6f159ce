package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
)

type BoardStore struct {
	db *pgxpool.Pool
}

func NewBoardStore(db *pgxpool.Pool) *BoardStore {
	return &BoardStore{db: db}
}

func (s *BoardStore) GetByID(ctx context.Context, boardID int) (*models.Board, error) {
	query := `
		SELECT id_tablero, nombre, precio_por_bolita, estado,
		       min_bolitas_por_jugador, max_bolitas_por_jugador, max_bolitas, fecha_creacion
		FROM tableros
		WHERE id_tablero = $1
	`

	b := &models.Board{}
	err := s.db.QueryRow(ctx, query, boardID).Scan(
		&b.ID,
		&b.Name,
		&b.UnitPrice,
		&b.State,
		&b.MinPerPlayer,
		&b.MaxPerPlayer,
		&b.MaxUnits,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // board not found
		}
		return nil, fmt.Errorf("failed to get board: %w", err)
	}

	return b, nil
}

// ListOpen returns the boards currently in the abierto state.
func (s *BoardStore) ListOpen(ctx context.Context) ([]*models.Board, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id_tablero, nombre, precio_por_bolita, estado,
		       min_bolitas_por_jugador, max_bolitas_por_jugador, max_bolitas, fecha_creacion
		FROM tableros
		WHERE estado = $1
		ORDER BY id_tablero
	`, models.BoardStateOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to list open boards: %w", err)
	}
	defer rows.Close()

	var boards []*models.Board
	for rows.Next() {
		b := &models.Board{}
		err := rows.Scan(
			&b.ID,
			&b.Name,
			&b.UnitPrice,
			&b.State,
			&b.MinPerPlayer,
			&b.MaxPerPlayer,
			&b.MaxUnits,
			&b.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}

	return boards, rows.Err()
}

// Stats returns the number of distinct enrolled players and the total units
// sold on one board.
func (s *BoardStore) Stats(ctx context.Context, boardID int) (players int, units int, err error) {
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT user_id), COALESCE(SUM(cantidad_bolitas), 0)
		FROM jugadores_tableros
		WHERE id_tablero = $1
	`, boardID).Scan(&players, &units)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get board stats: %w", err)
	}
	return players, units, nil
}

// Players aggregates purchased units per distinct player on one board.
func (s *BoardStore) Players(ctx context.Context, boardID int) ([]*models.BoardPlayer, error) {
	rows, err := s.db.Query(ctx, `
		SELECT j.user_id, j.alias, j.sponsor, SUM(jt.cantidad_bolitas) AS total_bolitas
		FROM jugadores_tableros jt
		JOIN jugadores j ON jt.user_id = j.user_id
		WHERE jt.id_tablero = $1
		GROUP BY j.user_id, j.alias, j.sponsor
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list board players: %w", err)
	}
	defer rows.Close()

	var players []*models.BoardPlayer
	for rows.Next() {
		p := &models.BoardPlayer{}
		if err := rows.Scan(&p.UserId, &p.Alias, &p.Sponsor, &p.TotalUnits); err != nil {
			return nil, err
		}
		players = append(players, p)
	}

	return players, rows.Err()
}
