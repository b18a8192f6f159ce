package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
)

type EntryStore struct {
	db *pgxpool.Pool
}

func NewEntryStore(db *pgxpool.Pool) *EntryStore {
	return &EntryStore{db: db}
}

// OpenBoardSummaries returns, per open board the player is enrolled in, the
// player's own units next to the board totals and the current winner prize.
func (s *EntryStore) OpenBoardSummaries(ctx context.Context, userId int64) ([]*models.PlayerBoardSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT
			jt.id_tablero,
			MAX(t.fecha_creacion) AS fecha_creacion,
			SUM(jt.cantidad_bolitas) AS bolitas_compradas_usuario,
			COALESCE(MAX(j.acum_bolitas), 0) AS bolitas_totales_tablero,
			COALESCE(MAX(j.premio_ganador), 0) AS acumulado_tablero
		FROM jugadores_tableros jt
		JOIN tableros t ON jt.id_tablero = t.id_tablero
		LEFT JOIN jackpots j ON jt.id_tablero = j.id_tablero
		WHERE jt.user_id = $1 AND t.estado = $2
		GROUP BY jt.id_tablero
		ORDER BY jt.id_tablero
	`, userId, models.BoardStateOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to list open board summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*models.PlayerBoardSummary
	for rows.Next() {
		sm := &models.PlayerBoardSummary{}
		err := rows.Scan(
			&sm.BoardID,
			&sm.BoardCreatedAt,
			&sm.UnitsByPlayer,
			&sm.UnitsOnBoard,
			&sm.WinnerPrize,
		)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, sm)
	}

	return summaries, rows.Err()
}

// PlayedBoardIDs returns the ids of the no-longer-open boards the player
// participated in during the given month.
func (s *EntryStore) PlayedBoardIDs(ctx context.Context, userId int64, month, year int) ([]int, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT jt.id_tablero
		FROM jugadores_tableros jt
		JOIN tableros t ON jt.id_tablero = t.id_tablero
		WHERE jt.user_id = $1
		  AND EXTRACT(YEAR FROM t.fecha_creacion) = $2
		  AND EXTRACT(MONTH FROM t.fecha_creacion) = $3
		  AND t.estado <> $4
		ORDER BY jt.id_tablero
	`, userId, year, month, models.BoardStateOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to list played boards: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
