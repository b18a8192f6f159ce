package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
)

const jackpotColumns = `
	id_tablero, acum_bolitas, monto_acumulado, ganancia_bruta,
	premio_sponsor, premio_ganador, alias_ganador, sponsor_ganador,
	estado, link_soporte, fecha_pago`

type JackpotStore struct {
	db *pgxpool.Pool
}

func NewJackpotStore(db *pgxpool.Pool) *JackpotStore {
	return &JackpotStore{db: db}
}

func scanJackpot(row pgx.Row) (*models.Jackpot, error) {
	j := &models.Jackpot{}
	err := row.Scan(
		&j.BoardID,
		&j.AccumUnits,
		&j.AccumAmount,
		&j.HouseTake,
		&j.SponsorPrize,
		&j.WinnerPrize,
		&j.WinnerAlias,
		&j.SponsorAlias,
		&j.State,
		&j.SupportLink,
		&j.PaidAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no jackpot yet for this board
		}
		return nil, fmt.Errorf("failed to get jackpot: %w", err)
	}
	return j, nil
}

func (s *JackpotStore) GetByBoardID(ctx context.Context, boardID int) (*models.Jackpot, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+jackpotColumns+` FROM jackpots WHERE id_tablero = $1`,
		boardID,
	)
	return scanJackpot(row)
}

// WonByAlias returns the jackpots where the alias is recorded as winner or as
// the winner's sponsor.
func (s *JackpotStore) WonByAlias(ctx context.Context, alias string) ([]*models.Jackpot, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+jackpotColumns+`
		 FROM jackpots
		 WHERE alias_ganador = $1 OR sponsor_ganador = $1
		 ORDER BY id_tablero`,
		alias,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list won jackpots: %w", err)
	}
	defer rows.Close()

	var jackpots []*models.Jackpot
	for rows.Next() {
		j := &models.Jackpot{}
		err := rows.Scan(
			&j.BoardID,
			&j.AccumUnits,
			&j.AccumAmount,
			&j.HouseTake,
			&j.SponsorPrize,
			&j.WinnerPrize,
			&j.WinnerAlias,
			&j.SponsorAlias,
			&j.State,
			&j.SupportLink,
			&j.PaidAt,
		)
		if err != nil {
			return nil, err
		}
		jackpots = append(jackpots, j)
	}

	return jackpots, rows.Err()
}

// WinnerPrizeByBoard returns the current winner prize per board id in one
// round trip, for the board-selection keyboard.
func (s *JackpotStore) WinnerPrizeByBoard(ctx context.Context) (map[int]decimal.Decimal, error) {
	rows, err := s.db.Query(ctx, `SELECT id_tablero, premio_ganador FROM jackpots`)
	if err != nil {
		return nil, fmt.Errorf("failed to list winner prizes: %w", err)
	}
	defer rows.Close()

	prizes := make(map[int]decimal.Decimal)
	for rows.Next() {
		var boardID int
		var prize decimal.Decimal
		if err := rows.Scan(&boardID, &prize); err != nil {
			return nil, err
		}
		prizes[boardID] = prize
	}

	return prizes, rows.Err()
}
