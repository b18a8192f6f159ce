package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/solutions-systems/bolas-locas/internal/websvc/jackpot"
	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
)

type PurchaseStore struct {
	db *pgxpool.Pool
}

func NewPurchaseStore(db *pgxpool.Pool) *PurchaseStore {
	return &PurchaseStore{db: db}
}

// PurchaseResult is the committed outcome of a unit purchase.
type PurchaseResult struct {
	Cost       decimal.Decimal
	NewBalance decimal.Decimal
	Jackpot    jackpot.Update
	BoardID    int
	Units      int
}

// Buy performs the full read-validate-write purchase sequence inside one
// transaction. The player row and the jackpot row are locked FOR UPDATE, so
// two simultaneous purchases by the same player or on the same board
// serialize instead of both reading a stale balance or unit count.
//
// Failure order: board existence, player registration, balance, board
// quantity range, per-player limit. Each returns its sentinel from the
// jackpot package untouched so callers can word the reply per rule.
func (s *PurchaseStore) Buy(ctx context.Context, userId int64, boardID, qty int) (*PurchaseResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	board, err := getBoardTx(ctx, tx, boardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, jackpot.ErrBoardNotFound
	}

	var balance decimal.Decimal
	err = tx.QueryRow(ctx,
		`SELECT saldo FROM jugadores WHERE user_id = $1 FOR UPDATE`,
		userId,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, jackpot.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("lock player row: %w", err)
	}

	cost := board.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))

	var priorUnits int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(cantidad_bolitas), 0)
		FROM jugadores_tableros
		WHERE user_id = $1 AND id_tablero = $2
	`, userId, boardID).Scan(&priorUnits)
	if err != nil {
		return nil, fmt.Errorf("sum prior units: %w", err)
	}

	if err := jackpot.ValidatePurchase(board, balance, priorUnits, qty, cost); err != nil {
		return nil, err
	}

	cfg, err := getPayoutConfigTx(ctx, tx)
	if err != nil {
		return nil, err
	}

	existing, err := getJackpotForUpdateTx(ctx, tx, boardID)
	if err != nil {
		return nil, err
	}

	update := jackpot.ComputeUpdate(existing, cost, qty, cfg)

	_, err = tx.Exec(ctx,
		`UPDATE jugadores SET saldo = saldo - $1 WHERE user_id = $2`,
		cost, userId,
	)
	if err != nil {
		return nil, fmt.Errorf("debit balance: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO jugadores_tableros (user_id, id_tablero, cantidad_bolitas, monto_pagado)
		VALUES ($1, $2, $3, $4)
	`, userId, boardID, qty, cost)
	if err != nil {
		return nil, fmt.Errorf("insert ledger row: %w", err)
	}

	if update.IsNew {
		_, err = tx.Exec(ctx, `
			INSERT INTO jackpots (id_tablero, acum_bolitas, monto_acumulado, ganancia_bruta, premio_sponsor, premio_ganador)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, boardID, update.AccumUnits, update.AccumAmount, update.HouseTake, update.SponsorPrize, update.WinnerPrize)
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE jackpots
			SET acum_bolitas = $2, monto_acumulado = $3, ganancia_bruta = $4,
			    premio_sponsor = $5, premio_ganador = $6
			WHERE id_tablero = $1
		`, boardID, update.AccumUnits, update.AccumAmount, update.HouseTake, update.SponsorPrize, update.WinnerPrize)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert jackpot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &PurchaseResult{
		Cost:       cost,
		NewBalance: balance.Sub(cost),
		Jackpot:    update,
		BoardID:    boardID,
		Units:      qty,
	}, nil
}

// ResetForSimulation puts every player balance back to the given amount,
// clears the target board's ledger and zeroes its jackpot. Maintenance use
// only.
func (s *PurchaseStore) ResetForSimulation(ctx context.Context, boardID int, balance decimal.Decimal) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE jugadores SET saldo = $1`, balance); err != nil {
		return fmt.Errorf("reset balances: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM jugadores_tableros WHERE id_tablero = $1`, boardID,
	); err != nil {
		return fmt.Errorf("clear board ledger: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE jackpots
		SET monto_acumulado = 0, premio_ganador = 0, premio_sponsor = 0,
		    ganancia_bruta = 0, acum_bolitas = 0
		WHERE id_tablero = $1
	`, boardID); err != nil {
		return fmt.Errorf("zero jackpot: %w", err)
	}

	return tx.Commit(ctx)
}

func getBoardTx(ctx context.Context, tx pgx.Tx, boardID int) (*models.Board, error) {
	b := &models.Board{}
	err := tx.QueryRow(ctx, `
		SELECT id_tablero, nombre, precio_por_bolita, estado,
		       min_bolitas_por_jugador, max_bolitas_por_jugador, max_bolitas, fecha_creacion
		FROM tableros
		WHERE id_tablero = $1
	`, boardID).Scan(
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
			return nil, nil
		}
		return nil, fmt.Errorf("get board in tx: %w", err)
	}
	return b, nil
}

func getPayoutConfigTx(ctx context.Context, tx pgx.Tx) (models.PayoutConfig, error) {
	cfg := models.PayoutConfig{}
	err := tx.QueryRow(ctx, `
		SELECT id_config, porcentaje_casa, porcentaje_sponsor, porcentaje_ganador
		FROM configuracion_pagos
		WHERE id_config = 1
	`).Scan(&cfg.ID, &cfg.HousePercent, &cfg.SponsorPercent, &cfg.WinnerPercent)
	if err != nil {
		return cfg, fmt.Errorf("get payout config: %w", err)
	}
	return cfg, nil
}

func getJackpotForUpdateTx(ctx context.Context, tx pgx.Tx, boardID int) (*models.Jackpot, error) {
	j := &models.Jackpot{}
	err := tx.QueryRow(ctx, `
		SELECT id_tablero, acum_bolitas, monto_acumulado
		FROM jackpots
		WHERE id_tablero = $1
		FOR UPDATE
	`, boardID).Scan(&j.BoardID, &j.AccumUnits, &j.AccumAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // first purchase on this board
		}
		return nil, fmt.Errorf("lock jackpot row: %w", err)
	}
	return j, nil
}
