package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BoardEntry is one row of the jugadores_tableros purchase ledger. The table
// is append-only: every purchase inserts a new row, totals are aggregated at
// query time.
type BoardEntry struct {
	ID         int64           `json:"id"`
	UserId     int64           `json:"user_id"`
	BoardID    int             `json:"id_tablero"`
	Units      int             `json:"cantidad_bolitas"`
	AmountPaid decimal.Decimal `json:"monto_pagado"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PlayerBoardSummary aggregates a player's position on one open board.
type PlayerBoardSummary struct {
	BoardID        int             `json:"id_tablero"`
	BoardCreatedAt time.Time       `json:"fecha_creacion"`
	UnitsByPlayer  int             `json:"bolitas_compradas_usuario"`
	UnitsOnBoard   int             `json:"bolitas_totales_tablero"`
	WinnerPrize    decimal.Decimal `json:"acumulado_tablero"`
}

// BoardPlayer aggregates purchased units per distinct player on a board.
type BoardPlayer struct {
	UserId     int64  `json:"user_id"`
	Alias      string `json:"alias"`
	Sponsor    string `json:"sponsor"`
	TotalUnits int    `json:"total_bolitas"`
}
