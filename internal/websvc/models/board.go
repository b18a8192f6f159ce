package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const BoardStateOpen = "abierto"

// Board represents the tableros table. Boards are created externally; this
// service only reads them.
type Board struct {
	ID           int             `json:"id_tablero"`
	Name         string          `json:"nombre"`
	UnitPrice    decimal.Decimal `json:"precio_por_bolita"`
	State        string          `json:"estado"`
	MinPerPlayer int             `json:"min_bolitas_por_jugador"`
	MaxPerPlayer int             `json:"max_bolitas_por_jugador"`
	MaxUnits     int             `json:"max_bolitas"`
	CreatedAt    time.Time       `json:"fecha_creacion"`
}
