package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Jackpot represents the jackpots table. One row per board, created lazily on
// the first purchase. AccumAmount and AccumUnits grow additively; the three
// prize fields are overwritten on every purchase with values recomputed from
// the new total.
type Jackpot struct {
	BoardID      int             `json:"id_tablero"`
	AccumUnits   int             `json:"acum_bolitas"`
	AccumAmount  decimal.Decimal `json:"monto_acumulado"`
	HouseTake    decimal.Decimal `json:"ganancia_bruta"`
	SponsorPrize decimal.Decimal `json:"premio_sponsor"`
	WinnerPrize  decimal.Decimal `json:"premio_ganador"`
	WinnerAlias  *string         `json:"alias_ganador"`
	SponsorAlias *string         `json:"sponsor_ganador"`
	State        string          `json:"estado"`
	SupportLink  *string         `json:"link_soporte"`
	PaidAt       *time.Time      `json:"fecha_pago"`
}
