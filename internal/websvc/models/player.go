package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Player represents the jugadores table. UserId is the Telegram id the
// Dialogflow webhook reports for the caller.
type Player struct {
	UserId       int64           `json:"user_id"`
	Phone        string          `json:"numero_celular"`
	Alias        string          `json:"alias"`
	Sponsor      string          `json:"sponsor"`
	Balance      decimal.Decimal `json:"saldo"`
	RegisteredAt time.Time       `json:"fecha_registro"`
}
