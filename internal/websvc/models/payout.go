package models

import "github.com/shopspring/decimal"

// PayoutConfig is the singleton configuracion_pagos row: the three split
// percentages applied to the jackpot total. They are used exactly as stored
// and are not required to sum to 1.
type PayoutConfig struct {
	ID             int             `json:"id_config"`
	HousePercent   decimal.Decimal `json:"porcentaje_casa"`
	SponsorPercent decimal.Decimal `json:"porcentaje_sponsor"`
	WinnerPercent  decimal.Decimal `json:"porcentaje_ganador"`
}
