package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AlbumStateActive = "activo"

	AlbumPurchasePending = "pendiente"
)

// Album represents the albumes catalog table.
type Album struct {
	ID          int             `json:"id_album"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Price       decimal.Decimal `json:"precio"`
	State       string          `json:"estado"`
}

// AlbumPurchase represents the compras_albumes table. A purchase starts in
// pendiente and is moved to the gateway-reported state by the payment
// callback.
type AlbumPurchase struct {
	ID          int64      `json:"id_compra_album"`
	UserId      int64      `json:"user_id"`
	AlbumID     int        `json:"id_album"`
	State       string     `json:"estado"`
	CreatedAt   time.Time  `json:"fecha_compra"`
	ConfirmedAt *time.Time `json:"fecha_confirmacion"`
}
