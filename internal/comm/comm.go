package comm

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Subject the purchase path publishes jackpot updates on; the websocket hub
// subscribes to the same subject to fan updates out to mini-app clients.
const SubjectJackpotEvents = "jackpot.events"

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "jackpot-update"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid,omitempty"`
}

// JackpotEvent is emitted after every committed purchase.
type JackpotEvent struct {
	BoardID     int             `json:"id_tablero"`
	AccumUnits  int             `json:"acum_bolitas"`
	AccumAmount decimal.Decimal `json:"monto_acumulado"`
	WinnerPrize decimal.Decimal `json:"premio_ganador"`
	Timestamp   int64           `json:"timestamp"`
}
