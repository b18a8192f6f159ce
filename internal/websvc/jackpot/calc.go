package jackpot

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
)

// Validation failures for a unit purchase. Each one maps to its own chat
// reply, so they stay distinct instead of collapsing into one error string.
var (
	ErrBoardNotFound       = errors.New("board not found")
	ErrPlayerNotFound      = errors.New("player not registered")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrQuantityOutOfRange  = errors.New("quantity out of allowed range")
)

// LimitExceededError reports a purchase that would push the player past the
// per-player cap; the reply must cite both current total and limit.
type LimitExceededError struct {
	CurrentUnits int
	Limit        int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("player limit exceeded: has %d, limit %d", e.CurrentUnits, e.Limit)
}

// ValidatePurchase runs the purchase checks in their fixed order, returning
// the first failure: balance, then board quantity range, then per-player
// limit. Board and player existence are checked by the caller before any of
// this runs.
func ValidatePurchase(board *models.Board, balance decimal.Decimal, priorUnits, qty int, cost decimal.Decimal) error {
	if balance.LessThan(cost) {
		return ErrInsufficientBalance
	}
	if qty < board.MinPerPlayer || qty > board.MaxPerPlayer {
		return ErrQuantityOutOfRange
	}
	if priorUnits+qty > board.MaxPerPlayer {
		return &LimitExceededError{CurrentUnits: priorUnits, Limit: board.MaxPerPlayer}
	}
	return nil
}

// Update is the jackpot state a committed purchase must leave behind.
type Update struct {
	AccumAmount  decimal.Decimal
	AccumUnits   int
	HouseTake    decimal.Decimal
	SponsorPrize decimal.Decimal
	WinnerPrize  decimal.Decimal
	IsNew        bool
}

// ComputeUpdate derives the post-purchase jackpot. The accumulated amount and
// unit count grow by the purchase; the three prize portions are recomputed
// from the new total with the configured percentages and overwrite whatever
// was stored before. The percentages are applied as-is, they are not
// normalized to sum to 1.
func ComputeUpdate(existing *models.Jackpot, cost decimal.Decimal, qty int, cfg models.PayoutConfig) Update {
	base := cost
	units := qty
	isNew := true
	if existing != nil {
		base = existing.AccumAmount.Add(cost)
		units = existing.AccumUnits + qty
		isNew = false
	}

	return Update{
		AccumAmount:  base,
		AccumUnits:   units,
		HouseTake:    base.Mul(cfg.HousePercent),
		SponsorPrize: base.Mul(cfg.SponsorPercent),
		WinnerPrize:  base.Mul(cfg.WinnerPercent),
		IsNew:        isNew,
	}
}
