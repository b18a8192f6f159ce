package jackpot

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
)

func testBoard() *models.Board {
	return &models.Board{
		ID:           1,
		UnitPrice:    decimal.NewFromInt(1000),
		MinPerPlayer: 1,
		MaxPerPlayer: 10,
		MaxUnits:     100,
	}
}

func testConfig() models.PayoutConfig {
	return models.PayoutConfig{
		ID:             1,
		HousePercent:   decimal.NewFromFloat(0.60),
		SponsorPercent: decimal.NewFromFloat(0.06),
		WinnerPercent:  decimal.NewFromFloat(0.34),
	}
}

func TestValidatePurchase(t *testing.T) {
	tests := []struct {
		name       string
		balance    int64
		priorUnits int
		qty        int
		wantErr    error
	}{
		{name: "valid first purchase", balance: 50000, priorUnits: 0, qty: 5},
		{name: "exact balance", balance: 5000, priorUnits: 0, qty: 5},
		{name: "insufficient balance", balance: 4999, priorUnits: 0, qty: 5, wantErr: ErrInsufficientBalance},
		{name: "below minimum", balance: 50000, priorUnits: 0, qty: 0, wantErr: ErrQuantityOutOfRange},
		{name: "above maximum", balance: 50000, priorUnits: 0, qty: 11, wantErr: ErrQuantityOutOfRange},
		{name: "fills the limit exactly", balance: 50000, priorUnits: 5, qty: 5},
	}

	board := testBoard()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost := board.UnitPrice.Mul(decimal.NewFromInt(int64(tt.qty)))
			err := ValidatePurchase(board, decimal.NewFromInt(tt.balance), tt.priorUnits, tt.qty, cost)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidatePurchaseLimitExceeded(t *testing.T) {
	board := testBoard()
	cost := board.UnitPrice.Mul(decimal.NewFromInt(6))

	err := ValidatePurchase(board, decimal.NewFromInt(50000), 5, 6, cost)
	var limitErr *LimitExceededError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, 5, limitErr.CurrentUnits)
	assert.Equal(t, 10, limitErr.Limit)
}

// The balance check runs first: a purchase that is both unaffordable and out
// of range reports the balance failure.
func TestValidatePurchaseOrder(t *testing.T) {
	board := testBoard()
	cost := board.UnitPrice.Mul(decimal.NewFromInt(11))

	err := ValidatePurchase(board, decimal.NewFromInt(100), 5, 11, cost)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestComputeUpdateFirstPurchase(t *testing.T) {
	cost := decimal.NewFromInt(5000)

	got := ComputeUpdate(nil, cost, 5, testConfig())

	assert.True(t, got.IsNew)
	assert.True(t, got.AccumAmount.Equal(decimal.NewFromInt(5000)), "accumulated = %s", got.AccumAmount)
	assert.Equal(t, 5, got.AccumUnits)
	assert.True(t, got.HouseTake.Equal(decimal.NewFromInt(3000)), "house = %s", got.HouseTake)
	assert.True(t, got.SponsorPrize.Equal(decimal.NewFromInt(300)), "sponsor = %s", got.SponsorPrize)
	assert.True(t, got.WinnerPrize.Equal(decimal.NewFromInt(1700)), "winner = %s", got.WinnerPrize)
}

// Later purchases increment the accumulated amount and units while the three
// portions are overwritten with values recomputed from the new total.
func TestComputeUpdateAccrual(t *testing.T) {
	existing := &models.Jackpot{
		BoardID:      1,
		AccumUnits:   5,
		AccumAmount:  decimal.NewFromInt(5000),
		HouseTake:    decimal.NewFromInt(3000),
		SponsorPrize: decimal.NewFromInt(300),
		WinnerPrize:  decimal.NewFromInt(1700),
	}

	got := ComputeUpdate(existing, decimal.NewFromInt(3000), 3, testConfig())

	assert.False(t, got.IsNew)
	assert.True(t, got.AccumAmount.Equal(decimal.NewFromInt(8000)), "accumulated = %s", got.AccumAmount)
	assert.Equal(t, 8, got.AccumUnits)
	assert.True(t, got.HouseTake.Equal(decimal.NewFromInt(4800)), "house = %s", got.HouseTake)
	assert.True(t, got.SponsorPrize.Equal(decimal.NewFromInt(480)), "sponsor = %s", got.SponsorPrize)
	assert.True(t, got.WinnerPrize.Equal(decimal.NewFromInt(2720)), "winner = %s", got.WinnerPrize)
}

// The percentages are applied independently, without normalizing them to sum
// to 1.
func TestComputeUpdatePercentagesNotNormalized(t *testing.T) {
	cfg := models.PayoutConfig{
		HousePercent:   decimal.NewFromFloat(0.90),
		SponsorPercent: decimal.NewFromFloat(0.50),
		WinnerPercent:  decimal.NewFromFloat(0.80),
	}

	got := ComputeUpdate(nil, decimal.NewFromInt(1000), 1, cfg)

	assert.True(t, got.HouseTake.Equal(decimal.NewFromInt(900)))
	assert.True(t, got.SponsorPrize.Equal(decimal.NewFromInt(500)))
	assert.True(t, got.WinnerPrize.Equal(decimal.NewFromInt(800)))
}
