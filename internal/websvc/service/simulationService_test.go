package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solutions-systems/bolas-locas/internal/websvc/jackpot"
	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
	"github.com/solutions-systems/bolas-locas/internal/websvc/store"
)

type stubBoardFinder struct {
	board *models.Board
}

func (s *stubBoardFinder) GetByID(ctx context.Context, boardID int) (*models.Board, error) {
	return s.board, nil
}

type stubPurchaser struct {
	errByUser map[int64]error

	resetBoardID int
	resetBalance decimal.Decimal
	bought       []int64
}

func (s *stubPurchaser) Buy(ctx context.Context, userId int64, boardID, qty int) (*store.PurchaseResult, error) {
	if err, ok := s.errByUser[userId]; ok {
		return nil, err
	}
	s.bought = append(s.bought, userId)
	return &store.PurchaseResult{BoardID: boardID, Units: qty}, nil
}

func (s *stubPurchaser) ResetForSimulation(ctx context.Context, boardID int, balance decimal.Decimal) error {
	s.resetBoardID = boardID
	s.resetBalance = balance
	return nil
}

// min == max keeps the random draw fixed.
func simulationBoard() *models.Board {
	return &models.Board{
		ID:           4,
		UnitPrice:    decimal.NewFromInt(1000),
		State:        models.BoardStateOpen,
		MinPerPlayer: 5,
		MaxPerPlayer: 5,
		MaxUnits:     100,
	}
}

func simulationPlayers(ids ...int64) []*models.Player {
	players := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		players = append(players, &models.Player{UserId: id})
	}
	return players
}

// Players whose draw fails a purchase rule are skipped; the rest buy.
func TestSimulationSkipsInvalidDraws(t *testing.T) {
	purchaser := &stubPurchaser{errByUser: map[int64]error{
		222: jackpot.ErrInsufficientBalance,
		333: &jackpot.LimitExceededError{CurrentUnits: 5, Limit: 5},
		444: jackpot.ErrQuantityOutOfRange,
	}}
	svc := NewSimulationService(
		&stubPlayerRecords{players: simulationPlayers(111, 222, 333, 444, 555)},
		&stubBoardFinder{board: simulationBoard()},
		purchaser,
	)

	made, skipped, err := svc.Run(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, 2, made)
	assert.Equal(t, 3, skipped)
	assert.Equal(t, []int64{111, 555}, purchaser.bought)
}

// The run starts from a clean slate: balances reset and the board cleared.
func TestSimulationResetsBeforeBuying(t *testing.T) {
	purchaser := &stubPurchaser{}
	svc := NewSimulationService(
		&stubPlayerRecords{players: simulationPlayers(111)},
		&stubBoardFinder{board: simulationBoard()},
		purchaser,
	)

	_, _, err := svc.Run(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, 4, purchaser.resetBoardID)
	assert.True(t, purchaser.resetBalance.Equal(decimal.NewFromInt(500000)))
}

func TestSimulationBoardMissing(t *testing.T) {
	svc := NewSimulationService(
		&stubPlayerRecords{},
		&stubBoardFinder{},
		&stubPurchaser{},
	)

	_, _, err := svc.Run(context.Background(), 99)

	assert.ErrorIs(t, err, jackpot.ErrBoardNotFound)
}

// A failure that is not one of the skip rules aborts the run.
func TestSimulationAbortsOnStoreFailure(t *testing.T) {
	boom := errors.New("connection reset")
	purchaser := &stubPurchaser{errByUser: map[int64]error{222: boom}}
	svc := NewSimulationService(
		&stubPlayerRecords{players: simulationPlayers(111, 222, 333)},
		&stubBoardFinder{board: simulationBoard()},
		purchaser,
	)

	made, _, err := svc.Run(context.Background(), 4)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, made)
	assert.Equal(t, []int64{111}, purchaser.bought)
}
