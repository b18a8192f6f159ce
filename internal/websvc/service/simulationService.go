package service

import (
	"context"
	"errors"
	"math/rand"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/solutions-systems/bolas-locas/internal/websvc/jackpot"
	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
	"github.com/solutions-systems/bolas-locas/internal/websvc/store"
)

// DefaultSimulationBoard is the board the maintenance simulation targets when
// the request does not name one.
const DefaultSimulationBoard = 4

// simulationBalance is the balance every player is reset to before the run.
var simulationBalance = decimal.NewFromInt(500000)

// BoardFinder resolves the target board before a run.
type BoardFinder interface {
	GetByID(ctx context.Context, boardID int) (*models.Board, error)
}

// UnitPurchaser is the purchase path the simulation replays, plus the reset
// that precedes a run.
type UnitPurchaser interface {
	Buy(ctx context.Context, userId int64, boardID, qty int) (*store.PurchaseResult, error)
	ResetForSimulation(ctx context.Context, boardID int, balance decimal.Decimal) error
}

// SimulationService generates demo purchase traffic: it resets the world,
// then walks every registered player and buys a random valid quantity on the
// target board through the regular purchase path.
type SimulationService struct {
	playerStore   PlayerRecords
	boardStore    BoardFinder
	purchaseStore UnitPurchaser
}

func NewSimulationService(playerStore PlayerRecords, boardStore BoardFinder, purchaseStore UnitPurchaser) *SimulationService {
	return &SimulationService{
		playerStore:   playerStore,
		boardStore:    boardStore,
		purchaseStore: purchaseStore,
	}
}

// Run resets balances and the board, then simulates one purchase per player.
// Players whose random draw is unaffordable or over the per-player limit are
// skipped, not failed. Returns how many purchases were made and skipped.
func (s *SimulationService) Run(ctx context.Context, boardID int) (made, skipped int, err error) {
	board, err := s.boardStore.GetByID(ctx, boardID)
	if err != nil {
		return 0, 0, err
	}
	if board == nil {
		return 0, 0, jackpot.ErrBoardNotFound
	}

	if err := s.purchaseStore.ResetForSimulation(ctx, boardID, simulationBalance); err != nil {
		return 0, 0, err
	}

	players, err := s.playerStore.List(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, p := range players {
		qty := board.MinPerPlayer
		if board.MaxPerPlayer > board.MinPerPlayer {
			qty += rand.Intn(board.MaxPerPlayer - board.MinPerPlayer + 1)
		}

		_, err := s.purchaseStore.Buy(ctx, p.UserId, boardID, qty)
		if err != nil {
			var limitErr *jackpot.LimitExceededError
			switch {
			case errors.Is(err, jackpot.ErrInsufficientBalance),
				errors.Is(err, jackpot.ErrQuantityOutOfRange),
				errors.As(err, &limitErr):
				log.Warnf("simulation: player %d skipped on board %d: %v", p.UserId, boardID, err)
				skipped++
				continue
			default:
				return made, skipped, err
			}
		}
		made++
	}

	log.Infof("simulation on board %d done: %d purchases, %d skipped", boardID, made, skipped)
	return made, skipped, nil
}
