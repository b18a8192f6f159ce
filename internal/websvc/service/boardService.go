package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
	"github.com/solutions-systems/bolas-locas/internal/websvc/store"
)

type BoardService struct {
	boardStore *store.BoardStore
	entryStore *store.EntryStore
}

func NewBoardService(boardStore *store.BoardStore, entryStore *store.EntryStore) *BoardService {
	return &BoardService{boardStore: boardStore, entryStore: entryStore}
}

func (s *BoardService) GetByID(ctx context.Context, boardID int) (*models.Board, error) {
	return s.boardStore.GetByID(ctx, boardID)
}

func (s *BoardService) ListOpen(ctx context.Context) ([]*models.Board, error) {
	return s.boardStore.ListOpen(ctx)
}

func (s *BoardService) Stats(ctx context.Context, boardID int) (players, units int, err error) {
	return s.boardStore.Stats(ctx, boardID)
}

func (s *BoardService) Players(ctx context.Context, boardID int) ([]*models.BoardPlayer, error) {
	return s.boardStore.Players(ctx, boardID)
}

func (s *BoardService) OpenBoardSummaries(ctx context.Context, userId int64) ([]*models.PlayerBoardSummary, error) {
	return s.entryStore.OpenBoardSummaries(ctx, userId)
}

func (s *BoardService) PlayedBoardIDs(ctx context.Context, userId int64, month, year int) ([]int, error) {
	return s.entryStore.PlayedBoardIDs(ctx, userId, month, year)
}

type JackpotService struct {
	jackpotStore *store.JackpotStore
}

func NewJackpotService(jackpotStore *store.JackpotStore) *JackpotService {
	return &JackpotService{jackpotStore: jackpotStore}
}

func (s *JackpotService) GetByBoardID(ctx context.Context, boardID int) (*models.Jackpot, error) {
	return s.jackpotStore.GetByBoardID(ctx, boardID)
}

func (s *JackpotService) WonByAlias(ctx context.Context, alias string) ([]*models.Jackpot, error) {
	return s.jackpotStore.WonByAlias(ctx, alias)
}

func (s *JackpotService) WinnerPrizeByBoard(ctx context.Context) (map[int]decimal.Decimal, error) {
	return s.jackpotStore.WinnerPrizeByBoard(ctx)
}
