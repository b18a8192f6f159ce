package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
)

// Registration failures that get their own chat reply.
var (
	ErrInvalidPhone     = errors.New("phone must be 10 digits starting with 3")
	ErrSponsorNotFound  = errors.New("sponsor alias does not exist")
	ErrNoPlayersForAuto = errors.New("no registered players to auto-assign as sponsor")
)

var (
	nonDigitRe = regexp.MustCompile(`\D`)
	phoneRe    = regexp.MustCompile(`^3\d{9}$`)
)

// NormalizePhone strips every non-digit and checks the Nequi shape: exactly
// 10 digits starting with 3.
func NormalizePhone(raw string) (string, bool) {
	phone := nonDigitRe.ReplaceAllString(raw, "")
	return phone, phoneRe.MatchString(phone)
}

// PlayerRecords is the persistence surface the player service needs.
type PlayerRecords interface {
	GetByUserID(ctx context.Context, userId int64) (*models.Player, error)
	AliasExists(ctx context.Context, alias string) (bool, error)
	LatestAlias(ctx context.Context) (string, error)
	Create(ctx context.Context, p models.Player) error
	UpdatePhone(ctx context.Context, userId int64, phone string) error
	List(ctx context.Context) ([]*models.Player, error)
}

type PlayerService struct {
	playerStore PlayerRecords
}

func NewPlayerService(playerStore PlayerRecords) *PlayerService {
	return &PlayerService{playerStore: playerStore}
}

func (s *PlayerService) GetByUserID(ctx context.Context, userId int64) (*models.Player, error) {
	return s.playerStore.GetByUserID(ctx, userId)
}

// Register creates a jugadores row for the caller. The sponsor must be an
// existing alias, or the literal "auto" which resolves to the most recently
// registered player. Returns the resolved sponsor alias.
func (s *PlayerService) Register(ctx context.Context, userId int64, rawPhone, alias, sponsor string) (string, error) {
	phone, ok := NormalizePhone(rawPhone)
	if !ok {
		return "", ErrInvalidPhone
	}

	if strings.EqualFold(sponsor, "auto") {
		latest, err := s.playerStore.LatestAlias(ctx)
		if err != nil {
			return "", err
		}
		if latest == "" {
			return "", ErrNoPlayersForAuto
		}
		sponsor = latest
	} else {
		exists, err := s.playerStore.AliasExists(ctx, sponsor)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", ErrSponsorNotFound
		}
	}

	err := s.playerStore.Create(ctx, models.Player{
		UserId:  userId,
		Phone:   phone,
		Alias:   alias,
		Sponsor: sponsor,
	})
	if err != nil {
		return "", err
	}

	return sponsor, nil
}

// ChangePhone validates and stores a new Nequi number for the caller.
func (s *PlayerService) ChangePhone(ctx context.Context, userId int64, rawPhone string) error {
	phone, ok := NormalizePhone(rawPhone)
	if !ok {
		return ErrInvalidPhone
	}
	return s.playerStore.UpdatePhone(ctx, userId, phone)
}

func (s *PlayerService) List(ctx context.Context) ([]*models.Player, error) {
	return s.playerStore.List(ctx)
}
