package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solutions-systems/bolas-locas/internal/websvc/models"
)

// ErrDuplicatePlayer signals that the caller's Telegram account already has a
// jugadores row.
var ErrDuplicatePlayer = errors.New("player already registered")

type PlayerStore struct {
	db *pgxpool.Pool
}

func NewPlayerStore(db *pgxpool.Pool) *PlayerStore {
	return &PlayerStore{db: db}
}

func (s *PlayerStore) GetByUserID(ctx context.Context, userId int64) (*models.Player, error) {
	row := s.db.QueryRow(ctx, `
        SELECT user_id, numero_celular, alias, sponsor, saldo, fecha_registro
        FROM jugadores
        WHERE user_id = $1
    `, userId)

	p := &models.Player{}
	err := row.Scan(
		&p.UserId,
		&p.Phone,
		&p.Alias,
		&p.Sponsor,
		&p.Balance,
		&p.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // not registered
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return p, nil
}

func (s *PlayerStore) AliasExists(ctx context.Context, alias string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM jugadores WHERE alias = $1)`,
		alias,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check alias: %w", err)
	}
	return exists, nil
}

// LatestAlias returns the alias of the most recently registered player, or ""
// when the table is empty. Used when a registration asks for sponsor "auto".
func (s *PlayerStore) LatestAlias(ctx context.Context) (string, error) {
	var alias string
	err := s.db.QueryRow(ctx, `
        SELECT alias FROM jugadores
        ORDER BY fecha_registro DESC
        LIMIT 1
    `).Scan(&alias)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get latest alias: %w", err)
	}
	return alias, nil
}

// Create inserts a new jugadores row. The user_id primary key makes
// registration idempotent-rejecting: a second attempt for the same Telegram
// account fails with ErrDuplicatePlayer.
func (s *PlayerStore) Create(ctx context.Context, p models.Player) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO jugadores (user_id, numero_celular, alias, sponsor, saldo)
        VALUES ($1, $2, $3, $4, 0)
    `, p.UserId, p.Phone, p.Alias, p.Sponsor)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePlayer
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (s *PlayerStore) UpdatePhone(ctx context.Context, userId int64, phone string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE jugadores SET numero_celular = $1 WHERE user_id = $2`,
		phone, userId,
	)
	if err != nil {
		return fmt.Errorf("failed to update phone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("no player row updated")
	}
	return nil
}

// List returns every registered player, oldest registration first. The bulk
// simulation walks this set.
func (s *PlayerStore) List(ctx context.Context) ([]*models.Player, error) {
	rows, err := s.db.Query(ctx, `
        SELECT user_id, numero_celular, alias, sponsor, saldo, fecha_registro
        FROM jugadores
        ORDER BY fecha_registro
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p := &models.Player{}
		if err := rows.Scan(&p.UserId, &p.Phone, &p.Alias, &p.Sponsor, &p.Balance, &p.RegisteredAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}

	return players, rows.Err()
}
