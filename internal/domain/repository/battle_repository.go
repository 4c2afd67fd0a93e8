package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Learnmade/livechallenge/internal/common"
	"github.com/Learnmade/livechallenge/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type BattleRepository interface {
	Create(ctx context.Context, battle *model.Battle) error
	FindBySlug(ctx context.Context, slug string) (*model.Battle, error)
	ListActive(ctx context.Context, limit int) ([]model.Battle, error)

	// Lock takes a row lock on the battle for the duration of the
	// transaction, serializing rank assignment among concurrent passers.
	Lock(ctx context.Context, tx *sql.Tx, battleID string) error
}

type pgBattleRepository struct {
	db *sql.DB
}

func NewPgBattleRepository(db *sql.DB) BattleRepository {
	return &pgBattleRepository{db: db}
}

const battleColumns = `id, slug, challenge_id, starts_at, ends_at, is_active, created_at`

func (r *pgBattleRepository) Create(ctx context.Context, b *model.Battle) error {
	query := `INSERT INTO battles (id, slug, challenge_id, starts_at, ends_at, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, b.ID, b.Slug, b.ChallengeID, b.StartsAt, b.EndsAt, b.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("battle with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgBattleRepository.Create: %w", err)
	}
	return nil
}

func (r *pgBattleRepository) FindBySlug(ctx context.Context, slug string) (*model.Battle, error) {
	query := `SELECT ` + battleColumns + ` FROM battles WHERE slug = $1`
	b := &model.Battle{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&b.ID, &b.Slug, &b.ChallengeID, &b.StartsAt, &b.EndsAt, &b.IsActive, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgBattleRepository.FindBySlug: %w", err)
	}
	return b, nil
}

func (r *pgBattleRepository) Lock(ctx context.Context, tx *sql.Tx, battleID string) error {
	if _, err := tx.ExecContext(ctx, `SELECT id FROM battles WHERE id = $1 FOR UPDATE`, battleID); err != nil {
		return fmt.Errorf("pgBattleRepository.Lock: %w", err)
	}
	return nil
}

func (r *pgBattleRepository) ListActive(ctx context.Context, limit int) ([]model.Battle, error) {
	query := `SELECT ` + battleColumns + ` FROM battles
	          WHERE is_active = TRUE AND ends_at > CURRENT_TIMESTAMP
	          ORDER BY starts_at ASC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgBattleRepository.ListActive: %w", err)
	}
	defer rows.Close()

	var battles []model.Battle
	for rows.Next() {
		b := model.Battle{}
		if err := rows.Scan(&b.ID, &b.Slug, &b.ChallengeID, &b.StartsAt, &b.EndsAt, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgBattleRepository.ListActive scan: %w", err)
		}
		battles = append(battles, b)
	}
	return battles, rows.Err()
}
