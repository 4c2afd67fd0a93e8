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

type ChallengeRepository interface {
	Create(ctx context.Context, tx *sql.Tx, challenge *model.Challenge) error
	FindByID(ctx context.Context, id string) (*model.Challenge, error)
	FindByLanguageIndex(ctx context.Context, language string, index int) (*model.Challenge, error)
	FindBySlug(ctx context.Context, slug string) (*model.Challenge, error)
	List(ctx context.Context, language string, limit, offset int) ([]model.Challenge, error)
	GetTestCases(ctx context.Context, challengeID string) ([]model.ChallengeTestCase, error)
	IncrementSubmissionCount(ctx context.Context, tx *sql.Tx, challengeID string) error
}

type pgChallengeRepository struct {
	db *sql.DB
}

func NewPgChallengeRepository(db *sql.DB) ChallengeRepository {
	return &pgChallengeRepository{db: db}
}

const challengeColumns = `id, language, idx, title, slug, description, difficulty, points, is_active, submission_count, created_at, updated_at`

func (r *pgChallengeRepository) Create(ctx context.Context, tx *sql.Tx, c *model.Challenge) error {
	query := `INSERT INTO challenges (id, language, idx, title, slug, description, difficulty, points, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := tx.ExecContext(ctx, query, c.ID, c.Language, c.Index, c.Title, c.Slug, c.Description, c.Difficulty, c.Points, c.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("challenge with this slug or language/index already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgChallengeRepository.Create: %w", err)
	}

	caseQuery := `INSERT INTO challenge_test_cases (id, challenge_id, input, expected_output, is_hidden, sort_order)
	              VALUES ($1, $2, $3, $4, $5, $6)`
	for _, tc := range c.TestCases {
		if _, err := tx.ExecContext(ctx, caseQuery, tc.ID, c.ID, tc.Input, tc.ExpectedOutput, tc.IsHidden, tc.SortOrder); err != nil {
			return fmt.Errorf("pgChallengeRepository.Create test case: %w", err)
		}
	}
	return nil
}

func (r *pgChallengeRepository) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *pgChallengeRepository) FindByLanguageIndex(ctx context.Context, language string, index int) (*model.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE language = $1 AND idx = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, language, index))
}

func (r *pgChallengeRepository) FindBySlug(ctx context.Context, slug string) (*model.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE slug = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, slug))
}

func (r *pgChallengeRepository) scanOne(row *sql.Row) (*model.Challenge, error) {
	c := &model.Challenge{}
	err := row.Scan(
		&c.ID, &c.Language, &c.Index, &c.Title, &c.Slug, &c.Description, &c.Difficulty,
		&c.Points, &c.IsActive, &c.SubmissionCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgChallengeRepository.scanOne: %w", err)
	}
	return c, nil
}

func (r *pgChallengeRepository) List(ctx context.Context, language string, limit, offset int) ([]model.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges
	          WHERE is_active = TRUE AND ($1 = '' OR language = $1)
	          ORDER BY language, idx
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, language, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.List: %w", err)
	}
	defer rows.Close()

	var challenges []model.Challenge
	for rows.Next() {
		c := model.Challenge{}
		if err := rows.Scan(
			&c.ID, &c.Language, &c.Index, &c.Title, &c.Slug, &c.Description, &c.Difficulty,
			&c.Points, &c.IsActive, &c.SubmissionCount, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgChallengeRepository.List scan: %w", err)
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

func (r *pgChallengeRepository) GetTestCases(ctx context.Context, challengeID string) ([]model.ChallengeTestCase, error) {
	query := `SELECT id, challenge_id, input, expected_output, is_hidden, sort_order
	          FROM challenge_test_cases WHERE challenge_id = $1 ORDER BY sort_order`
	rows, err := r.db.QueryContext(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.GetTestCases: %w", err)
	}
	defer rows.Close()

	var cases []model.ChallengeTestCase
	for rows.Next() {
		tc := model.ChallengeTestCase{}
		if err := rows.Scan(&tc.ID, &tc.ChallengeID, &tc.Input, &tc.ExpectedOutput, &tc.IsHidden, &tc.SortOrder); err != nil {
			return nil, fmt.Errorf("pgChallengeRepository.GetTestCases scan: %w", err)
		}
		cases = append(cases, tc)
	}
	return cases, rows.Err()
}

func (r *pgChallengeRepository) IncrementSubmissionCount(ctx context.Context, tx *sql.Tx, challengeID string) error {
	query := `UPDATE challenges SET submission_count = submission_count + 1, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, challengeID); err != nil {
		return fmt.Errorf("pgChallengeRepository.IncrementSubmissionCount: %w", err)
	}
	return nil
}
