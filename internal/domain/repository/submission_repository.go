package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Learnmade/livechallenge/internal/common"
	"github.com/Learnmade/livechallenge/internal/domain/model"
)

// SubmissionRepository is the append-only ledger of grading attempts. Create
// is the only mutation of submission rows; derived views always recompute
// from here.
type SubmissionRepository interface {
	Create(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, error)

	// ClaimFirstSolve atomically claims the first-solve marker for a
	// challenge. It reports true for exactly one caller per challenge, ever,
	// regardless of how many transactions race on it.
	ClaimFirstSolve(ctx context.Context, tx *sql.Tx, challengeID, userID, submissionID string) (bool, error)
	FindFirstPassed(ctx context.Context, challengeID string) (*model.Submission, error)
	HasUserPassed(ctx context.Context, challengeID, userID string) (bool, error)

	GlobalLeaderboard(ctx context.Context, language string, since time.Time, limit int) ([]model.LeaderboardEntry, error)
	ChallengeLeaderboard(ctx context.Context, challengeID string, limit int) ([]model.ChallengeLeaderboardEntry, error)

	LatestPerUserSince(ctx context.Context, challengeID string, since time.Time) ([]model.Submission, error)
	DeleteForUserChallengeSince(ctx context.Context, challengeID, userID string, since time.Time) (int64, error)

	CountBattlePassed(ctx context.Context, tx *sql.Tx, battleID string) (int, error)
	HasUserPassedInBattle(ctx context.Context, battleID, userID string) (bool, error)
	BattleStandings(ctx context.Context, battleID string, limit int) ([]model.BattleStanding, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) Create(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	query := `INSERT INTO submissions
	          (id, user_id, challenge_id, battle_id, code, language, status, failure_reason, execution_time_ms, points_earned, is_first_solve, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := tx.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.ChallengeID, sub.BattleID, sub.Code, sub.Language,
		sub.Status, sub.FailureReason, sub.ExecutionTimeMs, sub.PointsEarned, sub.IsFirstSolve, sub.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}

	resultQuery := `INSERT INTO submission_test_results
	                (id, submission_id, input, expected_output, actual_output, passed, execution_time_ms, error, sort_order)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, tr := range sub.TestResults {
		if _, err := tx.ExecContext(ctx, resultQuery,
			tr.ID, sub.ID, tr.Input, tr.ExpectedOutput, tr.ActualOutput, tr.Passed, tr.ExecutionTimeMs, tr.Error, tr.SortOrder,
		); err != nil {
			return fmt.Errorf("pgSubmissionRepository.Create test result: %w", err)
		}
	}
	return nil
}

const submissionColumns = `id, user_id, challenge_id, battle_id, code, language, status, failure_reason, execution_time_ms, points_earned, is_first_solve, submitted_at`

func scanSubmission(row interface{ Scan(...interface{}) error }) (*model.Submission, error) {
	sub := &model.Submission{}
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.ChallengeID, &sub.BattleID, &sub.Code, &sub.Language,
		&sub.Status, &sub.FailureReason, &sub.ExecutionTimeMs, &sub.PointsEarned, &sub.IsFirstSolve, &sub.SubmittedAt,
	)
	return sub, err
}

func (r *pgSubmissionRepository) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.GetByID: %w", err)
	}

	resultQuery := `SELECT id, submission_id, input, expected_output, actual_output, passed, execution_time_ms, error, sort_order
	                FROM submission_test_results WHERE submission_id = $1 ORDER BY sort_order`
	rows, err := r.db.QueryContext(ctx, resultQuery, id)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetByID results: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		tr := model.TestCaseResult{}
		if err := rows.Scan(&tr.ID, &tr.SubmissionID, &tr.Input, &tr.ExpectedOutput, &tr.ActualOutput, &tr.Passed, &tr.ExecutionTimeMs, &tr.Error, &tr.SortOrder); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.GetByID results scan: %w", err)
		}
		sub.TestResults = append(sub.TestResults, tr)
	}
	return sub, rows.Err()
}

func (r *pgSubmissionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions
	          WHERE user_id = $1 ORDER BY submitted_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByUser: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListByUser scan: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (r *pgSubmissionRepository) ClaimFirstSolve(ctx context.Context, tx *sql.Tx, challengeID, userID, submissionID string) (bool, error) {
	// challenge_id is the primary key, so exactly one insert ever lands.
	query := `INSERT INTO challenge_first_solves (challenge_id, user_id, submission_id)
	          VALUES ($1, $2, $3) ON CONFLICT (challenge_id) DO NOTHING`
	res, err := tx.ExecContext(ctx, query, challengeID, userID, submissionID)
	if err != nil {
		return false, fmt.Errorf("pgSubmissionRepository.ClaimFirstSolve: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgSubmissionRepository.ClaimFirstSolve rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *pgSubmissionRepository) FindFirstPassed(ctx context.Context, challengeID string) (*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions
	          WHERE challenge_id = $1 AND status = 'passed' AND battle_id IS NULL
	          ORDER BY submitted_at ASC LIMIT 1`
	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, challengeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.FindFirstPassed: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepository) HasUserPassed(ctx context.Context, challengeID, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM submissions
	          WHERE challenge_id = $1 AND user_id = $2 AND status = 'passed' AND battle_id IS NULL)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, challengeID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgSubmissionRepository.HasUserPassed: %w", err)
	}
	return exists, nil
}

func (r *pgSubmissionRepository) GlobalLeaderboard(ctx context.Context, language string, since time.Time, limit int) ([]model.LeaderboardEntry, error) {
	query := `SELECT s.user_id, u.username,
	                 COALESCE(SUM(s.points_earned), 0) AS total_points,
	                 COUNT(DISTINCT s.challenge_id) FILTER (WHERE s.status = 'passed') AS challenges_solved,
	                 COUNT(*) AS submission_count,
	                 MAX(s.submitted_at) AS last_activity
	          FROM submissions s
	          JOIN users u ON u.id = s.user_id
	          WHERE ($1 = '' OR s.language = $1) AND s.submitted_at >= $2
	          GROUP BY s.user_id, u.username
	          ORDER BY total_points DESC, last_activity ASC
	          LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, language, since, limit)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GlobalLeaderboard: %w", err)
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		e := model.LeaderboardEntry{}
		if err := rows.Scan(&e.UserID, &e.Username, &e.TotalPoints, &e.ChallengesSolved, &e.SubmissionCount, &e.LastActivity); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.GlobalLeaderboard scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *pgSubmissionRepository) ChallengeLeaderboard(ctx context.Context, challengeID string, limit int) ([]model.ChallengeLeaderboardEntry, error) {
	// Earliest passing submission per user, first solver ranked first.
	query := `SELECT user_id, username, points_earned, is_first_solve, solved_at FROM (
	              SELECT DISTINCT ON (s.user_id)
	                     s.user_id, u.username, s.points_earned, s.is_first_solve, s.submitted_at AS solved_at
	              FROM submissions s
	              JOIN users u ON u.id = s.user_id
	              WHERE s.challenge_id = $1 AND s.status = 'passed' AND s.battle_id IS NULL
	              ORDER BY s.user_id, s.submitted_at ASC
	          ) solves
	          ORDER BY solved_at ASC
	          LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, challengeID, limit)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ChallengeLeaderboard: %w", err)
	}
	defer rows.Close()

	var entries []model.ChallengeLeaderboardEntry
	for rows.Next() {
		e := model.ChallengeLeaderboardEntry{}
		if err := rows.Scan(&e.UserID, &e.Username, &e.PointsEarned, &e.IsFirstSolve, &e.SolvedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ChallengeLeaderboard scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *pgSubmissionRepository) LatestPerUserSince(ctx context.Context, challengeID string, since time.Time) ([]model.Submission, error) {
	query := `SELECT id, user_id, username, status, submitted_at FROM (
	              SELECT DISTINCT ON (s.user_id)
	                     s.id, s.user_id, u.username, s.status, s.submitted_at
	              FROM submissions s
	              JOIN users u ON u.id = s.user_id
	              WHERE s.challenge_id = $1 AND s.submitted_at >= $2
	              ORDER BY s.user_id, s.submitted_at DESC
	          ) latest
	          ORDER BY submitted_at DESC`
	rows, err := r.db.QueryContext(ctx, query, challengeID, since)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.LatestPerUserSince: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		sub := model.Submission{}
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Username, &sub.Status, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.LatestPerUserSince scan: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *pgSubmissionRepository) DeleteForUserChallengeSince(ctx context.Context, challengeID, userID string, since time.Time) (int64, error) {
	query := `DELETE FROM submissions WHERE challenge_id = $1 AND user_id = $2 AND submitted_at >= $3`
	res, err := r.db.ExecContext(ctx, query, challengeID, userID, since)
	if err != nil {
		return 0, fmt.Errorf("pgSubmissionRepository.DeleteForUserChallengeSince: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pgSubmissionRepository.DeleteForUserChallengeSince rows affected: %w", err)
	}
	return affected, nil
}

func (r *pgSubmissionRepository) CountBattlePassed(ctx context.Context, tx *sql.Tx, battleID string) (int, error) {
	query := `SELECT COUNT(DISTINCT user_id) FROM submissions WHERE battle_id = $1 AND status = 'passed'`
	var count int
	if err := tx.QueryRowContext(ctx, query, battleID).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgSubmissionRepository.CountBattlePassed: %w", err)
	}
	return count, nil
}

func (r *pgSubmissionRepository) HasUserPassedInBattle(ctx context.Context, battleID, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM submissions WHERE battle_id = $1 AND user_id = $2 AND status = 'passed')`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, battleID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgSubmissionRepository.HasUserPassedInBattle: %w", err)
	}
	return exists, nil
}

func (r *pgSubmissionRepository) BattleStandings(ctx context.Context, battleID string, limit int) ([]model.BattleStanding, error) {
	query := `SELECT user_id, username, points_earned, submitted_at FROM (
	              SELECT DISTINCT ON (s.user_id)
	                     s.user_id, u.username, s.points_earned, s.submitted_at
	              FROM submissions s
	              JOIN users u ON u.id = s.user_id
	              WHERE s.battle_id = $1 AND s.status = 'passed'
	              ORDER BY s.user_id, s.submitted_at ASC
	          ) standings
	          ORDER BY submitted_at ASC
	          LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, battleID, limit)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.BattleStandings: %w", err)
	}
	defer rows.Close()

	var standings []model.BattleStanding
	for rows.Next() {
		s := model.BattleStanding{}
		if err := rows.Scan(&s.UserID, &s.Username, &s.PointsEarned, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.BattleStandings scan: %w", err)
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}
