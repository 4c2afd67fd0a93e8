package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/Learnmade/livechallenge/internal/app/grading"
	"github.com/Learnmade/livechallenge/internal/app/scoring"
	"github.com/Learnmade/livechallenge/internal/common"
	"github.com/Learnmade/livechallenge/internal/domain/model"
	"github.com/Learnmade/livechallenge/internal/domain/repository"
	"github.com/Learnmade/livechallenge/internal/platform/cache"
	"github.com/Learnmade/livechallenge/internal/platform/metrics"

	"github.com/google/uuid"
)

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	challengeRepo  repository.ChallengeRepository
	battleRepo     repository.BattleRepository
	pipeline       *grading.Pipeline
	store          cache.Store
	db             *sql.DB
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	chalRepo repository.ChallengeRepository,
	battleRepo repository.BattleRepository,
	pipeline *grading.Pipeline,
	store cache.Store,
	db *sql.DB,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		challengeRepo:  chalRepo,
		battleRepo:     battleRepo,
		pipeline:       pipeline,
		store:          store,
		db:             db,
	}
}

// SubmitChallenge grades code against a persistent challenge and appends the
// scored result to the ledger. The submission row is written in one
// transaction together with the first-solve claim, so the claim's outcome and
// the points it implies can never disagree.
func (s *SubmissionService) SubmitChallenge(ctx context.Context, userID, language string, index int, code string) (*model.Submission, error) {
	challenge, err := s.challengeRepo.FindByLanguageIndex(ctx, language, index)
	if err != nil {
		return nil, common.Errorf("challenge not found: %w", err)
	}
	if !challenge.IsActive {
		return nil, common.Errorf("challenge is not active: %w", common.ErrNotFound)
	}

	testCases, err := s.challengeRepo.GetTestCases(ctx, challenge.ID)
	if err != nil {
		return nil, common.Errorf("failed to load test cases: %w", err)
	}
	if len(testCases) == 0 {
		return nil, common.Errorf("challenge %s has no test cases: %w", challenge.ID, common.ErrInternalServer)
	}

	gradeStart := time.Now()
	verdict := s.pipeline.Grade(ctx, code, challenge.Language, testCases)
	metrics.GradingDuration.Observe(time.Since(gradeStart).Seconds())
	metrics.SubmissionsGraded.WithLabelValues(string(verdict.Status)).Inc()

	prior := scoring.PriorState{}
	prior.SolvedByUser, err = s.submissionRepo.HasUserPassed(ctx, challenge.ID, userID)
	if err != nil {
		return nil, common.Errorf("failed to check prior passes: %w", err)
	}
	if _, err := s.submissionRepo.FindFirstPassed(ctx, challenge.ID); err == nil {
		prior.ChallengeSolved = true
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, common.Errorf("failed to check first solve: %w", err)
	}

	submission := s.buildSubmission(userID, challenge, nil, code, verdict)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The read above is only a hint; the claim insert is what actually
	// decides the race between concurrent passing submissions.
	if verdict.AllPassed && !prior.SolvedByUser && !prior.ChallengeSolved {
		won, err := s.submissionRepo.ClaimFirstSolve(ctx, tx, challenge.ID, userID, submission.ID)
		if err != nil {
			return nil, common.Errorf("failed to claim first solve: %w", err)
		}
		prior.ChallengeSolved = !won
	}

	award := scoring.ScoreChallenge(challenge.Points, verdict.AllPassed, prior)
	submission.PointsEarned = award.Points
	submission.IsFirstSolve = award.IsFirstSolve

	if err := s.submissionRepo.Create(ctx, tx, submission); err != nil {
		return nil, common.Errorf("failed to record submission: %w", err)
	}
	if err := s.challengeRepo.IncrementSubmissionCount(ctx, tx, challenge.ID); err != nil {
		return nil, common.Errorf("failed to bump submission counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit submission: %w", err)
	}

	if award.IsFirstSolve {
		metrics.FirstSolves.Inc()
	}
	s.invalidateChallengeViews(ctx, challenge.Language, challenge.Index)

	log.Printf("submission %s graded %s for user %s on %s/%d (%d points)",
		submission.ID, submission.Status, userID, challenge.Language, challenge.Index, submission.PointsEarned)
	return submission, nil
}

// SubmitBattle grades code inside a timed battle. Rank among passing
// submissions is decided by arrival order; the battle row is locked while
// counting, so concurrent passers serialize and cannot observe the same rank.
func (s *SubmissionService) SubmitBattle(ctx context.Context, userID, battleSlug, code string) (*model.Submission, error) {
	battle, err := s.battleRepo.FindBySlug(ctx, battleSlug)
	if err != nil {
		return nil, common.Errorf("battle not found: %w", err)
	}
	if !battle.Open(time.Now()) {
		return nil, common.Errorf("battle is not open for submissions: %w", common.ErrForbidden)
	}

	challenge, err := s.challengeRepo.FindByID(ctx, battle.ChallengeID)
	if err != nil {
		return nil, common.Errorf("battle challenge not found: %w", err)
	}
	testCases, err := s.challengeRepo.GetTestCases(ctx, challenge.ID)
	if err != nil {
		return nil, common.Errorf("failed to load test cases: %w", err)
	}

	gradeStart := time.Now()
	verdict := s.pipeline.Grade(ctx, code, challenge.Language, testCases)
	metrics.GradingDuration.Observe(time.Since(gradeStart).Seconds())
	metrics.SubmissionsGraded.WithLabelValues(string(verdict.Status)).Inc()

	alreadyPassed, err := s.submissionRepo.HasUserPassedInBattle(ctx, battle.ID, userID)
	if err != nil {
		return nil, common.Errorf("failed to check battle passes: %w", err)
	}

	submission := s.buildSubmission(userID, challenge, &battle.ID, code, verdict)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	switch {
	case verdict.AllPassed && alreadyPassed:
		// Repeat pass: recorded for history, no additional award.
	case verdict.AllPassed:
		// READ COMMITTED alone lets two uncommitted passers count the same
		// rank; the row lock holds until commit.
		if err := s.battleRepo.Lock(ctx, tx, battle.ID); err != nil {
			return nil, common.Errorf("failed to lock battle: %w", err)
		}
		passedBefore, err := s.submissionRepo.CountBattlePassed(ctx, tx, battle.ID)
		if err != nil {
			return nil, common.Errorf("failed to count battle passes: %w", err)
		}
		submission.PointsEarned = scoring.ScoreBattle(passedBefore+1, true)
	default:
		submission.PointsEarned = scoring.ScoreBattle(0, false)
	}

	if err := s.submissionRepo.Create(ctx, tx, submission); err != nil {
		return nil, common.Errorf("failed to record battle submission: %w", err)
	}
	if err := s.challengeRepo.IncrementSubmissionCount(ctx, tx, challenge.ID); err != nil {
		return nil, common.Errorf("failed to bump submission counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit battle submission: %w", err)
	}

	s.invalidateChallengeViews(ctx, challenge.Language, challenge.Index)
	return submission, nil
}

func (s *SubmissionService) GetSubmission(ctx context.Context, userID, submissionID string) (*model.Submission, error) {
	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, common.ErrForbidden
	}
	return sub, nil
}

func (s *SubmissionService) ListMySubmissions(ctx context.Context, userID string, limit, offset int) ([]model.Submission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	subs, err := s.submissionRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, common.Errorf("failed to list submissions: %w", err)
	}
	// Code bodies are heavy; history listings don't need them.
	for i := range subs {
		subs[i].Code = ""
	}
	return subs, nil
}

func (s *SubmissionService) buildSubmission(userID string, challenge *model.Challenge, battleID *string, code string, verdict grading.Verdict) *model.Submission {
	sub := &model.Submission{
		ID:              uuid.NewString(),
		UserID:          userID,
		ChallengeID:     challenge.ID,
		BattleID:        battleID,
		Code:            code,
		Language:        challenge.Language,
		Status:          verdict.Status,
		FailureReason:   verdict.FailureReason,
		ExecutionTimeMs: verdict.ExecutionTimeMs,
		SubmittedAt:     time.Now().UTC(),
	}
	for _, tr := range verdict.TestResults {
		tr.ID = uuid.NewString()
		tr.SubmissionID = sub.ID
		sub.TestResults = append(sub.TestResults, tr)
	}
	return sub
}

// invalidateChallengeViews drops every cached aggregate a new ledger entry
// can affect. Failures here only shorten freshness, so they are logged, not
// propagated.
func (s *SubmissionService) invalidateChallengeViews(ctx context.Context, language string, index int) {
	keys := []string{
		cache.ParticipantsKey(language, index),
		cache.ChallengeLeaderboardKey(language, index),
	}
	for _, period := range []string{"", "all", "week", "month"} {
		keys = append(keys,
			cache.GlobalLeaderboardKey(language, period),
			cache.GlobalLeaderboardKey("", period),
		)
	}
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			log.Printf("cache invalidation failed for %q: %v", key, err)
		}
	}
}
