package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/Learnmade/livechallenge/internal/app/grading"
	"github.com/Learnmade/livechallenge/internal/common"
	"github.com/Learnmade/livechallenge/internal/domain/model"
	"github.com/Learnmade/livechallenge/internal/domain/repository"
	"github.com/Learnmade/livechallenge/internal/platform/cache"
	"github.com/Learnmade/livechallenge/internal/platform/sandbox"
)

// The service only ever begins, commits, and rolls back transactions itself;
// statement traffic goes through the repositories, which the fakes absorb. A
// no-op driver gives BeginTx something real to hand out.

type noopDriver struct{}

func (noopDriver) Open(string) (driver.Conn, error) { return noopConn{}, nil }

type noopConn struct{}

func (noopConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (noopConn) Close() error                        { return nil }
func (noopConn) Begin() (driver.Tx, error)           { return noopTx{}, nil }

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

func init() {
	sql.Register("nooptx", noopDriver{})
}

func newNoopDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("nooptx", "")
	if err != nil {
		t.Fatalf("open noop db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	f.created = append(f.created, sub)
	return nil
}

func (f *fakeSubmissionRepo) HasUserPassed(ctx context.Context, challengeID, userID string) (bool, error) {
	return f.userPassed, nil
}

func (f *fakeSubmissionRepo) FindFirstPassed(ctx context.Context, challengeID string) (*model.Submission, error) {
	if f.firstPassed == nil {
		return nil, common.ErrNotFound
	}
	return f.firstPassed, nil
}

func (f *fakeSubmissionRepo) ClaimFirstSolve(ctx context.Context, tx *sql.Tx, challengeID, userID, submissionID string) (bool, error) {
	f.claimCalls++
	return f.claimWon, nil
}

func (f *fakeSubmissionRepo) CountBattlePassed(ctx context.Context, tx *sql.Tx, battleID string) (int, error) {
	if f.lockState != nil {
		f.lockedWhenCounted = *f.lockState
	}
	return f.battlePassed, nil
}

func (f *fakeSubmissionRepo) HasUserPassedInBattle(ctx context.Context, battleID, userID string) (bool, error) {
	return f.userPassedInBattle, nil
}

type fakeBattleRepo struct {
	repository.BattleRepository
	battle *model.Battle
	locked bool
}

func (f *fakeBattleRepo) FindBySlug(ctx context.Context, slug string) (*model.Battle, error) {
	if f.battle == nil {
		return nil, common.ErrNotFound
	}
	return f.battle, nil
}

func (f *fakeBattleRepo) Lock(ctx context.Context, tx *sql.Tx, battleID string) error {
	f.locked = true
	return nil
}

// verdictRunner passes or fails every case uniformly.
type verdictRunner struct{ pass bool }

func (r verdictRunner) Execute(ctx context.Context, code, language string, testCases []sandbox.TestCase) (*sandbox.ExecutionResult, error) {
	results := make([]sandbox.CaseResult, 0, len(testCases))
	for _, tc := range testCases {
		out := tc.ExpectedOutput
		if !r.pass {
			out = "nope"
		}
		results = append(results, sandbox.CaseResult{
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			ActualOutput:   out,
			Passed:         r.pass,
		})
	}
	return &sandbox.ExecutionResult{TestResults: results}, nil
}

func newSubmissionFixture(t *testing.T, subRepo *fakeSubmissionRepo, battleRepo *fakeBattleRepo, pass bool) *SubmissionService {
	t.Helper()
	chalRepo := &fakeChallengeRepo{
		challenge: &model.Challenge{ID: "c1", Language: "python", Index: 1, Points: 100, IsActive: true},
		testCases: []model.ChallengeTestCase{{Input: "1", ExpectedOutput: "2"}},
	}
	pipeline := grading.NewPipeline(verdictRunner{pass: pass}, time.Second, 1000)
	return NewSubmissionService(subRepo, chalRepo, battleRepo, pipeline, cache.NewMemoryStore(nil), newNoopDB(t))
}

func TestSubmitChallengeFirstSolveWinsFullPoints(t *testing.T) {
	subRepo := &fakeSubmissionRepo{claimWon: true}
	svc := newSubmissionFixture(t, subRepo, &fakeBattleRepo{}, true)

	sub, err := svc.SubmitChallenge(context.Background(), "u1", "python", 1, "print(2)")
	if err != nil {
		t.Fatalf("SubmitChallenge: %v", err)
	}
	if sub.PointsEarned != 100 || !sub.IsFirstSolve {
		t.Fatalf("got %d points (first %v), want 100 points as first solver", sub.PointsEarned, sub.IsFirstSolve)
	}
	if subRepo.claimCalls != 1 {
		t.Fatalf("claim attempted %d times, want 1", subRepo.claimCalls)
	}
	if len(subRepo.created) != 1 {
		t.Fatalf("%d submissions recorded, want 1", len(subRepo.created))
	}
}

func TestSubmitChallengeClaimLoserGetsFraction(t *testing.T) {
	// The pre-check saw no solver, but another transaction won the claim.
	subRepo := &fakeSubmissionRepo{claimWon: false}
	svc := newSubmissionFixture(t, subRepo, &fakeBattleRepo{}, true)

	sub, err := svc.SubmitChallenge(context.Background(), "u2", "python", 1, "print(2)")
	if err != nil {
		t.Fatalf("SubmitChallenge: %v", err)
	}
	if sub.PointsEarned != 80 || sub.IsFirstSolve {
		t.Fatalf("got %d points (first %v), want 80 points without the bonus", sub.PointsEarned, sub.IsFirstSolve)
	}
}

func TestSubmitChallengeAlreadySolvedElsewhereSkipsClaim(t *testing.T) {
	subRepo := &fakeSubmissionRepo{firstPassed: &model.Submission{UserID: "other"}}
	svc := newSubmissionFixture(t, subRepo, &fakeBattleRepo{}, true)

	sub, err := svc.SubmitChallenge(context.Background(), "u2", "python", 1, "print(2)")
	if err != nil {
		t.Fatalf("SubmitChallenge: %v", err)
	}
	if subRepo.claimCalls != 0 {
		t.Fatal("claim attempted although the challenge is known solved")
	}
	if sub.PointsEarned != 80 || sub.IsFirstSolve {
		t.Fatalf("got %d points (first %v), want 80 as a later solver", sub.PointsEarned, sub.IsFirstSolve)
	}
}

func TestSubmitChallengeRepeatPassEarnsNothing(t *testing.T) {
	subRepo := &fakeSubmissionRepo{userPassed: true}
	svc := newSubmissionFixture(t, subRepo, &fakeBattleRepo{}, true)

	sub, err := svc.SubmitChallenge(context.Background(), "u1", "python", 1, "print(2)")
	if err != nil {
		t.Fatalf("SubmitChallenge: %v", err)
	}
	if sub.PointsEarned != 0 || sub.IsFirstSolve {
		t.Fatalf("repeat pass awarded %d points (first %v), want 0", sub.PointsEarned, sub.IsFirstSolve)
	}
	if subRepo.claimCalls != 0 {
		t.Fatal("claim attempted for a user who already passed")
	}
	if len(subRepo.created) != 1 {
		t.Fatal("repeat pass must still be recorded")
	}
}

func TestSubmitChallengeFailedVerdictRecordedWithoutClaim(t *testing.T) {
	subRepo := &fakeSubmissionRepo{}
	svc := newSubmissionFixture(t, subRepo, &fakeBattleRepo{}, false)

	sub, err := svc.SubmitChallenge(context.Background(), "u1", "python", 1, "print(3)")
	if err != nil {
		t.Fatalf("SubmitChallenge: %v", err)
	}
	if sub.Status != model.StatusFailed || sub.PointsEarned != 0 {
		t.Fatalf("got %s / %d points, want failed / 0", sub.Status, sub.PointsEarned)
	}
	if subRepo.claimCalls != 0 {
		t.Fatal("claim attempted for a failing verdict")
	}
}

func openBattle() *model.Battle {
	now := time.Now().UTC()
	return &model.Battle{
		ID:          "b1",
		Slug:        "friday-night",
		ChallengeID: "c1",
		StartsAt:    now.Add(-time.Minute),
		EndsAt:      now.Add(time.Hour),
		IsActive:    true,
	}
}

func TestSubmitBattleLocksBattleBeforeRanking(t *testing.T) {
	battleRepo := &fakeBattleRepo{battle: openBattle()}
	subRepo := &fakeSubmissionRepo{battlePassed: 1, lockState: &battleRepo.locked}
	svc := newSubmissionFixture(t, subRepo, battleRepo, true)

	sub, err := svc.SubmitBattle(context.Background(), "u1", "friday-night", "print(2)")
	if err != nil {
		t.Fatalf("SubmitBattle: %v", err)
	}
	if !subRepo.lockedWhenCounted {
		t.Fatal("rank counted without holding the battle lock")
	}
	// One user passed before this one, so this submission ranks second.
	if sub.PointsEarned != 150 {
		t.Fatalf("got %d points, want 150 for rank 2", sub.PointsEarned)
	}
}

func TestSubmitBattleFailedAttemptGetsParticipationCredit(t *testing.T) {
	battleRepo := &fakeBattleRepo{battle: openBattle()}
	subRepo := &fakeSubmissionRepo{lockState: &battleRepo.locked}
	svc := newSubmissionFixture(t, subRepo, battleRepo, false)

	sub, err := svc.SubmitBattle(context.Background(), "u1", "friday-night", "print(3)")
	if err != nil {
		t.Fatalf("SubmitBattle: %v", err)
	}
	if sub.PointsEarned != 10 {
		t.Fatalf("got %d points, want 10 participation credit", sub.PointsEarned)
	}
	if battleRepo.locked {
		t.Fatal("battle locked although no rank was assigned")
	}
}

func TestSubmitBattleRepeatPassNoAdditionalAward(t *testing.T) {
	battleRepo := &fakeBattleRepo{battle: openBattle()}
	subRepo := &fakeSubmissionRepo{userPassedInBattle: true, lockState: &battleRepo.locked}
	svc := newSubmissionFixture(t, subRepo, battleRepo, true)

	sub, err := svc.SubmitBattle(context.Background(), "u1", "friday-night", "print(2)")
	if err != nil {
		t.Fatalf("SubmitBattle: %v", err)
	}
	if sub.PointsEarned != 0 {
		t.Fatalf("repeat battle pass awarded %d points, want 0", sub.PointsEarned)
	}
	if len(subRepo.created) != 1 {
		t.Fatal("repeat battle pass must still be recorded")
	}
}

func TestSubmitBattleClosedBattleRejected(t *testing.T) {
	battle := openBattle()
	battle.EndsAt = time.Now().UTC().Add(-time.Minute)
	battleRepo := &fakeBattleRepo{battle: battle}
	svc := newSubmissionFixture(t, &fakeSubmissionRepo{}, battleRepo, true)

	_, err := svc.SubmitBattle(context.Background(), "u1", "friday-night", "print(2)")
	if !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}
