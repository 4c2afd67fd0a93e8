package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Learnmade/livechallenge/internal/common"
	"github.com/Learnmade/livechallenge/internal/domain/model"
	"github.com/Learnmade/livechallenge/internal/platform/cache"
)

func strptr(s string) *string { return &s }

func TestActiveMapsLatestVerdictToState(t *testing.T) {
	repo := &fakeSubmissionRepo{latest: []model.Submission{
		{UserID: "u1", Username: strptr("ada"), Status: model.StatusPassed, SubmittedAt: at(-time.Minute)},
		{UserID: "u2", Username: strptr("bob"), Status: model.StatusFailed, SubmittedAt: at(-2 * time.Minute)},
		{UserID: "u3", Status: model.StatusTimeout, SubmittedAt: at(-3 * time.Minute)},
	}}
	chalRepo := &fakeChallengeRepo{challenge: &model.Challenge{ID: "c1"}}
	svc := NewParticipantService(repo, chalRepo, cache.NewMemoryStore(nil), 30*time.Minute, time.Minute)

	participants, err := svc.Active(context.Background(), "python", 1)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(participants) != 3 {
		t.Fatalf("got %d participants, want 3", len(participants))
	}

	wantStates := map[string]model.ParticipantState{
		"u1": model.ParticipantSolved,
		"u2": model.ParticipantSolving,
		"u3": model.ParticipantSolving,
	}
	for _, p := range participants {
		if p.State != wantStates[p.UserID] {
			t.Fatalf("%s has state %s, want %s", p.UserID, p.State, wantStates[p.UserID])
		}
	}
	if participants[0].Username != "ada" {
		t.Fatalf("username not carried through: %+v", participants[0])
	}
}

func TestActiveQueriesTrailingWindow(t *testing.T) {
	repo := &fakeSubmissionRepo{}
	chalRepo := &fakeChallengeRepo{challenge: &model.Challenge{ID: "c1"}}
	window := 30 * time.Minute
	svc := NewParticipantService(repo, chalRepo, cache.NewMemoryStore(nil), window, time.Minute)

	before := time.Now().UTC()
	if _, err := svc.Active(context.Background(), "python", 1); err != nil {
		t.Fatalf("Active: %v", err)
	}
	after := time.Now().UTC()

	// The cutoff must be exactly one window behind the call instant.
	if repo.latestSince.Before(before.Add(-window)) || repo.latestSince.After(after.Add(-window)) {
		t.Fatalf("window cutoff %v not %v behind the call", repo.latestSince, window)
	}
}

func TestRemoveDeletesOnlyWindowedActivity(t *testing.T) {
	repo := &fakeSubmissionRepo{deleted: 1}
	chalRepo := &fakeChallengeRepo{challenge: &model.Challenge{ID: "c1"}}
	window := 30 * time.Minute
	svc := NewParticipantService(repo, chalRepo, cache.NewMemoryStore(nil), window, time.Minute)

	before := time.Now().UTC()
	if err := svc.Remove(context.Background(), "python", 1, "u1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	after := time.Now().UTC()

	if repo.deletedSince.Before(before.Add(-window)) || repo.deletedSince.After(after.Add(-window)) {
		t.Fatalf("delete cutoff %v not %v behind the call", repo.deletedSince, window)
	}
}

func TestActiveUnknownChallenge(t *testing.T) {
	svc := NewParticipantService(&fakeSubmissionRepo{}, &fakeChallengeRepo{}, cache.NewMemoryStore(nil), 30*time.Minute, time.Minute)
	if _, err := svc.Active(context.Background(), "python", 404); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRemoveUnknownParticipant(t *testing.T) {
	repo := &fakeSubmissionRepo{deleted: 0}
	chalRepo := &fakeChallengeRepo{challenge: &model.Challenge{ID: "c1"}}
	svc := NewParticipantService(repo, chalRepo, cache.NewMemoryStore(nil), 30*time.Minute, time.Minute)

	err := svc.Remove(context.Background(), "python", 1, "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRemoveInvalidatesCachedViews(t *testing.T) {
	repo := &fakeSubmissionRepo{deleted: 2}
	chalRepo := &fakeChallengeRepo{challenge: &model.Challenge{ID: "c1"}}
	store := cache.NewMemoryStore(nil)
	svc := NewParticipantService(repo, chalRepo, store, 30*time.Minute, time.Minute)

	ctx := context.Background()
	store.Set(ctx, cache.ParticipantsKey("python", 1), []byte("[]"), time.Minute)
	store.Set(ctx, cache.ChallengeLeaderboardKey("python", 1), []byte("[]"), time.Minute)

	if err := svc.Remove(ctx, "python", 1, "u1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, ok, _ := store.Get(ctx, cache.ParticipantsKey("python", 1)); ok {
		t.Fatal("participants view survived removal")
	}
	if _, ok, _ := store.Get(ctx, cache.ChallengeLeaderboardKey("python", 1)); ok {
		t.Fatal("challenge leaderboard survived removal")
	}
}
