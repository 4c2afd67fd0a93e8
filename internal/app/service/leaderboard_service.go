package service

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"time"

	"github.com/Learnmade/livechallenge/internal/app/scoring"
	"github.com/Learnmade/livechallenge/internal/common"
	"github.com/Learnmade/livechallenge/internal/domain/model"
	"github.com/Learnmade/livechallenge/internal/domain/repository"
	"github.com/Learnmade/livechallenge/internal/platform/cache"
)

const leaderboardLimit = 100

type LeaderboardService struct {
	submissionRepo repository.SubmissionRepository
	challengeRepo  repository.ChallengeRepository
	store          cache.Store
	ttl            time.Duration
}

func NewLeaderboardService(
	subRepo repository.SubmissionRepository,
	chalRepo repository.ChallengeRepository,
	store cache.Store,
	ttl time.Duration,
) *LeaderboardService {
	return &LeaderboardService{submissionRepo: subRepo, challengeRepo: chalRepo, store: store, ttl: ttl}
}

// Global recomputes the ranking from the ledger on every cache miss; nothing
// here holds derived state beyond the store's TTL.
func (s *LeaderboardService) Global(ctx context.Context, language, period string) ([]model.LeaderboardEntry, error) {
	since, err := periodStart(period)
	if err != nil {
		return nil, err
	}

	key := cache.GlobalLeaderboardKey(language, period)
	var cached []model.LeaderboardEntry
	if hit := s.lookup(ctx, key, &cached); hit {
		return cached, nil
	}

	entries, err := s.submissionRepo.GlobalLeaderboard(ctx, language, since, leaderboardLimit)
	if err != nil {
		return nil, common.Errorf("failed to aggregate leaderboard: %w", err)
	}
	rankEntries(entries)

	s.save(ctx, key, entries)
	return entries, nil
}

// ForChallenge ranks a single challenge's solvers by earliest passing
// submission.
func (s *LeaderboardService) ForChallenge(ctx context.Context, language string, index int) ([]model.ChallengeLeaderboardEntry, error) {
	challenge, err := s.challengeRepo.FindByLanguageIndex(ctx, language, index)
	if err != nil {
		return nil, common.Errorf("challenge not found: %w", err)
	}

	key := cache.ChallengeLeaderboardKey(language, index)
	var cached []model.ChallengeLeaderboardEntry
	if hit := s.lookup(ctx, key, &cached); hit {
		return cached, nil
	}

	entries, err := s.submissionRepo.ChallengeLeaderboard(ctx, challenge.ID, leaderboardLimit)
	if err != nil {
		return nil, common.Errorf("failed to aggregate challenge leaderboard: %w", err)
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	s.save(ctx, key, entries)
	return entries, nil
}

// rankEntries enforces the ordering invariant regardless of which store
// implementation produced the rows: points descending, ties broken by the
// earlier last activity. Ranks and levels are assigned afterwards.
func rankEntries(entries []model.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].LastActivity.Before(entries[j].LastActivity)
	})
	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].Level = scoring.Level(entries[i].TotalPoints)
	}
}

func periodStart(period string) (time.Time, error) {
	now := time.Now().UTC()
	switch period {
	case "week":
		return now.AddDate(0, 0, -7), nil
	case "month":
		return now.AddDate(0, -1, 0), nil
	case "", "all":
		return time.Time{}, nil
	default:
		return time.Time{}, common.Errorf("unknown period %q: %w", period, common.ErrBadRequest)
	}
}

func (s *LeaderboardService) lookup(ctx context.Context, key string, out interface{}) bool {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		log.Printf("cache lookup failed for %q: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("cache entry for %q is corrupt, recomputing: %v", key, err)
		return false
	}
	return true
}

func (s *LeaderboardService) save(ctx context.Context, key string, val interface{}) {
	raw, err := json.Marshal(val)
	if err != nil {
		log.Printf("cache marshal failed for %q: %v", key, err)
		return
	}
	if err := s.store.Set(ctx, key, raw, s.ttl); err != nil {
		log.Printf("cache save failed for %q: %v", key, err)
	}
}
