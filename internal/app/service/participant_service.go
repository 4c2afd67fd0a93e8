package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Learnmade/livechallenge/internal/common"
	"github.com/Learnmade/livechallenge/internal/domain/model"
	"github.com/Learnmade/livechallenge/internal/domain/repository"
	"github.com/Learnmade/livechallenge/internal/platform/cache"
)

// ParticipantService projects "who is solving right now" out of recent ledger
// activity. It persists nothing of its own.
type ParticipantService struct {
	submissionRepo repository.SubmissionRepository
	challengeRepo  repository.ChallengeRepository
	store          cache.Store
	window         time.Duration
	ttl            time.Duration
}

func NewParticipantService(
	subRepo repository.SubmissionRepository,
	chalRepo repository.ChallengeRepository,
	store cache.Store,
	window, ttl time.Duration,
) *ParticipantService {
	return &ParticipantService{
		submissionRepo: subRepo,
		challengeRepo:  chalRepo,
		store:          store,
		window:         window,
		ttl:            ttl,
	}
}

// Active returns one entry per user with a submission inside the trailing
// window, most recently active first. A user whose latest attempt passed is
// "solved"; everyone else is still "solving".
func (s *ParticipantService) Active(ctx context.Context, language string, index int) ([]model.Participant, error) {
	challenge, err := s.challengeRepo.FindByLanguageIndex(ctx, language, index)
	if err != nil {
		return nil, common.Errorf("challenge not found: %w", err)
	}

	key := cache.ParticipantsKey(language, index)
	if raw, ok, err := s.store.Get(ctx, key); err == nil && ok {
		var cached []model.Participant
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	} else if err != nil {
		log.Printf("cache lookup failed for %q: %v", key, err)
	}

	since := time.Now().UTC().Add(-s.window)
	latest, err := s.submissionRepo.LatestPerUserSince(ctx, challenge.ID, since)
	if err != nil {
		return nil, common.Errorf("failed to load recent activity: %w", err)
	}

	participants := make([]model.Participant, 0, len(latest))
	for _, sub := range latest {
		state := model.ParticipantSolving
		if sub.Status == model.StatusPassed {
			state = model.ParticipantSolved
		}
		username := ""
		if sub.Username != nil {
			username = *sub.Username
		}
		participants = append(participants, model.Participant{
			UserID:       sub.UserID,
			Username:     username,
			State:        state,
			LastActivity: sub.SubmittedAt,
		})
	}

	if raw, err := json.Marshal(participants); err == nil {
		if err := s.store.Set(ctx, key, raw, s.ttl); err != nil {
			log.Printf("cache save failed for %q: %v", key, err)
		}
	}
	return participants, nil
}

// Remove is the host capability: it drops the user's windowed activity for
// the challenge so they disappear from the live view.
func (s *ParticipantService) Remove(ctx context.Context, language string, index int, userID string) error {
	challenge, err := s.challengeRepo.FindByLanguageIndex(ctx, language, index)
	if err != nil {
		return common.Errorf("challenge not found: %w", err)
	}

	since := time.Now().UTC().Add(-s.window)
	removed, err := s.submissionRepo.DeleteForUserChallengeSince(ctx, challenge.ID, userID, since)
	if err != nil {
		return common.Errorf("failed to remove participant: %w", err)
	}
	if removed == 0 {
		return common.Errorf("user %s is not an active participant: %w", userID, common.ErrNotFound)
	}

	for _, key := range []string{
		cache.ParticipantsKey(language, index),
		cache.ChallengeLeaderboardKey(language, index),
	} {
		if err := s.store.Delete(ctx, key); err != nil {
			log.Printf("cache invalidation failed for %q: %v", key, err)
		}
	}
	return nil
}
