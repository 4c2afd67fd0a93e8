package service

import (
	"context"
	"log"
	"time"

	"github.com/Learnmade/livechallenge/internal/common"
	"github.com/Learnmade/livechallenge/internal/domain/model"
	"github.com/Learnmade/livechallenge/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type BattleService struct {
	battleRepo     repository.BattleRepository
	challengeRepo  repository.ChallengeRepository
	submissionRepo repository.SubmissionRepository
}

func NewBattleService(
	battleRepo repository.BattleRepository,
	chalRepo repository.ChallengeRepository,
	subRepo repository.SubmissionRepository,
) *BattleService {
	return &BattleService{battleRepo: battleRepo, challengeRepo: chalRepo, submissionRepo: subRepo}
}

type CreateBattleRequest struct {
	Name            string `json:"name"`
	Language        string `json:"language"`
	ChallengeIndex  int    `json:"challenge_index"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (s *BattleService) CreateBattle(ctx context.Context, req CreateBattleRequest) (*model.Battle, error) {
	if req.Name == "" || req.Language == "" || req.DurationMinutes <= 0 {
		return nil, common.Errorf("name, language and duration are required: %w", common.ErrValidation)
	}

	challenge, err := s.challengeRepo.FindByLanguageIndex(ctx, req.Language, req.ChallengeIndex)
	if err != nil {
		return nil, common.Errorf("battle challenge not found: %w", err)
	}

	now := time.Now().UTC()
	battle := &model.Battle{
		ID:          uuid.NewString(),
		Slug:        slug.Make(req.Name),
		ChallengeID: challenge.ID,
		StartsAt:    now,
		EndsAt:      now.Add(time.Duration(req.DurationMinutes) * time.Minute),
		IsActive:    true,
	}
	if err := s.battleRepo.Create(ctx, battle); err != nil {
		return nil, common.Errorf("failed to create battle: %w", err)
	}

	log.Printf("battle %s opened on challenge %s/%d until %s", battle.Slug, req.Language, req.ChallengeIndex, battle.EndsAt)
	return battle, nil
}

func (s *BattleService) ListActive(ctx context.Context) ([]model.Battle, error) {
	battles, err := s.battleRepo.ListActive(ctx, 50)
	if err != nil {
		return nil, common.Errorf("failed to list battles: %w", err)
	}
	return battles, nil
}

// Standings ranks passing battle submissions by arrival order.
func (s *BattleService) Standings(ctx context.Context, battleSlug string) ([]model.BattleStanding, error) {
	battle, err := s.battleRepo.FindBySlug(ctx, battleSlug)
	if err != nil {
		return nil, common.Errorf("battle not found: %w", err)
	}

	standings, err := s.submissionRepo.BattleStandings(ctx, battle.ID, leaderboardLimit)
	if err != nil {
		return nil, common.Errorf("failed to load battle standings: %w", err)
	}
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings, nil
}
