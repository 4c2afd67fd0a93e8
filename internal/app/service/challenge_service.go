package service

import (
	"context"
	"database/sql"
	"log"

	"github.com/Learnmade/livechallenge/internal/common"
	"github.com/Learnmade/livechallenge/internal/domain/model"
	"github.com/Learnmade/livechallenge/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ChallengeService is the read/seed surface over challenge content. Content
// itself is authored elsewhere; the engine mostly reads it.
type ChallengeService struct {
	challengeRepo repository.ChallengeRepository
	db            *sql.DB
}

func NewChallengeService(chalRepo repository.ChallengeRepository, db *sql.DB) *ChallengeService {
	return &ChallengeService{challengeRepo: chalRepo, db: db}
}

type CreateChallengeRequest struct {
	Language    string                    `json:"language"`
	Index       int                       `json:"index"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Difficulty  model.ChallengeDifficulty `json:"difficulty"`
	Points      int                       `json:"points"`
	TestCases   []CreateTestCaseRequest   `json:"test_cases"`
}

type CreateTestCaseRequest struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	IsHidden       bool   `json:"is_hidden"`
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, req CreateChallengeRequest) (*model.Challenge, error) {
	if req.Language == "" || req.Title == "" || req.Points <= 0 || len(req.TestCases) == 0 {
		return nil, common.Errorf("language, title, points and test cases are required: %w", common.ErrValidation)
	}

	challenge := &model.Challenge{
		ID:          uuid.NewString(),
		Language:    req.Language,
		Index:       req.Index,
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Points:      req.Points,
		IsActive:    true,
	}
	for i, tc := range req.TestCases {
		challenge.TestCases = append(challenge.TestCases, model.ChallengeTestCase{
			ID:             uuid.NewString(),
			ChallengeID:    challenge.ID,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			IsHidden:       tc.IsHidden,
			SortOrder:      i,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.challengeRepo.Create(ctx, tx, challenge); err != nil {
		return nil, common.Errorf("failed to create challenge: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit challenge: %w", err)
	}

	log.Printf("challenge %s/%d (%s) created", challenge.Language, challenge.Index, challenge.Slug)
	return challenge, nil
}

func (s *ChallengeService) ListChallenges(ctx context.Context, language string, page, pageSize int) ([]model.Challenge, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	challenges, err := s.challengeRepo.List(ctx, language, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, common.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

// GetChallenge returns a challenge with its visible test cases; hidden cases
// stay server-side unless the caller is an admin.
func (s *ChallengeService) GetChallenge(ctx context.Context, language string, index int, role string) (*model.Challenge, error) {
	challenge, err := s.challengeRepo.FindByLanguageIndex(ctx, language, index)
	if err != nil {
		return nil, err
	}
	if !challenge.IsActive && role != model.RoleAdmin {
		return nil, common.ErrNotFound
	}

	testCases, err := s.challengeRepo.GetTestCases(ctx, challenge.ID)
	if err != nil {
		return nil, common.Errorf("failed to load test cases: %w", err)
	}
	for _, tc := range testCases {
		if tc.IsHidden && role != model.RoleAdmin {
			continue
		}
		challenge.TestCases = append(challenge.TestCases, tc)
	}
	return challenge, nil
}
