package model

import "time"

type ChallengeDifficulty string

const (
	DifficultyEasy   ChallengeDifficulty = "easy"
	DifficultyMedium ChallengeDifficulty = "medium"
	DifficultyHard   ChallengeDifficulty = "hard"
)

// Challenge is identified by its language plus a numeric index within that
// language, with a unique slug for URLs. Content is owned by the seeding
// side; the engine reads it and bumps counters.
type Challenge struct {
	ID              string              `json:"id"`
	Language        string              `json:"language"`
	Index           int                 `json:"index"`
	Title           string              `json:"title"`
	Slug            string              `json:"slug"`
	Description     string              `json:"description"`
	Difficulty      ChallengeDifficulty `json:"difficulty"`
	Points          int                 `json:"points"`
	IsActive        bool                `json:"is_active"`
	SubmissionCount int                 `json:"submission_count"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	TestCases       []ChallengeTestCase `json:"test_cases,omitempty"` // hidden cases stripped for non-admin views
}

type ChallengeTestCase struct {
	ID             string `json:"id"`
	ChallengeID    string `json:"challenge_id"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	IsHidden       bool   `json:"is_hidden"`
	SortOrder      int    `json:"sort_order"`
}
