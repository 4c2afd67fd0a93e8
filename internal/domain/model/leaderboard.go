package model

import "time"

// LeaderboardEntry is derived from the submission ledger, never stored.
type LeaderboardEntry struct {
	Rank             int       `json:"rank"`
	UserID           string    `json:"user_id"`
	Username         string    `json:"username"`
	TotalPoints      int       `json:"total_points"`
	ChallengesSolved int       `json:"challenges_solved"`
	SubmissionCount  int       `json:"submission_count"`
	LastActivity     time.Time `json:"last_activity"`
	Level            int       `json:"level"`
}

// ChallengeLeaderboardEntry ranks solvers of a single challenge by who passed
// first.
type ChallengeLeaderboardEntry struct {
	Rank         int       `json:"rank"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	PointsEarned int       `json:"points_earned"`
	IsFirstSolve bool      `json:"is_first_solve"`
	SolvedAt     time.Time `json:"solved_at"`
}
