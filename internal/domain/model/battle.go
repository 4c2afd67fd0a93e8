package model

import "time"

// Battle is a timed room around a single challenge. Passing submissions rank
// by arrival order instead of the first-solve bonus rule.
type Battle struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	ChallengeID string    `json:"challenge_id"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Open reports whether the battle accepts submissions at the given instant.
func (b *Battle) Open(now time.Time) bool {
	return b.IsActive && !now.Before(b.StartsAt) && now.Before(b.EndsAt)
}

type BattleStanding struct {
	Rank         int       `json:"rank"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	PointsEarned int       `json:"points_earned"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
