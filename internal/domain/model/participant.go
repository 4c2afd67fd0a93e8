package model

import "time"

type ParticipantState string

const (
	ParticipantSolving ParticipantState = "solving"
	ParticipantSolved  ParticipantState = "solved"
)

// Participant is an ephemeral projection of recent ledger activity: one entry
// per user active within the trailing window, tagged by their latest verdict.
type Participant struct {
	UserID       string           `json:"user_id"`
	Username     string           `json:"username"`
	State        ParticipantState `json:"state"`
	LastActivity time.Time        `json:"last_activity"`
}
