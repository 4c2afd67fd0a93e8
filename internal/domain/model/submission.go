package model

import "time"

type SubmissionStatus string

const (
	StatusPending SubmissionStatus = "pending"
	StatusPassed  SubmissionStatus = "passed"
	StatusFailed  SubmissionStatus = "failed"
	StatusTimeout SubmissionStatus = "timeout"
	StatusError   SubmissionStatus = "error"
)

// Failure reasons attached to non-passing verdicts so callers can tell user
// mistakes from infrastructure trouble.
const (
	ReasonInvalidInput        = "invalid_input"
	ReasonProhibitedOperation = "prohibited_operation"
	ReasonExecutionTimeout    = "execution_timeout"
	ReasonSandboxUnavailable  = "sandbox_unavailable"
	ReasonWrongAnswer         = "wrong_answer"
)

// Submission is the immutable record of one grading attempt. A new attempt is
// always a new Submission; graded rows are never updated.
type Submission struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	ChallengeID     string           `json:"challenge_id"`
	BattleID        *string          `json:"battle_id,omitempty"`
	Code            string           `json:"code,omitempty"`
	Language        string           `json:"language"`
	Status          SubmissionStatus `json:"status"`
	FailureReason   string           `json:"failure_reason,omitempty"`
	TestResults     []TestCaseResult `json:"test_results,omitempty"`
	ExecutionTimeMs int              `json:"execution_time_ms"`
	PointsEarned    int              `json:"points_earned"`
	IsFirstSolve    bool             `json:"is_first_solve"`
	SubmittedAt     time.Time        `json:"submitted_at"`

	Username *string `json:"username,omitempty"` // for display
}

type TestCaseResult struct {
	ID              string  `json:"id"`
	SubmissionID    string  `json:"submission_id"`
	Input           string  `json:"input"`
	ExpectedOutput  string  `json:"expected_output"`
	ActualOutput    string  `json:"actual_output"`
	Passed          bool    `json:"passed"`
	ExecutionTimeMs int     `json:"execution_time_ms"`
	Error           *string `json:"error,omitempty"`
	SortOrder       int     `json:"sort_order"`
}
