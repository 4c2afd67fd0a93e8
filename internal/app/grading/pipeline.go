package grading

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Learnmade/livechallenge/internal/domain/model"
	"github.com/Learnmade/livechallenge/internal/platform/sandbox"
)

// Verdict is the structured outcome of grading one submission. Grading always
// yields a terminal verdict; sandbox trouble becomes verdict data, never an
// error to the caller.
type Verdict struct {
	Status          model.SubmissionStatus
	FailureReason   string
	TestResults     []model.TestCaseResult
	AllPassed       bool
	ExecutionTimeMs int
}

type Pipeline struct {
	runner        sandbox.Runner
	timeout       time.Duration
	maxCodeLength int
}

func NewPipeline(runner sandbox.Runner, timeout time.Duration, maxCodeLength int) *Pipeline {
	return &Pipeline{runner: runner, timeout: timeout, maxCodeLength: maxCodeLength}
}

// Grade validates the code, scans it against the language deny-list, and only
// then hands it to the sandbox under a bounded timeout.
func (p *Pipeline) Grade(ctx context.Context, code, language string, testCases []model.ChallengeTestCase) Verdict {
	if strings.TrimSpace(code) == "" || len(code) > p.maxCodeLength {
		return Verdict{Status: model.StatusError, FailureReason: model.ReasonInvalidInput}
	}

	if match, found := Scan(code, language); found {
		// Security signal worth a trace even though the caller only sees the reason.
		log.Printf("prohibited construct %q in %s submission", match, language)
		return Verdict{Status: model.StatusError, FailureReason: model.ReasonProhibitedOperation}
	}

	sandboxCases := make([]sandbox.TestCase, 0, len(testCases))
	for _, tc := range testCases {
		sandboxCases = append(sandboxCases, sandbox.TestCase{Input: tc.Input, ExpectedOutput: tc.ExpectedOutput})
	}

	execCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	result, err := p.runner.Execute(execCtx, code, language, sandboxCases)
	elapsed := int(time.Since(start).Milliseconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			return Verdict{Status: model.StatusTimeout, FailureReason: model.ReasonExecutionTimeout, ExecutionTimeMs: elapsed}
		}
		log.Printf("sandbox execution failed for %s submission: %v", language, err)
		return Verdict{Status: model.StatusFailed, FailureReason: model.ReasonSandboxUnavailable, ExecutionTimeMs: elapsed}
	}

	verdict := Verdict{AllPassed: true, ExecutionTimeMs: elapsed}
	for i, cr := range result.TestResults {
		verdict.TestResults = append(verdict.TestResults, model.TestCaseResult{
			Input:           cr.Input,
			ExpectedOutput:  cr.ExpectedOutput,
			ActualOutput:    cr.ActualOutput,
			Passed:          cr.Passed,
			ExecutionTimeMs: cr.ExecutionTimeMs,
			Error:           cr.Error,
			SortOrder:       i,
		})
		if !cr.Passed {
			verdict.AllPassed = false
		}
	}
	if len(result.TestResults) == 0 {
		verdict.AllPassed = false
	}

	if verdict.AllPassed {
		verdict.Status = model.StatusPassed
	} else {
		verdict.Status = model.StatusFailed
		verdict.FailureReason = model.ReasonWrongAnswer
	}
	return verdict
}
