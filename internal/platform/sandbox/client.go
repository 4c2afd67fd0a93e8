package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Learnmade/livechallenge/internal/common"
)

// The sandbox is the remote service that actually runs untrusted code. The
// engine only ever talks to it through Runner, so tests substitute a fake.

type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

type CaseResult struct {
	Input           string  `json:"input"`
	ExpectedOutput  string  `json:"expected_output"`
	ActualOutput    string  `json:"actual_output"`
	Passed          bool    `json:"passed"`
	ExecutionTimeMs int     `json:"execution_time_ms"`
	Error           *string `json:"error,omitempty"`
}

type ExecutionResult struct {
	Passed          bool         `json:"passed"`
	TestResults     []CaseResult `json:"test_results"`
	ExecutionTimeMs int          `json:"execution_time_ms"`
	Error           *string      `json:"error,omitempty"`
}

type Runner interface {
	Execute(ctx context.Context, code, language string, testCases []TestCase) (*ExecutionResult, error)
}

type executeRequest struct {
	Code      string     `json:"code"`
	Language  string     `json:"language"`
	TestCases []TestCase `json:"test_cases"`
	TimeoutMs int64      `json:"timeout_ms"`
}

// Client calls the sandbox over HTTP. The per-call deadline comes from ctx;
// the grading pipeline sets it from config.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string) *Client {
	return &Client{url: url, http: &http.Client{}}
}

func (c *Client) Execute(ctx context.Context, code, language string, testCases []TestCase) (*ExecutionResult, error) {
	var timeoutMs int64
	if deadline, ok := ctx.Deadline(); ok {
		timeoutMs = time.Until(deadline).Milliseconds()
	}

	body, err := json.Marshal(executeRequest{
		Code:      code,
		Language:  language,
		TestCases: testCases,
		TimeoutMs: timeoutMs,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal sandbox request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sandbox request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call sandbox: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sandbox returned status %d: %w", resp.StatusCode, common.ErrServiceUnavailable)
	}

	var result ExecutionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode sandbox response: %w", err)
	}
	return &result, nil
}
