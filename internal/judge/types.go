package judge

import (
	"encoding/json"
	"fmt"
	"math"
)

// Status is the overall verdict label. Values match the wire strings stored
// in progress records.
type Status string

const (
	StatusAccepted          Status = "Accepted"
	StatusWrongAnswer       Status = "Wrong Answer"
	StatusTimeLimitExceeded Status = "Time Limit Exceeded"
	StatusCompilationError  Status = "Compilation Error"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusAccepted, StatusWrongAnswer, StatusTimeLimitExceeded, StatusCompilationError:
		return true
	}
	return false
}

// TestStatus is the per-case outcome.
type TestStatus string

const (
	TestPassed TestStatus = "Passed"
	TestFailed TestStatus = "Failed"
)

// DegradedFeedback is returned when the judge could not be reached or
// produced an unusable answer.
const DegradedFeedback = "Đã xảy ra lỗi khi kết nối với hệ thống chấm bài. Vui lòng thử lại sau."

// TestCaseResult is the oracle's outcome for one test case. ActualOutput and
// Message are always empty for hidden cases.
type TestCaseResult struct {
	TestCaseID      string     `json:"testCaseId"`
	Status          TestStatus `json:"status"`
	ActualOutput    string     `json:"actualOutput,omitempty"`
	ExecutionTimeMs float64    `json:"executionTimeMs"`
	Message         string     `json:"message,omitempty"`
}

// Verdict is the evaluation of one submission.
type Verdict struct {
	Status        Status           `json:"status"`
	Score         int              `json:"score"`
	Feedback      string           `json:"feedback"`
	Suggestions   []string         `json:"suggestions"`
	OptimizedCode string           `json:"optimizedCode,omitempty"`
	TestResults   []TestCaseResult `json:"testResults,omitempty"`

	// JudgeUnavailable marks a degraded verdict produced without the oracle.
	// It distinguishes an unreachable judge from a genuine compile error.
	JudgeUnavailable bool `json:"judgeUnavailable,omitempty"`
}

// UnmarshalJSON rounds a fractional score. Verdicts stored by JavaScript
// clients carry plain JS numbers.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	type plain Verdict
	aux := struct {
		*plain
		Score json.Number `json:"score"`
	}{plain: (*plain)(v)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Score == "" {
		v.Score = 0
		return nil
	}
	f, err := aux.Score.Float64()
	if err != nil || f > math.MaxInt32 || f < math.MinInt32 {
		return fmt.Errorf("verdict score %q is not a usable number", aux.Score)
	}
	v.Score = int(math.Round(f))
	return nil
}

// Accepted reports whether the verdict solved the problem.
func (v Verdict) Accepted() bool {
	return v.Status == StatusAccepted
}

// Passed counts the passing test results.
func (v Verdict) Passed() int {
	n := 0
	for _, r := range v.TestResults {
		if r.Status == TestPassed {
			n++
		}
	}
	return n
}

// Degraded returns the fallback verdict used on any judge failure.
func Degraded() Verdict {
	return Verdict{
		Status:           StatusCompilationError,
		Score:            0,
		Feedback:         DegradedFeedback,
		Suggestions:      []string{},
		JudgeUnavailable: true,
	}
}
