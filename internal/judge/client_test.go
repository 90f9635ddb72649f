package judge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/thanhdat24/code-learning/internal/catalog"
	"github.com/thanhdat24/code-learning/internal/llm"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func twoSum(t *testing.T) *catalog.Problem {
	t.Helper()
	p, err := catalog.Default().Get("two-sum")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func acceptedJSON() json.RawMessage {
	return json.RawMessage(`{
		"status": "Accepted",
		"score": 92.6,
		"feedback": "Lời giải đúng, độ phức tạp O(n).",
		"suggestions": ["Đặt tên biến rõ ràng hơn"],
		"optimizedCode": "",
		"testResults": [
			{"testCaseId": "two-sum-1", "status": "Passed", "actualOutput": "[0,1]", "executionTimeMs": 1},
			{"testCaseId": "two-sum-2", "status": "Passed", "actualOutput": "[1,2]", "executionTimeMs": 1},
			{"testCaseId": "two-sum-3", "status": "Passed", "actualOutput": "[0,1]", "executionTimeMs": 2, "message": "hidden detail"},
			{"testCaseId": "two-sum-4", "status": "Passed", "actualOutput": "[2,4]", "executionTimeMs": 1}
		]
	}`)
}

func TestEvaluate_Accepted(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: acceptedJSON()})
	c := New(mock, DefaultConfig(), nil)

	v := c.Evaluate(context.Background(), twoSum(t), "function twoSum() {}")

	if v.Status != StatusAccepted || !v.Accepted() {
		t.Fatalf("status = %q, want Accepted", v.Status)
	}
	if v.Score != 93 {
		t.Errorf("score = %d, want 93 (rounded)", v.Score)
	}
	if v.JudgeUnavailable {
		t.Error("JudgeUnavailable set on a real verdict")
	}
	if v.Passed() != 4 {
		t.Errorf("Passed() = %d, want 4", v.Passed())
	}
	if v.TestResults[0].ActualOutput != "[0,1]" {
		t.Errorf("public output was redacted: %+v", v.TestResults[0])
	}
}

func TestEvaluate_HiddenCasesRedacted(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: acceptedJSON()})
	p := twoSum(t)
	v := New(mock, DefaultConfig(), nil).Evaluate(context.Background(), p, "src")

	for _, r := range v.TestResults {
		tc, _ := p.TestCase(r.TestCaseID)
		if tc.IsHidden() && (r.ActualOutput != "" || r.Message != "") {
			t.Errorf("hidden case %q leaked detail: %+v", r.TestCaseID, r)
		}
	}
}

func TestEvaluate_RequestCarriesAllCases(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: acceptedJSON()})
	p := twoSum(t)
	New(mock, DefaultConfig(), nil).Evaluate(context.Background(), p, "function twoSum(nums, target) { return [0,1] }")

	req, ok := mock.LastCall()
	if !ok {
		t.Fatal("oracle was not called")
	}
	if req.Schema != VerdictSchema {
		t.Error("request does not use VerdictSchema")
	}
	msg := req.Messages[0].Content
	for _, want := range []string{p.Title, p.Constraints[0], "two-sum-3", "two-sum-4", "return [0,1]", "```javascript"} {
		if !strings.Contains(msg, want) {
			t.Errorf("user message missing %q", want)
		}
	}
}

func TestEvaluate_Degrades(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"unreachable", llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("dial tcp: refused")}}},
		{"rate limited", llm.MockResponse{Err: &llm.ErrRateLimit{}}},
		{"schema violation", llm.MockResponse{Content: json.RawMessage(`{"status":"Accepted"}`)}},
		{"unknown test case", llm.MockResponse{Content: json.RawMessage(`{
			"status":"Wrong Answer","score":10,"feedback":"x","suggestions":[],"optimizedCode":"",
			"testResults":[{"testCaseId":"made-up","status":"Failed","actualOutput":"","executionTimeMs":0}]}`)}},
		{"duplicate result", llm.MockResponse{Content: json.RawMessage(`{
			"status":"Wrong Answer","score":10,"feedback":"x","suggestions":[],"optimizedCode":"",
			"testResults":[
				{"testCaseId":"two-sum-1","status":"Failed","actualOutput":"","executionTimeMs":0},
				{"testCaseId":"two-sum-1","status":"Passed","actualOutput":"","executionTimeMs":0}]}`)}},
		{"empty feedback", llm.MockResponse{Content: json.RawMessage(`{
			"status":"Accepted","score":100,"feedback":"","suggestions":[],"optimizedCode":"","testResults":[]}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			mock := llm.NewMockProvider(tt.resp)
			v := New(mock, DefaultConfig(), zap.New(core)).Evaluate(context.Background(), twoSum(t), "src")

			if v.Status != StatusCompilationError || v.Score != 0 {
				t.Fatalf("got %s/%d, want Compilation Error/0", v.Status, v.Score)
			}
			if !v.JudgeUnavailable {
				t.Error("JudgeUnavailable not set")
			}
			if v.Feedback != DegradedFeedback {
				t.Errorf("feedback = %q", v.Feedback)
			}
			if len(v.Suggestions) != 0 || len(v.TestResults) != 0 {
				t.Errorf("degraded verdict carries detail: %+v", v)
			}
			if logs.FilterMessage("judge failure").Len() != 1 {
				t.Errorf("expected one judge failure log, got %d", logs.Len())
			}
			if mock.CallCount() != 1 {
				t.Errorf("oracle called %d times, want 1", mock.CallCount())
			}
		})
	}
}

func TestEvaluate_MissingResultsAreAllowed(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"status":"Wrong Answer","score":40,"feedback":"Sai với mảng có phần tử trùng.",
		"suggestions":[],"optimizedCode":"",
		"testResults":[{"testCaseId":"two-sum-1","status":"Passed","actualOutput":"[0,1]","executionTimeMs":1}]}`)})
	v := New(mock, DefaultConfig(), nil).Evaluate(context.Background(), twoSum(t), "src")

	if v.JudgeUnavailable {
		t.Fatal("partial results should not degrade the verdict")
	}
	if v.Status != StatusWrongAnswer || len(v.TestResults) != 1 {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestDefaultConfig_ValidatorChain(t *testing.T) {
	cfg := DefaultConfig()
	names := []string{"structural", "test-cases"}
	if len(cfg.Validators) != len(names) {
		t.Fatalf("expected %d validators, got %d", len(names), len(cfg.Validators))
	}
	for i, v := range cfg.Validators {
		if v.Name() != names[i] {
			t.Errorf("validator %d: expected %q, got %q", i, names[i], v.Name())
		}
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Validator: "structural", Message: "feedback is empty"}
	if got := err.Error(); got != `validator "structural": feedback is empty` {
		t.Errorf("got %q", got)
	}
}

func TestVerdictJSONWireNames(t *testing.T) {
	b, err := json.Marshal(Degraded())
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	for _, want := range []string{`"status":"Compilation Error"`, `"score":0`, `"suggestions":[]`, `"judgeUnavailable":true`} {
		if !strings.Contains(s, want) {
			t.Errorf("marshalled verdict missing %s: %s", want, s)
		}
	}
}
