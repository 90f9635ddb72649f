package judge

import (
	"fmt"

	"github.com/thanhdat24/code-learning/internal/catalog"
)

// Validator checks a decoded verdict before it is accepted.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier, e.g. "structural", "test-cases".
	Name() string

	// Validate returns nil if v is acceptable for problem p.
	Validate(v *Verdict, p *catalog.Problem) *ValidationError
}

// ValidationError describes why a verdict was rejected.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator checks value ranges and enum membership.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(vd *Verdict, _ *catalog.Problem) *ValidationError {
	if !vd.Status.Valid() {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("unknown status %q", vd.Status)}
	}
	if vd.Score < 0 || vd.Score > 100 {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("score %d outside 0..100", vd.Score)}
	}
	if vd.Feedback == "" {
		return &ValidationError{Validator: v.Name(), Message: "feedback is empty"}
	}
	for _, r := range vd.TestResults {
		if r.Status != TestPassed && r.Status != TestFailed {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("test %q has unknown status %q", r.TestCaseID, r.Status)}
		}
		if r.ExecutionTimeMs < 0 {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("test %q has negative execution time", r.TestCaseID)}
		}
	}
	return nil
}

// TestCaseValidator checks that every result refers to a distinct test case
// of the problem. Missing results are allowed.
type TestCaseValidator struct{}

func (v *TestCaseValidator) Name() string { return "test-cases" }

func (v *TestCaseValidator) Validate(vd *Verdict, p *catalog.Problem) *ValidationError {
	seen := make(map[string]bool, len(vd.TestResults))
	for _, r := range vd.TestResults {
		if _, ok := p.TestCase(r.TestCaseID); !ok {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("unknown test case %q", r.TestCaseID)}
		}
		if seen[r.TestCaseID] {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("duplicate result for test case %q", r.TestCaseID)}
		}
		seen[r.TestCaseID] = true
	}
	return nil
}
