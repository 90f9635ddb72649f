package judge

import (
	"fmt"
	"strings"

	"github.com/thanhdat24/code-learning/internal/catalog"
)

const systemPrompt = `You are an expert technical interviewer and competitive programmer acting as a code judge.

Rules:
- Decide whether the submitted code correctly solves the problem for every listed test case.
- Trace the code on each test case and report one result per test case id, using the ids exactly as given.
- "Accepted" only when every test case passes and the code respects the constraints.
- "Wrong Answer" when any test case produces a different output.
- "Time Limit Exceeded" when the complexity is clearly too high for the constraints.
- "Compilation Error" when the code cannot run (syntax errors, missing function).
- Score from 0 to 100 based on correctness and efficiency.
- Write feedback and suggestions in Vietnamese. Keep feedback concise.
- optimizedCode may be an empty string when the solution is already optimal.`

// buildUserMessage constructs the user message for one evaluation.
func buildUserMessage(p *catalog.Problem, source, language string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Problem: %s\n", p.Title)
	fmt.Fprintf(&b, "Difficulty: %s\n", p.Difficulty)
	fmt.Fprintf(&b, "\nDescription:\n%s\n", p.Description)

	if len(p.Constraints) > 0 {
		fmt.Fprintf(&b, "\nConstraints: %s\n", strings.Join(p.Constraints, ", "))
	}

	b.WriteString("\nTest cases:\n")
	b.WriteString(buildTestCases(p.TestCases))

	fmt.Fprintf(&b, "\nUser code:\n```%s\n%s\n```\n", language, source)

	return b.String()
}

func buildTestCases(cases []catalog.TestCase) string {
	if len(cases) == 0 {
		return "None (judge by reading the code)\n"
	}
	var b strings.Builder
	for _, tc := range cases {
		fmt.Fprintf(&b, "- id: %s\n  input: %s\n  expected: %s\n", tc.ID, tc.Input, tc.ExpectedOutput)
	}
	return b.String()
}
