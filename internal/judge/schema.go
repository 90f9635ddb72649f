package judge

import "github.com/thanhdat24/code-learning/internal/llm"

// VerdictSchema defines the JSON schema for judge responses.
var VerdictSchema = &llm.Schema{
	Name:        "judge-verdict",
	Description: "Evaluation of a submitted solution against the problem's test cases",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{
				"type":        "string",
				"enum":        []any{"Accepted", "Wrong Answer", "Time Limit Exceeded", "Compilation Error"},
				"description": "Overall outcome of the submission",
			},
			"score": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     100,
				"description": "A score from 0 to 100 based on correctness and efficiency",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "A concise summary of the code quality and correctness in Vietnamese",
			},
			"suggestions": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "A list of actionable improvements in Vietnamese",
			},
			"optimizedCode": map[string]any{
				"type":        "string",
				"description": "An optimized version of the code, or an empty string",
			},
			"testResults": map[string]any{
				"type":        "array",
				"description": "One entry per test case that was evaluated",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"testCaseId": map[string]any{
							"type":        "string",
							"description": "The id of the test case as given in the request",
						},
						"status": map[string]any{
							"type": "string",
							"enum": []any{"Passed", "Failed"},
						},
						"actualOutput": map[string]any{
							"type":        "string",
							"description": "What the submitted code outputs for this input",
						},
						"executionTimeMs": map[string]any{
							"type":        "number",
							"minimum":     0,
							"description": "Estimated execution time in milliseconds",
						},
						"message": map[string]any{
							"type":        "string",
							"description": "Optional short note about the failure",
						},
					},
					"required": []any{"testCaseId", "status", "actualOutput", "executionTimeMs"},
				},
			},
		},
		"required": []any{"status", "score", "feedback", "suggestions", "optimizedCode", "testResults"},
	},
}
