package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/thanhdat24/code-learning/internal/catalog"
	"github.com/thanhdat24/code-learning/internal/llm"
	"go.uber.org/zap"
)

// Evaluator produces a verdict for a submission. It never fails: problems
// reaching the oracle surface as a degraded verdict.
type Evaluator interface {
	Evaluate(ctx context.Context, p *catalog.Problem, source string) Verdict
}

// Client implements Evaluator on top of an llm.Provider.
type Client struct {
	provider llm.Provider
	config   Config
	logger   *zap.Logger
}

// New creates a Client. The provider should not retry; a nil logger
// discards judge failure logs.
func New(provider llm.Provider, cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{provider: provider, config: cfg, logger: logger.Named("judge")}
}

// verdictOutput is the raw oracle response before validation.
type verdictOutput struct {
	Status        string           `json:"status"`
	Score         float64          `json:"score"`
	Feedback      string           `json:"feedback"`
	Suggestions   []string         `json:"suggestions"`
	OptimizedCode string           `json:"optimizedCode"`
	TestResults   []TestCaseResult `json:"testResults"`
}

// Evaluate asks the oracle to judge source against every test case of p,
// hidden ones included. Hidden-case detail is stripped from the result.
func (c *Client) Evaluate(ctx context.Context, p *catalog.Problem, source string) Verdict {
	v, err := c.evaluate(ctx, p, source)
	if err != nil {
		c.logger.Warn("judge failure",
			zap.String("problem", p.ID),
			zap.Error(err),
		)
		return Degraded()
	}
	return v
}

func (c *Client) evaluate(ctx context.Context, p *catalog.Problem, source string) (Verdict, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeJudge)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(p, source, c.config.Language)},
		},
		Schema:      VerdictSchema,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		return Verdict{}, fmt.Errorf("oracle request failed: %w", err)
	}

	var raw verdictOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return Verdict{}, fmt.Errorf("failed to parse oracle response: %w", err)
	}

	v := Verdict{
		Status:        Status(raw.Status),
		Score:         int(math.Round(raw.Score)),
		Feedback:      raw.Feedback,
		Suggestions:   raw.Suggestions,
		OptimizedCode: raw.OptimizedCode,
		TestResults:   raw.TestResults,
	}
	if v.Suggestions == nil {
		v.Suggestions = []string{}
	}

	for _, val := range c.config.Validators {
		if verr := val.Validate(&v, p); verr != nil {
			return Verdict{}, verr
		}
	}

	redactHidden(&v, p)
	return v, nil
}

// redactHidden blanks output and message of hidden-case results.
func redactHidden(v *Verdict, p *catalog.Problem) {
	for i := range v.TestResults {
		tc, ok := p.TestCase(v.TestResults[i].TestCaseID)
		if ok && tc.IsHidden() {
			v.TestResults[i].ActualOutput = ""
			v.TestResults[i].Message = ""
		}
	}
}
