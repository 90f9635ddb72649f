package catalog

// Difficulty is the coarse difficulty label of a problem.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Difficulties returns all difficulty levels in display order.
func Difficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// Visibility controls whether a test case may be shown to the user.
type Visibility string

const (
	Public Visibility = "public"
	Hidden Visibility = "hidden"
)

// TestCase is one canonical input/expected-output pair of a problem.
type TestCase struct {
	ID             string     `toml:"id" json:"id"`
	Input          string     `toml:"input" json:"input"`
	ExpectedOutput string     `toml:"expected_output" json:"expectedOutput"`
	Visibility     Visibility `toml:"visibility" json:"visibility"`
}

// IsHidden reports whether the case must never be revealed beyond pass/fail.
func (tc TestCase) IsHidden() bool {
	return tc.Visibility == Hidden
}

// Example is an illustrative input/output shown in the problem statement.
type Example struct {
	Input       string `toml:"input" json:"input"`
	Output      string `toml:"output" json:"output"`
	Explanation string `toml:"explanation" json:"explanation,omitempty"`
}

// Problem is an immutable problem descriptor.
type Problem struct {
	ID          string     `toml:"id" json:"id"`
	Title       string     `toml:"title" json:"title"`
	Difficulty  Difficulty `toml:"difficulty" json:"difficulty"`
	Category    string     `toml:"category" json:"category"`
	Description string     `toml:"description" json:"description"`
	Examples    []Example  `toml:"examples" json:"examples"`
	Constraints []string   `toml:"constraints" json:"constraints"`
	StarterCode string     `toml:"starter_code" json:"starterCode"`
	TestCases   []TestCase `toml:"test_cases" json:"testCases"`
}

// PublicTestCases returns the test cases that may be shown to the user.
func (p *Problem) PublicTestCases() []TestCase {
	var out []TestCase
	for _, tc := range p.TestCases {
		if !tc.IsHidden() {
			out = append(out, tc)
		}
	}
	return out
}

// TestCase looks up a test case by id.
func (p *Problem) TestCase(id string) (TestCase, bool) {
	for _, tc := range p.TestCases {
		if tc.ID == id {
			return tc, true
		}
	}
	return TestCase{}, false
}
