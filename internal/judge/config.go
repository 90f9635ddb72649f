package judge

// Config controls the behavior of the Client.
type Config struct {
	// Validators run in order on every decoded verdict; the first failure
	// degrades the verdict.
	Validators []Validator

	// MaxTokens is the token budget for the oracle response.
	MaxTokens int

	// Temperature controls oracle output randomness (0.0-1.0).
	Temperature float64

	// Language labels the code fence in the request.
	Language string
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&TestCaseValidator{},
		},
		MaxTokens:   4096,
		Temperature: 0,
		Language:    "javascript",
	}
}
