package llm

import (
	"context"
	"encoding/json"
)

// Provider is the judge oracle transport: one prompt in, one JSON document
// out.
type Provider interface {
	// Generate runs req. When req.Schema is set the returned Content has
	// already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Schema switches the provider into its native structured output mode.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema document. Name doubles as the compile
// cache key, so two schemas must not share one.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any

	// Strict requests OpenAI strict mode, which requires every property to
	// be listed in required and additionalProperties to be false.
	Strict bool
}

type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is what actually served the call; gateways may differ from
	// ModelID.
	Model string

	// StopReason is "end" or "max_tokens".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
