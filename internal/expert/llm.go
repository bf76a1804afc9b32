// Package expert answers questions about the show by grounding an LLM
// response in retrieved dialogue. It defines a provider-agnostic LLM
// interface with a concrete OpenAI implementation and deterministic mocks
// for testing, and enforces the separation between the instruction channel
// and retrieved/user text.
package expert

import (
	"context"
	"errors"
)

var (
	ErrLLMFailed        = errors.New("LLM request failed")
	ErrInvalidConfig    = errors.New("invalid LLM configuration")
	ErrGenerationFailed = errors.New("answer generation failed")
)

// LLM defines the interface for interacting with language models.
// Instructions and input travel on separate channels: implementations must
// dispatch instructions as the system message and input as the user
// message, never concatenated. Implementations must be stateless and
// thread-safe.
type LLM interface {
	// Generate produces text for the given instructions and user input.
	Generate(ctx context.Context, instructions, input string) (string, error)
}

// LLMConfig holds common configuration options for LLM providers.
type LLMConfig struct {
	// Model specifies the model identifier (e.g., "gpt-4o-mini", "gpt-4o")
	Model string

	// Temperature controls randomness (0.0 = deterministic, 2.0 = very random)
	Temperature float32

	// MaxTokens limits the response length (0 = use provider default)
	MaxTokens int

	// APIKey is the authentication key for the provider
	APIKey string
}

// DefaultLLMConfig returns the defaults for grounded answering.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   500,
	}
}
