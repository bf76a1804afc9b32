package expert

import "context"

// MockLLM is a deterministic LLM implementation for testing.
type MockLLM struct {
	// Response is the fixed text returned by Generate.
	Response string

	// Error, if set, is returned by Generate instead of a response.
	Error error

	// LastInstructions and LastInput store the most recent channels passed
	// to Generate, so tests can assert on what was dispatched where.
	LastInstructions string
	LastInput        string

	// Calls counts Generate invocations.
	Calls int
}

// NewMockLLM creates a mock LLM with the given fixed response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithError creates a mock LLM that always returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Error: err}
}

// Generate records both channels and returns the configured response.
func (m *MockLLM) Generate(ctx context.Context, instructions, input string) (string, error) {
	m.Calls++
	m.LastInstructions = instructions
	m.LastInput = input

	if m.Error != nil {
		return "", m.Error
	}
	return m.Response, nil
}
