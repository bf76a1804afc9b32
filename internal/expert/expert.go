package expert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/schrutefarms/dunder/internal/rag"
)

// DefaultTopK is how many dialogue records are retrieved per question.
const DefaultTopK = 5

// DefaultGenerateTimeout bounds one generation call. A stuck provider must
// surface as a failed query, not hang it; the call is still never retried.
const DefaultGenerateTimeout = 30 * time.Second

// Retriever is the retrieval dependency of the expert, satisfied by
// rag.Retriever and by test fakes.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, opts *rag.SearchOptions) ([]rag.Match, error)
}

// Answer is one grounded response.
type Answer struct {
	// Text is the generated response.
	Text string `json:"text"`

	// Matches are the dialogue records the response was grounded in, in
	// rank order. Empty when retrieval was unavailable.
	Matches []rag.Match `json:"matches,omitempty"`

	// Degraded is true when retrieval failed and the answer was generated
	// from persona instructions alone.
	Degraded bool `json:"degraded"`

	// Model is the LLM model that produced the text.
	Model string `json:"model"`

	// Latency is the end-to-end time for retrieval plus generation.
	Latency time.Duration `json:"latency"`
}

// Expert answers questions about the show using retrieval-augmented
// generation. Stateless; safe for concurrent queries.
type Expert struct {
	retriever Retriever
	llm       LLM
	config    LLMConfig
	topK      int
	budget    int
	log       *zap.Logger
}

// NewExpert creates an expert. topK <= 0 and budget <= 0 select defaults;
// a nil logger disables logging.
func NewExpert(retriever Retriever, llm LLM, config LLMConfig, topK, budget int, log *zap.Logger) (*Expert, error) {
	if retriever == nil {
		return nil, fmt.Errorf("retriever cannot be nil")
	}
	if llm == nil {
		return nil, fmt.Errorf("llm cannot be nil")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if budget <= 0 {
		budget = DefaultContextBudget
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Expert{
		retriever: retriever,
		llm:       llm,
		config:    config,
		topK:      topK,
		budget:    budget,
		log:       log,
	}, nil
}

// Ask retrieves relevant dialogue, assembles a guarded prompt, and
// generates an answer. An unavailable retrieval degrades to persona-only
// generation rather than failing the query; a generation failure surfaces
// as ErrGenerationFailed without exposing the instruction channel.
func (e *Expert) Ask(ctx context.Context, question string) (*Answer, error) {
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", ErrGenerationFailed)
	}

	start := time.Now()

	matches, err := e.retriever.Retrieve(ctx, question, e.topK, nil)
	if err != nil {
		if !errors.Is(err, rag.ErrRetrievalUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		e.log.Warn("retrieval unavailable, answering without context", zap.Error(err))
		matches = nil
	}
	degraded := err != nil

	prompt := Assemble(question, matches, e.budget)

	// Generation is never retried: a timed-out call may already have
	// completed and incurred cost on the provider side.
	gctx, cancel := context.WithTimeout(ctx, DefaultGenerateTimeout)
	defer cancel()
	text, err := e.llm.Generate(gctx, prompt.Instructions, prompt.Input())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return &Answer{
		Text:     text,
		Matches:  matches,
		Degraded: degraded,
		Model:    e.config.Model,
		Latency:  time.Since(start),
	}, nil
}
