// Package guardrail provides the relevance gate that fronts the pipeline.
// Off-topic queries get an explanatory rejection instead of burning three
// downstream calls.
package guardrail

import (
	"context"
	"regexp"
	"strings"

	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/ports"
)

// RejectionMessage is the operator-facing answer for off-topic queries.
const RejectionMessage = "This assistant only answers questions about solar curtailment and BESS dispatch. Please rephrase your question around plant dispatch, forecasting, or battery operation."

// dispatchVocabulary are the query tokens that mark a question as on-topic
// for the keyword gate.
var dispatchVocabulary = []string{
	"solar", "curtail", "curtailment", "dispatch", "battery", "bess",
	"soc", "charge", "discharge", "export", "grid", "clipping",
	"forecast", "generation", "inverter", "storage", "mw", "mwh",
	"renewable", "pv",
}

var wordRe = regexp.MustCompile(`\p{L}+`)

// KeywordGate implements ports.RelevanceGate with a fixed vocabulary.
// It is the offline default and the fallback when the LLM gate fails.
type KeywordGate struct {
	vocabulary map[string]struct{}
}

// NewKeywordGate creates the keyword gate. Extra terms extend the built-in
// dispatch vocabulary.
func NewKeywordGate(extraTerms ...string) *KeywordGate {
	vocab := make(map[string]struct{}, len(dispatchVocabulary)+len(extraTerms))
	for _, term := range dispatchVocabulary {
		vocab[term] = struct{}{}
	}
	for _, term := range extraTerms {
		vocab[strings.ToLower(term)] = struct{}{}
	}
	return &KeywordGate{vocabulary: vocab}
}

// Relevant accepts a query when any token is in the dispatch vocabulary.
func (g *KeywordGate) Relevant(ctx context.Context, query string) (bool, string, error) {
	for _, token := range wordRe.FindAllString(strings.ToLower(query), -1) {
		if _, ok := g.vocabulary[token]; ok {
			return true, "", nil
		}
	}
	return false, RejectionMessage, nil
}

// LLMGate implements ports.RelevanceGate with a single classification call.
// The model answers RELEVANT or OFF_TOPIC; anything garbled or any transport
// failure falls back to the keyword gate so the pipeline never blocks on the
// classifier.
type LLMGate struct {
	llm      ports.LLMService
	fallback *KeywordGate
}

// NewLLMGate creates the classification gate.
func NewLLMGate(llm ports.LLMService) *LLMGate {
	return &LLMGate{
		llm:      llm,
		fallback: NewKeywordGate(),
	}
}

const classifyPrompt = `You are a relevance filter for a solar dispatch assistant.
Classify whether the question below is about solar generation, curtailment, battery (BESS) dispatch, energy forecasting, or grid export.
Reply with exactly one word: RELEVANT or OFF_TOPIC.

Question: %QUERY%

Classification:`

// Relevant classifies the query with one LLM call.
func (g *LLMGate) Relevant(ctx context.Context, query string) (bool, string, error) {
	prompt := strings.Replace(classifyPrompt, "%QUERY%", query, 1)
	verdict, err := g.llm.Generate(ctx, prompt, nil)
	if err != nil {
		return g.fallback.Relevant(ctx, query)
	}

	switch normalizeVerdict(verdict) {
	case "RELEVANT":
		return true, "", nil
	case "OFF_TOPIC":
		return false, RejectionMessage, nil
	default:
		return g.fallback.Relevant(ctx, query)
	}
}

func normalizeVerdict(verdict string) string {
	v := strings.ToUpper(strings.TrimSpace(verdict))
	v = strings.Trim(v, ".!\"' ")
	// Models sometimes pad the verdict; keep the first word only.
	if idx := strings.IndexAny(v, " \n\t"); idx > 0 {
		v = v[:idx]
	}
	return v
}
