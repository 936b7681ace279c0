package guardrail

import (
	"context"
	"errors"
	"testing"
)

type fakeLLM struct {
	verdict string
	err     error
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, context []string) (string, error) {
	return f.verdict, f.err
}

func TestKeywordGate_AcceptsDispatchQueries(t *testing.T) {
	gate := NewKeywordGate()

	queries := []string{
		"Should we curtail solar output this afternoon?",
		"How should the battery charge during clipping?",
		"What is the SoC limit for discharge?",
	}
	for _, q := range queries {
		ok, _, err := gate.Relevant(context.Background(), q)
		if err != nil {
			t.Fatalf("gate failed: %v", err)
		}
		if !ok {
			t.Errorf("query should be relevant: %q", q)
		}
	}
}

func TestKeywordGate_RejectsOffTopic(t *testing.T) {
	gate := NewKeywordGate()

	ok, reason, err := gate.Relevant(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("gate failed: %v", err)
	}
	if ok {
		t.Error("off-topic query should be rejected")
	}
	if reason != RejectionMessage {
		t.Errorf("unexpected rejection reason: %q", reason)
	}
}

func TestKeywordGate_ExtraTerms(t *testing.T) {
	gate := NewKeywordGate("feeder")

	ok, _, _ := gate.Relevant(context.Background(), "is the feeder congested?")
	if !ok {
		t.Error("extra vocabulary terms should count as relevant")
	}
}

func TestLLMGate_RelevantVerdict(t *testing.T) {
	gate := NewLLMGate(&fakeLLM{verdict: "RELEVANT"})

	ok, _, err := gate.Relevant(context.Background(), "anything at all")
	if err != nil {
		t.Fatalf("gate failed: %v", err)
	}
	if !ok {
		t.Error("RELEVANT verdict should accept")
	}
}

func TestLLMGate_OffTopicVerdict(t *testing.T) {
	gate := NewLLMGate(&fakeLLM{verdict: "off_topic."})

	ok, reason, err := gate.Relevant(context.Background(), "solar dispatch question")
	if err != nil {
		t.Fatalf("gate failed: %v", err)
	}
	if ok {
		t.Error("OFF_TOPIC verdict should reject even keyword-matching queries")
	}
	if reason == "" {
		t.Error("rejection should carry a reason")
	}
}

func TestLLMGate_FallsBackOnError(t *testing.T) {
	gate := NewLLMGate(&fakeLLM{err: errors.New("upstream down")})

	ok, _, err := gate.Relevant(context.Background(), "should we curtail at noon?")
	if err != nil {
		t.Fatalf("classifier failure should fall back, not error: %v", err)
	}
	if !ok {
		t.Error("keyword fallback should accept a dispatch query")
	}
}

func TestLLMGate_FallsBackOnGarbledVerdict(t *testing.T) {
	gate := NewLLMGate(&fakeLLM{verdict: "I think this might be about batteries?"})

	ok, _, err := gate.Relevant(context.Background(), "battery discharge plan")
	if err != nil {
		t.Fatalf("gate failed: %v", err)
	}
	if !ok {
		t.Error("garbled verdict should defer to the keyword gate")
	}
}
