// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces.
// They contain NO framework code - just the pipeline logic.
package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/entities"
	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/ports"
)

// DispatchUseCase runs the operator-query pipeline:
// relevance gate, solar forecast, knowledge retrieval, dispatch optimization,
// then a single composed answer referencing all three results in that order.
type DispatchUseCase struct {
	gate       ports.RelevanceGate
	forecaster ports.Forecaster
	embedder   ports.EmbeddingService
	store      ports.VectorStore
	solver     ports.DispatchSolver
	llm        ports.LLMService // nil means offline template composition
	topK       int
	plant      entities.PlantMeta // used when the request carries no plant metadata
}

// NewDispatchUseCase creates a DispatchUseCase with injected dependencies.
// llm may be nil; the answer is then composed from a deterministic template.
// The request-level default plant starts at DefaultPlantMeta and can be
// replaced with SetDefaultPlant.
func NewDispatchUseCase(
	gate ports.RelevanceGate,
	forecaster ports.Forecaster,
	embedder ports.EmbeddingService,
	store ports.VectorStore,
	solver ports.DispatchSolver,
	llm ports.LLMService,
	topK int,
) *DispatchUseCase {
	if topK <= 0 {
		topK = 3
	}
	return &DispatchUseCase{
		gate:       gate,
		forecaster: forecaster,
		embedder:   embedder,
		store:      store,
		solver:     solver,
		llm:        llm,
		topK:       topK,
		plant:      entities.DefaultPlantMeta(),
	}
}

// SetDefaultPlant replaces the plant parameters assumed for requests that
// carry no plant metadata of their own.
func (uc *DispatchUseCase) SetDefaultPlant(plant entities.PlantMeta) {
	if plant.CapacityMWh <= 0 {
		return
	}
	uc.plant = plant
}

// DefaultPlant returns the plant assumed for requests without metadata.
func (uc *DispatchUseCase) DefaultPlant() entities.PlantMeta {
	return uc.plant
}

// Run executes the pipeline for one operator query.
// A gate rejection short-circuits: none of the downstream steps run and the
// response carries the rejection reason as its answer.
func (uc *DispatchUseCase) Run(ctx context.Context, req *entities.DispatchRequest) (*entities.DispatchResponse, error) {
	ok, reason, err := uc.gate.Relevant(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("relevance gate: %w", err)
	}
	if !ok {
		return &entities.DispatchResponse{Answer: reason, Rejected: true}, nil
	}

	// 1. Solar forecast
	forecast, err := uc.forecaster.Forecast(ctx)
	if err != nil {
		return nil, fmt.Errorf("forecasting: %w", err)
	}

	// 2. Grounded knowledge retrieval
	insights, err := uc.retrieve(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("retrieving insights: %w", err)
	}

	// 3. Dispatch optimization
	plant := uc.plant
	if req.PlantMeta != nil {
		plant = *req.PlantMeta
	}
	horizon := req.Horizon
	if len(horizon) == 0 {
		horizon = []entities.DispatchInterval{{Label: "t0", ForecastMW: forecast.MW}}
	}
	plan, err := uc.solver.Solve(ctx, plant, horizon)
	if err != nil {
		return nil, fmt.Errorf("solving dispatch: %w", err)
	}

	answer, err := uc.compose(ctx, req.Query, forecast, insights, plan)
	if err != nil {
		return nil, fmt.Errorf("composing answer: %w", err)
	}

	return &entities.DispatchResponse{
		Answer:   answer,
		Forecast: forecast,
		Insights: insights,
		Plan:     plan,
	}, nil
}

// retrieve embeds the query and searches the vector store for the top
// supporting chunks. An empty store yields no insights, not an error.
func (uc *DispatchUseCase) retrieve(ctx context.Context, query string) ([]entities.Insight, error) {
	embedding, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return uc.store.Search(ctx, embedding, uc.topK)
}

// compose builds the final answer. With an LLM configured the model writes
// the prose; without one the pipeline output is stitched via a fixed template
// in forecast, insights, dispatch order.
func (uc *DispatchUseCase) compose(ctx context.Context, query string, forecast entities.Forecast, insights []entities.Insight, plan entities.DispatchPlan) (string, error) {
	stitched := renderAnalysis(query, forecast, insights, plan)
	if uc.llm == nil {
		return stitched, nil
	}

	prompt := buildAnswerPrompt(query, forecast, insights, plan)
	answer, err := uc.llm.Generate(ctx, prompt, insightTexts(insights))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return stitched, nil
	}
	return answer, nil
}

// renderAnalysis is the offline composition path. Section order is part of
// the contract: forecast, then insights, then dispatch.
func renderAnalysis(query string, forecast entities.Forecast, insights []entities.Insight, plan entities.DispatchPlan) string {
	var sb strings.Builder
	sb.WriteString("=== DISPATCH ANALYSIS ===\n\n")
	sb.WriteString("Operator Query:\n")
	sb.WriteString(query)
	sb.WriteString("\n\nSolar Forecast:\n")
	fmt.Fprintf(&sb, " - Expected output: %.1f MW (confidence %.2f, provider %s)\n", forecast.MW, forecast.Confidence, forecast.Provider)
	if forecast.Note != "" {
		fmt.Fprintf(&sb, " - Note: %s\n", forecast.Note)
	}

	sb.WriteString("\nGrounded Insights:\n")
	if len(insights) == 0 {
		sb.WriteString(" - No knowledge notes ingested yet.\n")
	}
	for _, ins := range insights {
		fmt.Fprintf(&sb, " - [%s] %s (score %.2f)\n", ins.SourceDoc, ins.Chunk.Content, ins.Score)
	}

	sb.WriteString("\nOptimized Dispatch:\n")
	fmt.Fprintf(&sb, " - Export: %.1f MW\n", plan.ExportMW)
	fmt.Fprintf(&sb, " - Charge: %.1f MW\n", plan.ChargeMW)
	fmt.Fprintf(&sb, " - Discharge: %.1f MW\n", plan.DischargeMW)
	fmt.Fprintf(&sb, " - Curtailment: %.1f MW\n", plan.CurtailmentMW)
	fmt.Fprintf(&sb, " - SoC at end of horizon: %.1f MWh\n", plan.SoCMWh)

	sb.WriteString("\nRecommendation:\n")
	sb.WriteString(recommendation(plan))
	sb.WriteString("\n")
	return sb.String()
}

// recommendation summarizes the plan's first-order action for the operator.
func recommendation(plan entities.DispatchPlan) string {
	switch {
	case plan.ChargeMW > 0 && plan.CurtailmentMW > 0:
		return fmt.Sprintf("Charge the BESS at %.1f MW to absorb clipping; %.1f MW of curtailment remains unavoidable at current limits.", plan.ChargeMW, plan.CurtailmentMW)
	case plan.ChargeMW > 0:
		return fmt.Sprintf("Charge the BESS at %.1f MW to absorb generation above the grid export cap.", plan.ChargeMW)
	case plan.CurtailmentMW > 0:
		return fmt.Sprintf("BESS headroom is exhausted; curtail %.1f MW this interval.", plan.CurtailmentMW)
	default:
		return "Export the full forecast output; no charging or curtailment is required."
	}
}

func buildAnswerPrompt(query string, forecast entities.Forecast, insights []entities.Insight, plan entities.DispatchPlan) string {
	var sb strings.Builder
	sb.WriteString("You are a dispatch assistant for a solar plant with battery storage. ")
	sb.WriteString("Answer the operator's question using the tool outputs below. ")
	sb.WriteString("Reference the forecast, the retrieved insights, and the dispatch recommendation, in that order.\n\n")
	sb.WriteString("Tool outputs:\n")
	sb.WriteString(renderAnalysis(query, forecast, insights, plan))
	sb.WriteString("\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}

func insightTexts(insights []entities.Insight) []string {
	texts := make([]string, len(insights))
	for i, ins := range insights {
		texts[i] = fmt.Sprintf("[Source: %s]\n%s", ins.SourceDoc, ins.Chunk.Content)
	}
	return texts
}
