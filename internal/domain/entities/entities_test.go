package entities

import "testing"

func TestDefaultPlantMeta(t *testing.T) {
	plant := DefaultPlantMeta()

	if plant.SoC != 0.35 {
		t.Errorf("expected default SoC 0.35, got %f", plant.SoC)
	}
	if plant.CapacityMWh != 50.0 {
		t.Errorf("expected default capacity 50 MWh, got %f", plant.CapacityMWh)
	}
	if plant.MaxChargeMW != 5.0 || plant.MaxDischargeMW != 5.0 {
		t.Error("expected default rate limits of 5 MW")
	}
}

func TestChunk_WithEmbedding(t *testing.T) {
	chunk := Chunk{
		ID:         "chunk-1",
		DocumentID: "doc-123",
		Content:    "some text",
		Index:      0,
		Embedding:  []float32{0.1, 0.2, 0.3},
	}

	if len(chunk.Embedding) != 3 {
		t.Errorf("expected 3 embedding dims, got %d", len(chunk.Embedding))
	}
}

func TestInsight_Score(t *testing.T) {
	ins := Insight{
		Chunk:     Chunk{ID: "c1", Content: "clipping note"},
		Score:     0.95,
		SourceDoc: "curtailment.md",
	}

	if ins.Score < 0.9 {
		t.Error("expected high score")
	}
}

func TestDispatchResponse_RejectedCarriesNoPlan(t *testing.T) {
	resp := DispatchResponse{Answer: "off topic", Rejected: true}

	if !resp.Rejected {
		t.Error("response should be rejected")
	}
	if len(resp.Plan.Intervals) != 0 {
		t.Error("rejected response should carry no plan")
	}
}
