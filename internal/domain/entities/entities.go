// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import "time"

// PlantMeta describes the BESS attached to the plant for one dispatch request.
type PlantMeta struct {
	SoC            float64 `json:"soc"`
	CapacityMWh    float64 `json:"capacity_mwh"`
	MaxChargeMW    float64 `json:"max_charge_mw"`
	MaxDischargeMW float64 `json:"max_discharge_mw"`
}

// DefaultPlantMeta returns the plant parameters assumed when the operator
// supplies none.
func DefaultPlantMeta() PlantMeta {
	return PlantMeta{
		SoC:            0.35,
		CapacityMWh:    50.0,
		MaxChargeMW:    5.0,
		MaxDischargeMW: 5.0,
	}
}

// Forecast is a short-term solar generation estimate in MW.
type Forecast struct {
	MW         float64
	Confidence float64
	Provider   string
	Note       string // set when a remote provider degraded to a fallback
}

// DispatchInterval holds the optimizer inputs for one horizon step.
type DispatchInterval struct {
	Label       string
	ForecastMW  float64
	GridLimitMW float64 // 0 means "use the default cap"
}

// IntervalResult is the optimizer decision for one horizon step.
type IntervalResult struct {
	Label         string
	ForecastMW    float64
	GridLimitMW   float64
	ExportMW      float64
	ChargeMW      float64
	DischargeMW   float64
	CurtailmentMW float64
	SoCMWhEnd     float64
}

// DispatchPlan is the full optimizer output. The first interval doubles as
// the headline recommendation.
type DispatchPlan struct {
	ExportMW      float64
	ChargeMW      float64
	DischargeMW   float64
	CurtailmentMW float64
	SoCMWh        float64
	Intervals     []IntervalResult
}

// Document represents a source knowledge note (TXT, MD).
type Document struct {
	ID        string
	Name      string
	Path      string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Chunk represents a piece of a document for embedding.
type Chunk struct {
	ID         string
	DocumentID string
	Content    string
	Index      int       // Position in document
	Embedding  []float32 // Vector representation (populated by adapter)
}

// Insight is a retrieved chunk with its relevance score, used to ground the answer.
type Insight struct {
	Chunk     Chunk
	Score     float64
	SourceDoc string // Document name for citation
}

// DispatchRequest is one operator query plus optional plant parameters.
type DispatchRequest struct {
	Query     string
	PlantMeta *PlantMeta
	Horizon   []DispatchInterval
}

// DispatchResponse carries the composed answer and the intermediate results
// it was built from.
type DispatchResponse struct {
	Answer   string
	Forecast Forecast
	Insights []Insight
	Plan     DispatchPlan
	Rejected bool // true when the relevance gate refused the query
}
