package forecast

import (
	"context"

	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/entities"
)

// naiveConfidence reflects that a linear projection carries no model skill.
const naiveConfidence = 0.5

// NaiveForecaster implements ports.Forecaster by extrapolating recent
// observed output with the mean slope of the history.
type NaiveForecaster struct {
	history []float64 // recent observed output in MW, oldest first
}

// NewNaiveForecaster creates a projection forecaster over recent
// observations. History shorter than two points degrades to the stub.
func NewNaiveForecaster(historyMW []float64) *NaiveForecaster {
	return &NaiveForecaster{history: historyMW}
}

// Forecast projects one step ahead of the configured history.
func (f *NaiveForecaster) Forecast(ctx context.Context) (entities.Forecast, error) {
	projected := Project(f.history, 1)
	if projected == nil {
		return entities.Forecast{
			MW:         StubMW,
			Confidence: StubConfidence,
			Provider:   "naive",
			Note:       "insufficient history for projection; using stub",
		}, nil
	}
	return entities.Forecast{
		MW:         projected[0],
		Confidence: naiveConfidence,
		Provider:   "naive",
	}, nil
}

// Project extrapolates future output from history using the mean slope
// (last minus first, divided by the number of gaps). Returns nil when the
// history cannot support a slope.
func Project(historyMW []float64, steps int) []float64 {
	if len(historyMW) < 2 || steps <= 0 {
		return nil
	}
	slope := (historyMW[len(historyMW)-1] - historyMW[0]) / float64(len(historyMW)-1)

	out := make([]float64, steps)
	current := historyMW[len(historyMW)-1]
	for i := 0; i < steps; i++ {
		current += slope
		if current < 0 {
			current = 0
		}
		out[i] = current
	}
	return out
}
