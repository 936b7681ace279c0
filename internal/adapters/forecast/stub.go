// Package forecast provides solar generation forecast adapters.
// Providers degrade to the stub estimate instead of failing, so the
// dispatch pipeline always has a number to work with.
package forecast

import (
	"context"

	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/entities"
)

// Stub values used when no forecasting backend is configured and as the
// fallback when a remote provider fails.
const (
	StubMW         = 42.5
	StubConfidence = 0.87
)

// StubForecaster implements ports.Forecaster with a fixed estimate.
type StubForecaster struct{}

// NewStubForecaster creates the fixed-value forecaster.
func NewStubForecaster() *StubForecaster {
	return &StubForecaster{}
}

// Forecast returns the fixed stub estimate.
func (f *StubForecaster) Forecast(ctx context.Context) (entities.Forecast, error) {
	return entities.Forecast{
		MW:         StubMW,
		Confidence: StubConfidence,
		Provider:   "stub",
	}, nil
}
