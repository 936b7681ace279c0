// Package solver provides the BESS dispatch optimizer.
// The model minimizes curtailment first, then cycling, subject to SoC
// bookkeeping, charge/discharge rate limits and a per-interval grid export
// cap. With that weighting the optimum has a closed form, so no external
// MILP solver is needed: within a surplus interval charging is worthwhile
// exactly up to min(surplus, rate limit, SoC headroom), and discharging
// pays off only when export headroom now frees SoC headroom for surplus a
// later interval would otherwise curtail.
package solver

import (
	"context"
	"fmt"

	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/entities"
)

// DefaultGridLimitFactor caps export at this share of the forecast when
// no explicit grid limit is given, modeling inverter clipping.
const DefaultGridLimitFactor = 0.9

// GreedySolver implements ports.DispatchSolver.
// Each interval represents one hour, so power equals energy per step.
// Charge/discharge efficiency is assumed to be 100%.
type GreedySolver struct{}

// NewGreedySolver creates the dispatch optimizer.
func NewGreedySolver() *GreedySolver {
	return &GreedySolver{}
}

// step is a horizon interval with the grid cap default already applied.
type step struct {
	forecast  float64
	gridLimit float64
}

// Solve optimizes the horizon in time order. The returned plan summarizes
// the first interval and reports the SoC at the end of the horizon.
func (s *GreedySolver) Solve(ctx context.Context, plant entities.PlantMeta, horizon []entities.DispatchInterval) (entities.DispatchPlan, error) {
	if len(horizon) == 0 {
		return entities.DispatchPlan{}, fmt.Errorf("dispatch horizon must contain at least one interval")
	}
	if err := ctx.Err(); err != nil {
		return entities.DispatchPlan{}, err
	}

	soc := clamp(plant.SoC, 0, 1) * maxf(plant.CapacityMWh, 0)
	capacity := maxf(plant.CapacityMWh, 0)
	maxCharge := maxf(plant.MaxChargeMW, 0)
	maxDischarge := maxf(plant.MaxDischargeMW, 0)

	steps := make([]step, len(horizon))
	for i, interval := range horizon {
		forecast := maxf(interval.ForecastMW, 0)
		gridLimit := interval.GridLimitMW
		if gridLimit <= 0 {
			gridLimit = DefaultGridLimitFactor * forecast
		}
		steps[i] = step{forecast: forecast, gridLimit: gridLimit}
	}

	results := make([]entities.IntervalResult, 0, len(horizon))
	for i, st := range steps {
		// Generation above the export cap is surplus: absorb what the
		// battery can take, curtail the rest. Below the cap everything
		// exports, and the spare export headroom can carry a
		// pre-discharge when a later surplus interval would otherwise
		// curtail for lack of SoC headroom. Each MWh discharged into
		// headroom recovers exactly one MWh of that curtailment, so
		// discharge is capped at the future charge shortfall and never
		// cycles beyond what it recovers.
		surplus := st.forecast - st.gridLimit
		var charge, discharge, curtail float64
		export := st.forecast
		if surplus > 0 {
			charge = minf(surplus, maxCharge, capacity-soc)
			curtail = surplus - charge
			export = st.gridLimit
			soc += charge
		} else if maxDischarge > 0 && soc > 0 {
			room := minf(maxDischarge, st.gridLimit-st.forecast, soc)
			discharge = minf(room, chargeShortfall(steps[i+1:], soc, capacity, maxCharge))
			soc -= discharge
			export = st.forecast + discharge
		}

		label := horizon[i].Label
		if label == "" {
			label = fmt.Sprintf("t%d", i)
		}
		results = append(results, entities.IntervalResult{
			Label:         label,
			ForecastMW:    st.forecast,
			GridLimitMW:   st.gridLimit,
			ExportMW:      export,
			ChargeMW:      charge,
			DischargeMW:   discharge,
			CurtailmentMW: curtail,
			SoCMWhEnd:     soc,
		})
	}

	first := results[0]
	return entities.DispatchPlan{
		ExportMW:      first.ExportMW,
		ChargeMW:      first.ChargeMW,
		DischargeMW:   first.DischargeMW,
		CurtailmentMW: first.CurtailmentMW,
		SoCMWh:        soc,
		Intervals:     results,
	}, nil
}

// chargeShortfall walks the remaining horizon without discharging and sums
// the charge lost to SoC headroom in surplus intervals. That is the exact
// amount of curtailment one freed MWh of headroom per MWh discharged now
// can recover.
func chargeShortfall(rest []step, soc, capacity, maxCharge float64) float64 {
	shortfall := 0.0
	for _, st := range rest {
		surplus := st.forecast - st.gridLimit
		if surplus <= 0 {
			continue
		}
		want := minf(surplus, maxCharge)
		charge := minf(want, capacity-soc)
		shortfall += want - charge
		soc += charge
	}
	return shortfall
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(vals ...float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
