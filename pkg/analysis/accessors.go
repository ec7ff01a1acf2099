// Package analysis computes ratio, common-size, decomposition, and
// fraud-risk diagnostics by reading values out of a fam.Engine after
// compute() has run. None of it feeds back into the engine: every function
// here is a pure read of already-computed (or seeded) values.
package analysis

import "github.com/wrenfield/famengine/pkg/fam"

// Snapshot pins an Engine to one period, so every accessor below takes
// just an account id instead of repeating (engine, period) everywhere.
type Snapshot struct {
	Engine *fam.Engine
	Period fam.PeriodId
}

// At returns a Snapshot for the given period on e.
func At(e *fam.Engine, period fam.PeriodId) Snapshot {
	return Snapshot{Engine: e, Period: period}
}

// get reads an account's value, defaulting to 0 if absent — the account
// may simply not exist in a smaller model, and every ratio below is
// written to degrade gracefully rather than panic.
func (s Snapshot) get(id fam.AccountId) float64 {
	v, _ := s.Engine.Value(s.Period, id)
	return v
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func calcGrowth(curr, prior float64) float64 {
	if prior == 0 {
		return 0
	}
	return (curr - prior) / abs(prior)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
