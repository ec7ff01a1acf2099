package analysis

import (
	"math"
	"strconv"
)

// benfordDistribution is the expected frequency for leading digits 1-9.
var benfordDistribution = map[int]float64{
	1: 0.30103, 2: 0.17609, 3: 0.12494, 4: 0.09691, 5: 0.07918,
	6: 0.06695, 7: 0.05799, 8: 0.05115, 9: 0.04576,
}

// BenfordResult holds the analysis of a leading-digit distribution.
type BenfordResult struct {
	DigitCounts      map[int]int
	DigitFrequencies map[int]float64
	TotalCount       int
	MAD              float64 // Mean Absolute Deviation
	Flagged          bool
	Level            string
}

// AnalyzeBenfordsLaw performs first-digit analysis over an arbitrary set
// of values. Values with absolute value < 1 are ignored as noise.
//
// MAD thresholds (common audit heuristics):
//
//	< 0.010: Low Risk
//	0.010 - 0.015: Medium Risk
//	> 0.015: High Risk
func AnalyzeBenfordsLaw(values []float64) BenfordResult {
	counts := make(map[int]int)
	processed := 0

	for _, v := range values {
		vAbs := math.Abs(v)
		if vAbs < 1.0 {
			continue
		}
		s := strconv.FormatFloat(vAbs, 'f', -1, 64)
		leading := -1
		for _, c := range s {
			if c >= '1' && c <= '9' {
				leading = int(c - '0')
				break
			}
		}
		if leading != -1 {
			counts[leading]++
			processed++
		}
	}

	if processed == 0 {
		return BenfordResult{Level: "Insufficient Data"}
	}

	freqs := make(map[int]float64)
	sumDiff := 0.0
	for d := 1; d <= 9; d++ {
		actual := float64(counts[d]) / float64(processed)
		freqs[d] = actual
		sumDiff += math.Abs(actual - benfordDistribution[d])
	}
	mad := sumDiff / 9.0

	level := "Low Risk"
	flagged := false
	if mad > 0.015 {
		level = "High Risk"
		flagged = true
	} else if mad > 0.010 {
		level = "Medium Risk"
	}

	return BenfordResult{
		DigitCounts:      counts,
		DigitFrequencies: freqs,
		TotalCount:       processed,
		MAD:              mad,
		Flagged:          flagged,
		Level:            level,
	}
}

// ValuesAcrossPeriods flattens every account value across every period the
// engine knows about, for feeding into AnalyzeBenfordsLaw.
func ValuesAcrossPeriods(s Snapshot) []float64 {
	var out []float64
	for _, p := range s.Engine.AllPeriods() {
		for _, a := range s.Engine.AllAccounts() {
			if v, ok := s.Engine.Value(p.Id, a.Id); ok {
				out = append(out, v)
			}
		}
	}
	return out
}
