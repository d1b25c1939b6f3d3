package engine

import "github.com/AD1529/xapi-consolidate/internal/record"

// Outlier scenarios name the statistical method family that produced the
// thresholds. The engine does not compute the estimators itself, it only
// applies their output; which family a scenario belongs to decides how the
// two parameters are interpreted.
//
// Bounded-replace scenarios (Winsorizing, bootstrap estimators) naturally
// produce a bounded interval, so both parameters act as clamp bounds.
// Every other scenario (mean/median plus threshold estimators) produces a
// single ceiling, so the first parameter is the ceiling and the second the
// substitute written over values that exceed it.
const (
	ScenarioWinsor         = "winsor"
	ScenarioBootTStatistic = "boot_t_statistic"
	ScenarioBootMean       = "boot_mean"
)

// boundedScenarios is the bounded-replace family.
var boundedScenarios = map[string]bool{
	ScenarioWinsor:         true,
	ScenarioBootTStatistic: true,
	ScenarioBootMean:       true,
}

// UpdateDurationValues applies an outlier policy to a list of duration
// values and returns the updated list.
//
// For a bounded-replace scenario, threshold and substitute act as the
// lower and upper clamp bounds. For a single-threshold scenario, values
// above threshold are replaced by substitute and values below are left
// untouched.
func UpdateDurationValues(values []int64, scenario string, threshold, substitute int64) []int64 {
	if boundedScenarios[scenario] {
		return clampBounded(values, threshold, substitute)
	}

	out := make([]int64, len(values))
	for i, v := range values {
		if v > threshold {
			out[i] = substitute
		} else {
			out[i] = v
		}
	}
	return out
}

// clampBounded clamps values outside [lower, upper] to the nearest bound
// rather than discarding them.
func clampBounded(values []int64, lower, upper int64) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		switch {
		case v > upper:
			out[i] = upper
		case v < lower:
			out[i] = lower
		default:
			out[i] = v
		}
	}
	return out
}

// ApplyOutlierPolicy rewrites the durations of a batch in a new slice,
// leaving records without a derived duration untouched. The policy is
// applied post hoc and is independent of the base calculation, so callers
// can re-run it with different scenarios over the same batch.
func ApplyOutlierPolicy(records []record.Record, scenario string, threshold, substitute int64) []record.Record {
	out := record.CloneAll(records)

	var idxs []int
	var values []int64
	for i := range out {
		if out[i].HasDuration {
			idxs = append(idxs, i)
			values = append(values, out[i].Duration)
		}
	}

	updated := UpdateDurationValues(values, scenario, threshold, substitute)
	for n, i := range idxs {
		out[i].Duration = updated[n]
	}
	return out
}
