package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

func TestDeriveDurations_SuccessorDiffDropsLast(t *testing.T) {
	in := []record.Record{
		rec(0, 100, "u"),
		rec(1, 160, "u"),
		rec(2, 500, "u"),
	}

	out := DeriveDurations(in)

	require.Len(t, out, 2, "the record at t=500 has no successor and is dropped")
	assert.Equal(t, int64(60), out[0].Duration)
	assert.Equal(t, int64(340), out[1].Duration)
	assert.True(t, out[0].HasDuration)
	assert.True(t, out[1].HasDuration)
}

func TestDeriveDurations_PerUserBoundaries(t *testing.T) {
	in := []record.Record{
		rec(0, 100, "a"),
		rec(1, 150, "a"),
		rec(2, 90, "b"),
		rec(3, 120, "b"),
	}

	out := DeriveDurations(in)

	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Username)
	assert.Equal(t, int64(50), out[0].Duration)
	assert.Equal(t, "b", out[1].Username)
	assert.Equal(t, int64(30), out[1].Duration)
}

func TestDeriveDurations_SingleRecordUserContributesNothing(t *testing.T) {
	in := []record.Record{rec(0, 100, "solo")}

	assert.Empty(t, DeriveDurations(in))
}

func TestDeriveDurations_EmptyBatch(t *testing.T) {
	assert.Empty(t, DeriveDurations(nil))
}

func TestUpdateDurationValues_SingleThreshold(t *testing.T) {
	got := UpdateDurationValues([]int64{10, 9999, 50}, "mean_st_dev", 100, 100)

	assert.Equal(t, []int64{10, 100, 50}, got)
}

func TestUpdateDurationValues_SingleThresholdLeavesLowValues(t *testing.T) {
	got := UpdateDurationValues([]int64{1, 200, 3}, "median_mad", 100, 0)

	// values below the threshold are untouched, even tiny ones
	assert.Equal(t, []int64{1, 0, 3}, got)
}

func TestUpdateDurationValues_BoundedFamily(t *testing.T) {
	for _, scenario := range []string{ScenarioWinsor, ScenarioBootTStatistic, ScenarioBootMean} {
		t.Run(scenario, func(t *testing.T) {
			got := UpdateDurationValues([]int64{5, 500, 50}, scenario, 10, 200)

			assert.Equal(t, []int64{10, 200, 50}, got)
		})
	}
}

func TestApplyOutlierPolicy(t *testing.T) {
	in := DeriveDurations([]record.Record{
		rec(0, 0, "u"),
		rec(1, 9999, "u"),
		rec(2, 10040, "u"),
	})
	require.Len(t, in, 2) // durations 9999 and 41

	out := ApplyOutlierPolicy(in, "iqr_median", 100, 100)

	assert.Equal(t, int64(100), out[0].Duration)
	assert.Equal(t, int64(41), out[1].Duration)
	// source batch untouched
	assert.Equal(t, int64(9999), in[0].Duration)
}
