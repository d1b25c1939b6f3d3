package engine

import (
	"github.com/AD1529/xapi-consolidate/internal/record"
)

// DeriveDurations computes, for every record, the gap in seconds to the
// same user's next action. The input must already be in the sequencer's
// (Username, ID) order; the duration of record i is |t[i] - t[i+1]| against
// its successor inside the user group.
//
// Each user's last record has no successor and therefore no defined
// duration; it is dropped from the output entirely rather than carried
// with a placeholder. A user with a single record contributes nothing.
func DeriveDurations(records []record.Record) []record.Record {
	out := make([]record.Record, 0, len(records))
	for i := range records {
		if i+1 >= len(records) || records[i+1].Username != records[i].Username {
			continue
		}
		r := records[i].Clone()
		r.Duration = abs64(records[i].UnixTime - records[i+1].UnixTime)
		r.HasDuration = true
		out = append(out, r)
	}
	return out
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
