package engine

import (
	"sort"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

// Order establishes the canonical record order every later stage relies on.
//
// Some exports arrive newest-first. The first and last timestamps decide:
// if the first is greater than the last the whole batch is reversed before
// anything else. The batch is then stable-sorted by (UnixTime, ID) and
// IDs are reassigned as the dense zero-based position. A final stable sort
// by (Username, ID) groups each user's actions contiguously while keeping
// them chronological within the group.
//
// IDs are reassigned after every pass that changes row order. Per-user
// diffing downstream assumes IDs are dense and monotonic inside each user
// group, so density must be restored each time, not only once.
//
// Order never rejects input; a batch with fewer than two records is
// returned as-is apart from ID reassignment. Running Order twice yields
// the same result as running it once.
func Order(records []record.Record) []record.Record {
	out := record.CloneAll(records)
	if len(out) < 2 {
		reassignIDs(out)
		return out
	}

	// A batch already in canonical order is returned unchanged. The check
	// keeps Order idempotent: a sequenced batch whose last user group
	// carries the earliest timestamps would otherwise look
	// reverse-chronological and be reversed again, swapping tied records.
	if isSequenced(out) {
		return out
	}

	if out[0].UnixTime > out[len(out)-1].UnixTime {
		reverse(out)
		reassignIDs(out)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UnixTime != out[j].UnixTime {
			return out[i].UnixTime < out[j].UnixTime
		}
		return out[i].ID < out[j].ID
	})
	reassignIDs(out)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].ID < out[j].ID
	})
	reassignIDs(out)

	return out
}

// isSequenced reports whether records already satisfy the output
// invariant: dense zero-based IDs, user groups in ascending username
// order, and non-decreasing timestamps inside each group.
func isSequenced(records []record.Record) bool {
	for i, r := range records {
		if r.ID != i {
			return false
		}
		if i == 0 {
			continue
		}
		prev := records[i-1]
		if r.Username < prev.Username {
			return false
		}
		if r.Username == prev.Username && r.UnixTime < prev.UnixTime {
			return false
		}
	}
	return true
}

func reverse(records []record.Record) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
}

func reassignIDs(records []record.Record) {
	for i := range records {
		records[i].ID = i
	}
}
