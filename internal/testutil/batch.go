// Package testutil builds deterministic record batches for tests.
package testutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

// Batch builds a record slice with monotonically assigned ids and
// timestamps, so tests construct realistic ordered input without spelling
// every field out.
//
// Timestamps advance by a fixed step per appended record. The same builder
// calls always produce byte-identical batches, which keeps golden tests
// stable.
type Batch struct {
	records []record.Record
	next    int64
	step    int64
}

// NewBatch creates a builder starting at the given unix timestamp,
// advancing 60 seconds per record.
func NewBatch(start int64) *Batch {
	return &Batch{next: start, step: 60}
}

// Step changes the per-record timestamp advance.
func (b *Batch) Step(seconds int64) *Batch {
	b.step = seconds
	return b
}

// Add appends a record with the next id and timestamp, the given username
// and event path, and a course-view URL for the given course.
func (b *Batch) Add(username, path string, courseID int) *Batch {
	b.records = append(b.records, record.Record{
		ID:                len(b.records),
		UnixTime:          b.next,
		Username:          username,
		Verb:              "viewed",
		Path:              path,
		Origin:            "web",
		RelatedActivities: fmt.Sprintf("['https://site/course/view.php?id=%d']", courseID),
	})
	b.next += b.step
	return b
}

// AddRoleEvent appends a role assignment or unassignment row for the given
// user and course.
func (b *Batch) AddRoleEvent(username, rawRole string, courseID int, assign bool) *Batch {
	verb := record.VerbAssigned
	if !assign {
		verb = record.VerbUnassigned
	}
	b.records = append(b.records, record.Record{
		ID:                len(b.records),
		UnixTime:          b.next,
		Username:          username,
		Verb:              verb,
		Context:           rawRole,
		Path:              `\core\event\role_assigned`,
		Origin:            "web",
		RelatedActivities: fmt.Sprintf("['https://site/course/view.php?id=%d']", courseID),
	})
	b.next += b.step
	return b
}

// Records returns the built batch.
func (b *Batch) Records() []record.Record {
	return record.CloneAll(b.records)
}

// CSV renders the batch as a raw log file with the standard export header,
// for ingestion tests that need a file on disk.
func (b *Batch) CSV() string {
	var sb strings.Builder
	sb.WriteString("index,timestamp,Email,ACTION_VERB,Context,OBJECT_NAME,OBJECT_DESCRIPTION,Origin,RelatedActivities\n")
	for _, r := range b.records {
		ts := formatTimestamp(r.UnixTime)
		fmt.Fprintf(&sb, "%d,%s,%s,%s,%s,%s,%s,%s,\"%s\"\n",
			r.ID, ts, r.Username, r.Verb, r.Path, r.Context, r.Description, r.Origin, r.RelatedActivities)
	}
	return sb.String()
}

func formatTimestamp(unix int64) string {
	// fixed UTC rendering keeps test files independent of the host zone
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
