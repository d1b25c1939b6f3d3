package store

import (
	"strings"
)

// Filter selects a subset of a persisted run's records. Empty criteria are
// skipped; criteria of different kinds combine with AND, values inside one
// kind with OR, mirroring the in-memory dataset filter.
type Filter struct {
	CourseAreas []string
	Roles       []string
	Usernames   []string
	Components  []string
}

const recordColumns = `id, unix_time, time, role, username, courseid,
		 course_area, context, component, event_name, duration, status`

// compileFilter builds a parameterized SELECT for a run's records. Values
// are never interpolated into the SQL, and every query carries a
// deterministic ORDER BY so repeated reads return identical row order.
func compileFilter(runID string, f Filter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT " + recordColumns + " FROM records WHERE run_id = ?")
	params := []any{runID}

	appendIn(&b, &params, "course_area", f.CourseAreas)
	appendIn(&b, &params, "username", f.Usernames)
	appendIn(&b, &params, "component", f.Components)
	appendRoles(&b, &params, f.Roles)

	b.WriteString(" ORDER BY id ASC")
	return b.String(), params
}

func appendIn(b *strings.Builder, params *[]any, column string, values []string) {
	if len(values) == 0 {
		return
	}
	b.WriteString(" AND " + column + " IN (")
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("?")
		*params = append(*params, v)
	}
	b.WriteString(")")
}

// appendRoles matches against the comma-joined role cell. Padding both
// sides with the separator makes the match exact per member, so "Teacher"
// cannot match a record holding only "Non-editing Teacher".
func appendRoles(b *strings.Builder, params *[]any, roles []string) {
	if len(roles) == 0 {
		return
	}
	b.WriteString(" AND (")
	for i, role := range roles {
		if i > 0 {
			b.WriteString(" OR ")
		}
		b.WriteString("(', ' || role || ', ') LIKE ('%, ' || ? || ', %')")
		*params = append(*params, role)
	}
	b.WriteString(")")
}
