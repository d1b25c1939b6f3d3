package engine

import (
	"sort"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

// Role labels written when replay yields nothing.
const (
	// RoleGuest is given to users who appear in a course without ever
	// holding a role there, and to users whose replayed role set ends up
	// empty.
	RoleGuest = "Guest"

	// RoleAuthenticated is the site-wide fallback for any record still
	// roleless after course-level replay, including all front-page and
	// site-wide actions.
	RoleAuthenticated = "Authenticated user"
)

// DefaultRoleNames maps raw platform role identifiers to display names.
var DefaultRoleNames = map[string]string{
	"student role":        "Student",
	"editingteacher role": "Teacher",
	"teacher role":        "Non-editing Teacher",
	"administratif role":  "Administrative",
}

// RoleOptions configures role reconstruction.
type RoleOptions struct {
	// PointInTime makes each record carry the role set in effect at its
	// own timestamp instead of the terminal snapshot. The default is the
	// terminal snapshot: the set left after replaying every role event in
	// the batch, applied uniformly to all of the user's records in the
	// course. Role changes are rare within one course, so the snapshot is
	// usually indistinguishable; the point-in-time variant exists for
	// datasets where it is not.
	PointInTime bool

	// RoleNames maps raw role identifiers to display names. Nil means
	// DefaultRoleNames. Identifiers absent from the map pass through
	// unchanged.
	RoleNames map[string]string
}

// roleEvent is the derived view over a classified record that drives
// replay. Role events are recognized by canonical component "Role", which
// is why classification must complete before this stage runs.
type roleEvent struct {
	unixTime int64
	id       int
	roleName string
	assign   bool
}

// ReconstructRoles recovers the role each user held in each course from the
// assignment/unassignment events embedded in the log itself, and writes the
// resolved set onto every record. Returns a new slice.
//
// Replay is a per-(username, courseid) state machine over the course's role
// events in ascending time order: assign adds the role if absent, unassign
// removes it if present. An unassignment without a prior assignment is a
// tolerated inconsistency in source logs and is silently ignored.
//
// The courseid sentinels are never replayed: site-wide and front-page
// actions always resolve to RoleAuthenticated.
func ReconstructRoles(records []record.Record, opts RoleOptions) []record.Record {
	names := opts.RoleNames
	if names == nil {
		names = DefaultRoleNames
	}

	out := record.CloneAll(records)

	for _, courseID := range courseIDs(out) {
		if courseID == record.CourseNone || courseID == record.CourseFrontPage {
			continue
		}
		if opts.PointInTime {
			replayPointInTime(out, courseID)
		} else {
			replayTerminal(out, courseID)
		}
	}

	for i := range out {
		if out[i].Roles.IsEmpty() {
			out[i].Roles = record.NewRoleSet(RoleAuthenticated)
			continue
		}
		out[i].Roles = out[i].Roles.Map(func(raw string) string {
			if display, ok := names[raw]; ok {
				return display
			}
			return raw
		})
	}

	return out
}

// replayTerminal computes one final role set per user from the full event
// stream of the course and applies it to every record of that user there.
func replayTerminal(records []record.Record, courseID int) {
	events := collectRoleEvents(records, courseID)

	sets := make(map[string]*record.RoleSet)
	for user, evs := range events {
		set := &record.RoleSet{}
		for _, ev := range evs {
			if ev.assign {
				set.Add(ev.roleName)
			} else {
				set.Remove(ev.roleName)
			}
		}
		sets[user] = set
	}

	for i := range records {
		r := &records[i]
		if r.CourseID != courseID {
			continue
		}
		set, ok := sets[r.Username]
		if !ok || set.IsEmpty() {
			// present in the course, never (effectively) assigned
			r.Roles = record.NewRoleSet(RoleGuest)
			continue
		}
		r.Roles = set.Clone()
	}
}

// replayPointInTime advances each user's state machine alongside that
// user's records, so every record sees the set in effect at its timestamp.
// Events at exactly the record's timestamp are considered already applied.
func replayPointInTime(records []record.Record, courseID int) {
	events := collectRoleEvents(records, courseID)

	// index of the course's records per user, in ascending time order
	perUser := make(map[string][]int)
	for i, r := range records {
		if r.CourseID == courseID {
			perUser[r.Username] = append(perUser[r.Username], i)
		}
	}

	for user, idxs := range perUser {
		sort.SliceStable(idxs, func(a, b int) bool {
			ra, rb := records[idxs[a]], records[idxs[b]]
			if ra.UnixTime != rb.UnixTime {
				return ra.UnixTime < rb.UnixTime
			}
			return ra.ID < rb.ID
		})

		evs := events[user]
		var set record.RoleSet
		next := 0
		for _, idx := range idxs {
			r := &records[idx]
			for next < len(evs) && evs[next].unixTime <= r.UnixTime {
				if evs[next].assign {
					set.Add(evs[next].roleName)
				} else {
					set.Remove(evs[next].roleName)
				}
				next++
			}
			if set.IsEmpty() {
				r.Roles = record.NewRoleSet(RoleGuest)
			} else {
				r.Roles = set.Clone()
			}
		}
	}
}

// collectRoleEvents gathers the course's role events per username, sorted
// ascending by (time, id). The role name is carried in the record context.
func collectRoleEvents(records []record.Record, courseID int) map[string][]roleEvent {
	events := make(map[string][]roleEvent)
	for _, r := range records {
		if r.CourseID != courseID || r.Component != "Role" {
			continue
		}
		switch r.Verb {
		case record.VerbAssigned:
			events[r.Username] = append(events[r.Username], roleEvent{unixTime: r.UnixTime, id: r.ID, roleName: r.Context, assign: true})
		case record.VerbUnassigned:
			events[r.Username] = append(events[r.Username], roleEvent{unixTime: r.UnixTime, id: r.ID, roleName: r.Context, assign: false})
		}
	}
	for user := range events {
		evs := events[user]
		sort.SliceStable(evs, func(i, j int) bool {
			if evs[i].unixTime != evs[j].unixTime {
				return evs[i].unixTime < evs[j].unixTime
			}
			return evs[i].id < evs[j].id
		})
	}
	return events
}

// courseIDs returns the distinct course ids present in the batch, in
// ascending order for deterministic processing.
func courseIDs(records []record.Record) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, r := range records {
		if !seen[r.CourseID] {
			seen[r.CourseID] = true
			ids = append(ids, r.CourseID)
		}
	}
	sort.Ints(ids)
	return ids
}
