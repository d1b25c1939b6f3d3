// Package record defines the normalized log record model shared by every
// consolidation stage.
//
// A Record is one user action extracted from a platform export after column
// renaming. Stages own distinct field groups: the sequencer owns ID, the
// classifier owns CourseArea/Component/EventName/Status, the role
// reconstructor owns Roles, the duration calculator owns Duration. No stage
// writes a field owned by another stage.
package record

// Reserved courseid sentinels. Neither names an ordinary course and
// classification rules must never treat them as one.
const (
	// CourseNone marks actions with no course context (site-wide).
	CourseNone = 0
	// CourseFrontPage marks actions on the site front page.
	CourseFrontPage = 1
)

// SystemUsername marks rows produced by the cron subsystem rather than a
// person.
const SystemUsername = "-"

// Verbs that drive role replay.
const (
	VerbAssigned   = "has been assigned"
	VerbUnassigned = "has been unassigned"
)

// Status reports whether the object a record acted on still exists.
type Status string

const (
	StatusUnset     Status = ""
	StatusAvailable Status = "Available"
	StatusDeleted   Status = "DELETED"
)

// Record is one user action. Zero values ("" and 0) stand for fields a stage
// has not populated yet; classification may legitimately leave CourseArea,
// Component or EventName empty when no rule matches.
type Record struct {
	// ID is the dense, zero-based sequence position. It is reassigned by
	// the sequencer after every reordering pass and is not stable across
	// re-sequencing.
	ID int

	// UnixTime is the action timestamp in seconds since the epoch.
	UnixTime int64

	// Time is the original display timestamp from the export.
	Time string

	// Username is an opaque user identifier. SystemUsername is reserved.
	Username string

	// Verb is the raw action verb, e.g. "has been assigned".
	Verb string

	// RelatedActivities is the raw path/URL list; the course id and the
	// originating module are recovered from it.
	RelatedActivities string

	// Path is the raw namespaced event path from the export, e.g.
	// `\mod_forum\event\post_created`. The raw component and event name
	// are recovered from it.
	Path string

	// Context is the human-readable object description.
	Context string

	// Description is the raw event description.
	Description string

	// Origin records how the action entered the platform ("web", "cli",
	// "restore").
	Origin string

	// CourseID is the owning course, or a sentinel (CourseNone,
	// CourseFrontPage).
	CourseID int

	// CourseArea is the course name or functional site area label.
	CourseArea string

	// Component is the canonical subsystem name, e.g. "Assignment".
	Component string

	// EventName is the canonical event label.
	EventName string

	// Roles holds the role(s) the user held in the record's course.
	Roles RoleSet

	// Duration is the gap to the user's next action, in seconds.
	// Meaningful only when HasDuration is true.
	Duration int64

	// HasDuration reports whether Duration has been derived.
	HasDuration bool

	// Status is StatusDeleted when the acted-on object no longer exists.
	Status Status
}

// DateRange bounds a course in time, both ends inclusive, as unix seconds.
type DateRange struct {
	Start int64
	End   int64
}

// Contains reports whether t falls inside the range.
func (d DateRange) Contains(t int64) bool {
	return t >= d.Start && t <= d.End
}

// Clone returns a deep copy of the record. The role set is copied so that
// filtered views never alias the source dataset.
func (r Record) Clone() Record {
	c := r
	c.Roles = r.Roles.Clone()
	return c
}

// CloneAll deep-copies a record slice.
func CloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
