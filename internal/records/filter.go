package records

import (
	"github.com/AD1529/xapi-consolidate/internal/record"
)

// FilterOptions selects a subset of a dataset. Nil/empty criteria are
// skipped; criteria of different kinds combine with AND, values inside one
// kind with OR.
type FilterOptions struct {
	// CourseAreas keeps records whose course area is in the list.
	CourseAreas []string

	// Roles keeps records holding at least one of the listed roles. A
	// multi-valued role field matches if any member matches.
	Roles []string

	// Usernames keeps records of the listed users.
	Usernames []string

	// Years keeps records whose calendar year is in the list.
	Years []int

	// CourseDates drops records whose timestamp falls outside the bounds
	// of their course. A course absent from the table leaves its records
	// untouched: absence of bounds means "no filter", never "delete all".
	CourseDates map[int]record.DateRange
}

// Filter returns a new, independent dataset holding the matching records.
// The source dataset is never mutated.
func (d *Dataset) Filter(opts FilterOptions) *Dataset {
	var kept []record.Record
	for _, r := range d.records {
		if !opts.matches(r) {
			continue
		}
		kept = append(kept, r.Clone())
	}
	return New(kept)
}

func (o FilterOptions) matches(r record.Record) bool {
	if len(o.CourseAreas) > 0 && !containsString(o.CourseAreas, r.CourseArea) {
		return false
	}
	if len(o.Roles) > 0 && !holdsAny(r.Roles, o.Roles) {
		return false
	}
	if len(o.Usernames) > 0 && !containsString(o.Usernames, r.Username) {
		return false
	}
	if len(o.Years) > 0 && !containsInt(o.Years, yearOf(r)) {
		return false
	}
	if o.CourseDates != nil {
		if bounds, ok := o.CourseDates[r.CourseID]; ok && !bounds.Contains(r.UnixTime) {
			return false
		}
	}
	return true
}

func holdsAny(roles record.RoleSet, wanted []string) bool {
	for _, w := range wanted {
		if roles.Contains(w) {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
