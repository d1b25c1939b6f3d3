// Package records exposes the read-only query surface over a consolidated
// dataset.
//
// A Dataset owns its records exclusively: projections return fresh slices
// and filters return new, independent datasets. Query consumers can never
// mutate the consolidated batch through this package.
package records

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

// Dataset is an ordered, consolidated record table. Its lifetime is the
// lifetime of one analysis session.
type Dataset struct {
	records []record.Record
}

// New takes ownership of the given records. Callers must not retain the
// slice.
func New(records []record.Record) *Dataset {
	return &Dataset{records: records}
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns a deep copy of the dataset's rows in order.
func (d *Dataset) Records() []record.Record {
	return record.CloneAll(d.records)
}

// IDs returns the sorted record ids.
func (d *Dataset) IDs() []int {
	ids := make([]int, len(d.records))
	for i, r := range d.records {
		ids[i] = r.ID
	}
	sort.Ints(ids)
	return ids
}

// Times returns the distinct display times in encounter order.
func (d *Dataset) Times() []string {
	return d.distinct(func(r record.Record) string { return r.Time }, false)
}

// Usernames returns the distinct usernames, sorted.
func (d *Dataset) Usernames() []string {
	return d.distinct(func(r record.Record) string { return r.Username }, true)
}

// Roles returns the distinct role names held anywhere in the dataset,
// sorted. Multi-valued role fields contribute each member.
func (d *Dataset) Roles() []string {
	seen := make(map[string]bool)
	var roles []string
	for _, r := range d.records {
		for _, name := range r.Roles.Names() {
			if !seen[name] {
				seen[name] = true
				roles = append(roles, name)
			}
		}
	}
	sortStrings(roles)
	return roles
}

// CourseAreas returns the distinct course-area labels, sorted. Unset areas
// are not reported.
func (d *Dataset) CourseAreas() []string {
	areas := d.distinct(func(r record.Record) string { return r.CourseArea }, true)
	return dropEmpty(areas)
}

// Components returns the distinct canonical components, sorted.
func (d *Dataset) Components() []string {
	comps := d.distinct(func(r record.Record) string { return r.Component }, true)
	return dropEmpty(comps)
}

// Years returns the distinct calendar years of the dataset, ascending.
func (d *Dataset) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, r := range d.records {
		y := yearOf(r)
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// EventNames returns the distinct event names grouped by component, each
// group sorted. Records with an unset component group under the empty key.
func (d *Dataset) EventNames() map[string][]string {
	groups := make(map[string]map[string]bool)
	for _, r := range d.records {
		if groups[r.Component] == nil {
			groups[r.Component] = make(map[string]bool)
		}
		groups[r.Component][r.EventName] = true
	}

	out := make(map[string][]string, len(groups))
	for comp, names := range groups {
		var list []string
		for name := range names {
			list = append(list, name)
		}
		sortStrings(list)
		out[comp] = list
	}
	return out
}

func (d *Dataset) distinct(key func(record.Record) string, sorted bool) []string {
	seen := make(map[string]bool)
	var values []string
	for _, r := range d.records {
		v := key(r)
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	if sorted {
		sortStrings(values)
	}
	return values
}

// sortStrings orders labels with a locale-aware collator so that accented
// course and user names sort the way analysts expect, not by code point.
func sortStrings(values []string) {
	collate.New(language.English).SortStrings(values)
}

func yearOf(r record.Record) int {
	return time.Unix(r.UnixTime, 0).UTC().Year()
}

func dropEmpty(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
