package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

func sampleDataset() *Dataset {
	return New([]record.Record{
		{ID: 0, UnixTime: 1696230000, Username: "bob", CourseID: 5, CourseArea: "Algebra", Component: "Forum", EventName: "Post created", Roles: record.NewRoleSet("Student")},
		{ID: 1, UnixTime: 1696230100, Username: "alice", CourseID: 5, CourseArea: "Algebra", Component: "Forum", EventName: "Discussion viewed", Roles: record.NewRoleSet("Teacher")},
		{ID: 2, UnixTime: 1727852400, Username: "alice", CourseID: 7, CourseArea: "Biology", Component: "Quiz", EventName: "Quiz attempt started", Roles: record.NewRoleSet("Student", "Teacher")},
		{ID: 3, UnixTime: 1696230200, Username: "carol", CourseID: 0, CourseArea: "Authentication", Component: "Login", EventName: "User has logged in", Roles: record.NewRoleSet("Authenticated user")},
	})
}

func TestDataset_Projections(t *testing.T) {
	d := sampleDataset()

	assert.Equal(t, []int{0, 1, 2, 3}, d.IDs())
	assert.Equal(t, []string{"alice", "bob", "carol"}, d.Usernames())
	assert.Equal(t, []string{"Authenticated user", "Student", "Teacher"}, d.Roles())
	assert.Equal(t, []string{"Algebra", "Authentication", "Biology"}, d.CourseAreas())
	assert.Equal(t, []string{"Forum", "Login", "Quiz"}, d.Components())
	assert.Equal(t, []int{2023, 2024}, d.Years())
}

func TestDataset_EventNamesGroupedByComponent(t *testing.T) {
	d := sampleDataset()

	groups := d.EventNames()

	assert.Equal(t, []string{"Discussion viewed", "Post created"}, groups["Forum"])
	assert.Equal(t, []string{"Quiz attempt started"}, groups["Quiz"])
}

func TestDataset_FilterByCourseArea(t *testing.T) {
	d := sampleDataset()

	got := d.Filter(FilterOptions{CourseAreas: []string{"Algebra"}})

	assert.Equal(t, 2, got.Len())
	assert.Equal(t, 4, d.Len(), "source dataset is untouched")
}

func TestDataset_FilterByRoleMatchesMultiValued(t *testing.T) {
	d := sampleDataset()

	got := d.Filter(FilterOptions{Roles: []string{"Teacher"}})

	// alice's multi-role Biology record matches through one of its members
	assert.Equal(t, 2, got.Len())
	for _, r := range got.Records() {
		assert.Equal(t, "alice", r.Username)
	}
}

func TestDataset_FilterCombinesCriteriaWithAnd(t *testing.T) {
	d := sampleDataset()

	got := d.Filter(FilterOptions{Usernames: []string{"alice"}, Years: []int{2024}})

	require.Equal(t, 1, got.Len())
	assert.Equal(t, "Biology", got.Records()[0].CourseArea)
}

func TestDataset_FilterByCourseDates(t *testing.T) {
	d := sampleDataset()

	got := d.Filter(FilterOptions{CourseDates: map[int]record.DateRange{
		5: {Start: 1696230050, End: 1696230150},
	}})

	// bob's record predates course 5's window and is dropped; course 7
	// and courseid 0 have no bounds and are left untouched
	assert.Equal(t, 3, got.Len())
	for _, r := range got.Records() {
		assert.NotEqual(t, "bob", r.Username)
	}
}

func TestDataset_FilterReturnsIndependentCopy(t *testing.T) {
	d := sampleDataset()

	got := d.Filter(FilterOptions{Usernames: []string{"alice"}})
	rs := got.Records()
	rs[0].Roles.Add("Intruder")

	for _, r := range got.Records() {
		assert.False(t, r.Roles.Contains("Intruder"))
	}
}

func TestDataset_EmptyDataset(t *testing.T) {
	d := New(nil)

	assert.Zero(t, d.Len())
	assert.Empty(t, d.Usernames())
	assert.Empty(t, d.Roles())
	assert.Empty(t, d.Years())
	assert.Zero(t, d.Filter(FilterOptions{Roles: []string{"Student"}}).Len())
}
