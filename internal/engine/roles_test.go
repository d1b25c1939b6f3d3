package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

func roleEventRec(t int64, user string, courseID int, rawRole, verb string) record.Record {
	return record.Record{
		UnixTime:  t,
		Username:  user,
		CourseID:  courseID,
		Component: "Role",
		Context:   rawRole,
		Verb:      verb,
	}
}

func courseRec(t int64, user string, courseID int) record.Record {
	return record.Record{UnixTime: t, Username: user, CourseID: courseID, Component: "Forum"}
}

func rolesOf(records []record.Record, user string, courseID int) [][]string {
	var out [][]string
	for _, r := range records {
		if r.Username == user && r.CourseID == courseID {
			out = append(out, r.Roles.Names())
		}
	}
	return out
}

func TestReconstructRoles_TerminalSnapshot(t *testing.T) {
	in := []record.Record{
		roleEventRec(10, "u", 5, "student role", record.VerbAssigned),
		courseRec(15, "u", 5),
		roleEventRec(20, "u", 5, "editingteacher role", record.VerbAssigned),
		roleEventRec(30, "u", 5, "student role", record.VerbUnassigned),
		courseRec(40, "u", 5),
	}

	out := ReconstructRoles(in, RoleOptions{})

	// the terminal set {Teacher} applies to every record in the course,
	// including those before the unassignment
	for _, roles := range rolesOf(out, "u", 5) {
		assert.Equal(t, []string{"Teacher"}, roles)
	}
}

func TestReconstructRoles_PointInTime(t *testing.T) {
	in := []record.Record{
		roleEventRec(10, "u", 5, "student role", record.VerbAssigned),
		courseRec(15, "u", 5),
		roleEventRec(20, "u", 5, "editingteacher role", record.VerbAssigned),
		courseRec(25, "u", 5),
		roleEventRec(30, "u", 5, "student role", record.VerbUnassigned),
		courseRec(40, "u", 5),
	}

	out := ReconstructRoles(in, RoleOptions{PointInTime: true})

	got := rolesOf(out, "u", 5)
	require.Len(t, got, 6)
	assert.Equal(t, []string{"Student"}, got[1], "record at t=15 predates the teacher assignment")
	assert.Equal(t, []string{"Student", "Teacher"}, got[3], "record at t=25 sees both roles")
	assert.Equal(t, []string{"Teacher"}, got[5], "record at t=40 postdates the unassignment")
}

func TestReconstructRoles_GuestDefaults(t *testing.T) {
	in := []record.Record{
		// u1 has role events that cancel out
		roleEventRec(10, "u1", 7, "student role", record.VerbAssigned),
		roleEventRec(20, "u1", 7, "student role", record.VerbUnassigned),
		courseRec(30, "u1", 7),
		// u2 never appears in the role stream for course 7
		courseRec(30, "u2", 7),
		courseRec(40, "u2", 7),
	}

	out := ReconstructRoles(in, RoleOptions{})

	for _, roles := range rolesOf(out, "u1", 7) {
		assert.Equal(t, []string{RoleGuest}, roles)
	}
	for _, roles := range rolesOf(out, "u2", 7) {
		assert.Equal(t, []string{RoleGuest}, roles)
	}
}

func TestReconstructRoles_UnassignWithoutAssignIsIgnored(t *testing.T) {
	in := []record.Record{
		roleEventRec(10, "u", 5, "editingteacher role", record.VerbUnassigned),
		roleEventRec(20, "u", 5, "student role", record.VerbAssigned),
		courseRec(30, "u", 5),
	}

	out := ReconstructRoles(in, RoleOptions{})

	for _, roles := range rolesOf(out, "u", 5) {
		assert.Equal(t, []string{"Student"}, roles)
	}
}

func TestReconstructRoles_DuplicateAssignIsIdempotent(t *testing.T) {
	in := []record.Record{
		roleEventRec(10, "u", 5, "student role", record.VerbAssigned),
		roleEventRec(20, "u", 5, "student role", record.VerbAssigned),
		courseRec(30, "u", 5),
	}

	out := ReconstructRoles(in, RoleOptions{})

	for _, roles := range rolesOf(out, "u", 5) {
		assert.Equal(t, []string{"Student"}, roles)
	}
}

func TestReconstructRoles_MultiRoleAttachesAll(t *testing.T) {
	in := []record.Record{
		roleEventRec(10, "u", 5, "student role", record.VerbAssigned),
		roleEventRec(20, "u", 5, "editingteacher role", record.VerbAssigned),
		courseRec(30, "u", 5),
	}

	out := ReconstructRoles(in, RoleOptions{})

	got := rolesOf(out, "u", 5)
	require.NotEmpty(t, got)
	assert.Equal(t, []string{"Student", "Teacher"}, got[len(got)-1])
}

func TestReconstructRoles_SentinelsNeverGetCourseRoles(t *testing.T) {
	in := []record.Record{
		// role event on the front page must not be replayed
		roleEventRec(10, "u", record.CourseFrontPage, "student role", record.VerbAssigned),
		courseRec(20, "u", record.CourseFrontPage),
		courseRec(30, "u", record.CourseNone),
	}

	out := ReconstructRoles(in, RoleOptions{})

	for _, r := range out {
		assert.Equal(t, []string{RoleAuthenticated}, r.Roles.Names())
	}
}

func TestReconstructRoles_EventsReplayedInTimeOrderNotInputOrder(t *testing.T) {
	// unassign arrives before assign in slice order but after it in time
	in := []record.Record{
		roleEventRec(30, "u", 5, "student role", record.VerbUnassigned),
		roleEventRec(10, "u", 5, "student role", record.VerbAssigned),
		courseRec(40, "u", 5),
	}

	out := ReconstructRoles(in, RoleOptions{})

	for _, roles := range rolesOf(out, "u", 5) {
		assert.Equal(t, []string{RoleGuest}, roles)
	}
}

func TestReconstructRoles_UnknownRawRolePassesThrough(t *testing.T) {
	in := []record.Record{
		roleEventRec(10, "u", 5, "wizard role", record.VerbAssigned),
		courseRec(20, "u", 5),
	}

	out := ReconstructRoles(in, RoleOptions{})

	got := rolesOf(out, "u", 5)
	require.NotEmpty(t, got)
	assert.Equal(t, []string{"wizard role"}, got[len(got)-1])
}
