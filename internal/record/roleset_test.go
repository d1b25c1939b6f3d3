package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleSet_AddIsIdempotent(t *testing.T) {
	var s RoleSet

	require.True(t, s.Add("student role"))
	assert.False(t, s.Add("student role"), "second add should be a no-op")
	assert.Equal(t, 1, s.Len())
}

func TestRoleSet_RemoveAbsentIsNoOp(t *testing.T) {
	s := NewRoleSet("student role")

	assert.False(t, s.Remove("editingteacher role"))
	assert.Equal(t, []string{"student role"}, s.Names())
}

func TestRoleSet_PreservesInsertionOrder(t *testing.T) {
	s := NewRoleSet("editingteacher role", "student role")

	assert.Equal(t, []string{"editingteacher role", "student role"}, s.Names())
	assert.Equal(t, "editingteacher role, student role", s.String())
}

func TestRoleSet_MapCollapsesDuplicates(t *testing.T) {
	s := NewRoleSet("a", "b")

	mapped := s.Map(func(string) string { return "same" })

	assert.Equal(t, []string{"same"}, mapped.Names())
}

func TestRoleSet_CloneIsIndependent(t *testing.T) {
	s := NewRoleSet("student role")
	c := s.Clone()

	c.Add("editingteacher role")

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, c.Len())
}

func TestRecord_CloneDoesNotAliasRoles(t *testing.T) {
	r := Record{Username: "u1", Roles: NewRoleSet("student role")}
	c := r.Clone()

	c.Roles.Add("editingteacher role")

	assert.Equal(t, 1, r.Roles.Len())
}
