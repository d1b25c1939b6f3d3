package record

import "strings"

// RoleSet is the set of role names a user holds in one course.
//
// A user can hold zero, one, or several roles at once (a tutor who is also
// enrolled as a student, for example), so the role field is a set rather
// than a single string. Insertion order is preserved so exported values are
// stable across runs.
type RoleSet struct {
	names []string
}

// NewRoleSet builds a set from the given names, dropping duplicates.
func NewRoleSet(names ...string) RoleSet {
	var s RoleSet
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts a role if absent. Adding an already-held role is a no-op, so
// replaying a duplicated assignment event cannot produce duplicate entries.
func (s *RoleSet) Add(name string) bool {
	if s.Contains(name) {
		return false
	}
	s.names = append(s.names, name)
	return true
}

// Remove deletes a role if present. Removing a role that was never assigned
// is a no-op: source logs are known to contain unassignment events without a
// matching assignment and those are tolerated, not reported.
func (s *RoleSet) Remove(name string) bool {
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether the set holds the given role.
func (s RoleSet) Contains(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

// Len returns the number of held roles.
func (s RoleSet) Len() int { return len(s.names) }

// IsEmpty reports whether no role is held.
func (s RoleSet) IsEmpty() bool { return len(s.names) == 0 }

// Names returns a copy of the held role names in insertion order.
func (s RoleSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Map applies fn to every held role name, preserving order and collapsing
// names that fn maps to the same value.
func (s RoleSet) Map(fn func(string) string) RoleSet {
	var out RoleSet
	for _, n := range s.names {
		out.Add(fn(n))
	}
	return out
}

// Clone returns an independent copy of the set.
func (s RoleSet) Clone() RoleSet {
	return RoleSet{names: s.Names()}
}

// String renders the set for export: a single role renders bare, several
// render comma-separated in insertion order.
func (s RoleSet) String() string {
	return strings.Join(s.names, ", ")
}
