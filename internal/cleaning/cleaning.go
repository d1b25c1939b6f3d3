// Package cleaning removes noise from a consolidated batch.
//
// Noise is everything that does not reflect a learner or teacher acting in
// a course: platform automation, administrative sessions, and components
// that a given analysis has no use for. What counts as noise is a policy
// decision, so the passes are expressed as drop-rule tables rather than
// hard-coded predicates; the built-in tables can be replaced wholesale.
package cleaning

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/AD1529/xapi-consolidate/internal/engine"
	"github.com/AD1529/xapi-consolidate/internal/record"
)

// DropRule marks records for removal: a record matching every condition is
// dropped. Rules in a table are independent, a record is dropped if any
// rule matches.
type DropRule struct {
	// Reason labels the rule in logs and validation errors.
	Reason string `json:"reason"`

	// When lists conditions that must all hold for the record to be
	// dropped.
	When []Condition `json:"when"`
}

// Condition is a single predicate over a record field.
type Condition struct {
	// Field names the record field: "role", "username", "origin",
	// "component", "event_name" or "course_area". A "role" condition with
	// op "eq" matches when the record holds the role, whatever else it
	// holds.
	Field string `json:"field"`

	// Op is the comparison: "eq" or "contains".
	Op string `json:"op"`

	// Value is the operand.
	Value string `json:"value"`
}

var validFields = map[string]bool{
	"role":        true,
	"username":    true,
	"origin":      true,
	"component":   true,
	"event_name":  true,
	"course_area": true,
}

var validOps = map[string]bool{
	"eq":       true,
	"contains": true,
}

// ValidateRules checks a drop-rule table for unknown fields and operators.
func ValidateRules(rules []DropRule) error {
	for i, r := range rules {
		if len(r.When) == 0 {
			return fmt.Errorf("drop rule %d (%s): no conditions", i, r.Reason)
		}
		for _, c := range r.When {
			if !validFields[c.Field] {
				return fmt.Errorf("drop rule %d (%s): unknown field %q", i, r.Reason, c.Field)
			}
			if !validOps[c.Op] {
				return fmt.Errorf("drop rule %d (%s): unknown operator %q", i, r.Reason, c.Op)
			}
		}
	}
	return nil
}

// NoiseRules drops records that never represent course activity: admin and
// guest sessions, scheduled-task rows attributed to the system user, and
// rows originating from the command line or a course restore.
func NoiseRules() []DropRule {
	return []DropRule{
		drop("admin sessions", eq("role", "Admin")),
		drop("scheduled tasks", eq("username", record.SystemUsername)),
		drop("cli origin", eq("origin", "cli")),
		drop("restore origin", eq("origin", "restore")),
		drop("guest sessions", eq("role", engine.RoleGuest)),
	}
}

// AutomaticEventRules drops events the platform emits on its own rather
// than in response to a user action, plus operator impersonation rows.
func AutomaticEventRules() []DropRule {
	return []DropRule{
		drop("grading cron", eq("role", "Student"), eq("event_name", "Grade item created")),
		drop("grading cron", eq("role", "Student"), eq("event_name", "Grade item updated")),
		drop("grading cron", eq("role", "Student"), eq("event_name", "User graded")),
		drop("log exports", eq("component", "Logs")),
		drop("recycle bin", eq("component", "Recycle bin")),
		drop("failed logins", eq("event_name", "User login failed")),
		drop("reports", eq("component", "Report")),
		drop("uncategorised", eq("component", "Other")),
		drop("analytics", eq("event_name", "Insights viewed")),
		drop("analytics", eq("event_name", "Prediction process started")),
		drop("mobile sync", eq("component", "Web service")),
		drop("system events", eq("component", "System")),
		drop("impersonation", contains("username", " as ")),
	}
}

// DatasetRules drops components and events that carry no analytical value
// for the datasets this tooling was built against. Unlike NoiseRules this
// table is a judgement call and is expected to be replaced per deployment.
func DatasetRules() []DropRule {
	return []DropRule{
		drop("gamification", eq("component", "Level Up XP")),
		drop("polling", eq("component", "Wooclap")),
		drop("chat", eq("component", "Chat")),
		drop("reservation", eq("component", "Reservation")),
		drop("completion tracking", eq("event_name", "Course activity completion updated")),
		drop("group choice", eq("component", "mod_choicegroup")),
		drop("assignment notifications", eq("component", "Assignment"), eq("event_name", "Notification sent")),
	}
}

// UnresolvedCourseRules drops records whose course could not be resolved to
// an area: the course was missing from the lookup table and no override
// rule claimed the record.
func UnresolvedCourseRules() []DropRule {
	return []DropRule{
		drop("unresolved course", eq("course_area", "")),
	}
}

// Apply returns a new slice with every record matching a rule removed.
// Dropped counts are logged per reason.
func Apply(records []record.Record, rules []DropRule, log *slog.Logger) []record.Record {
	if log == nil {
		log = slog.Default()
	}

	dropped := make(map[string]int)
	kept := make([]record.Record, 0, len(records))
	for _, r := range records {
		if reason, ok := matchAny(r, rules); ok {
			dropped[reason]++
			continue
		}
		kept = append(kept, r.Clone())
	}

	for reason, n := range dropped {
		log.Info("dropped records", "reason", reason, "count", n)
	}
	return kept
}

func matchAny(r record.Record, rules []DropRule) (string, bool) {
	for _, rule := range rules {
		if matches(r, rule) {
			return rule.Reason, true
		}
	}
	return "", false
}

func matches(r record.Record, rule DropRule) bool {
	for _, c := range rule.When {
		if !matchCondition(r, c) {
			return false
		}
	}
	return len(rule.When) > 0
}

func matchCondition(r record.Record, c Condition) bool {
	if c.Field == "role" {
		// held-role membership, not string equality: a record whose user
		// holds several roles matches through any of them
		switch c.Op {
		case "eq":
			return r.Roles.Contains(c.Value)
		case "contains":
			return strings.Contains(r.Roles.String(), c.Value)
		}
		return false
	}

	got := fieldValue(r, c.Field)
	switch c.Op {
	case "eq":
		return got == c.Value
	case "contains":
		return strings.Contains(got, c.Value)
	}
	return false
}

func fieldValue(r record.Record, field string) string {
	switch field {
	case "username":
		return r.Username
	case "origin":
		return r.Origin
	case "component":
		return r.Component
	case "event_name":
		return r.EventName
	case "course_area":
		return r.CourseArea
	}
	return ""
}

func drop(reason string, when ...Condition) DropRule {
	return DropRule{Reason: reason, When: when}
}

func eq(field, value string) Condition {
	return Condition{Field: field, Op: "eq", Value: value}
}

func contains(field, value string) Condition {
	return Condition{Field: field, Op: "contains", Value: value}
}
