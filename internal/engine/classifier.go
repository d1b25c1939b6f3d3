package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

// Rule is one entry of a classification table: when every condition holds,
// Target is set to Value (or to a derived value). Rules are evaluated top
// to bottom for each record and a later rule overwrites a field set by an
// earlier one — last-match-wins, not first-match-wins. Conditions read the
// record's *current* state, so a rule may match on a field another rule in
// the same pass already rewrote. Several broad rules in the default table
// rely on exactly that to be narrowed later.
type Rule struct {
	// Target names the field the rule writes: "course_area", "component",
	// "event_name" or "status".
	Target string `json:"target"`

	// Value is the label written when the rule fires.
	Value string `json:"value"`

	// Derive names a built-in derived value computed from the record,
	// used instead of Value. The only derivation currently implemented is
	// "module_from_path": recover the originating module from the
	// RelatedActivities URL, for events the platform mislabels as
	// "System".
	Derive string `json:"derive,omitempty"`

	// When lists conditions that must all hold for the rule to fire.
	When []Condition `json:"when"`
}

// Condition is a single predicate over a record field.
type Condition struct {
	// Field names the record field the condition reads: "event_name",
	// "component", "course_area", "context", "description", "verb",
	// "origin", "username", "related_activities", "path", "status" or
	// "courseid".
	Field string `json:"field"`

	// Op is the comparison: "eq", "neq", "contains", "contains_fold" or
	// "contains_any" (value is a |-separated list of substrings).
	Op string `json:"op"`

	// Value is the operand. For "courseid" it must parse as an integer.
	Value string `json:"value"`
}

// Rule targets.
const (
	TargetCourseArea = "course_area"
	TargetComponent  = "component"
	TargetEventName  = "event_name"
	TargetStatus     = "status"
)

// Condition operators.
const (
	OpEq           = "eq"
	OpNeq          = "neq"
	OpContains     = "contains"
	OpContainsFold = "contains_fold"
	OpContainsAny  = "contains_any"
)

// DeriveModuleFromPath recovers "mod_<name>" from the RelatedActivities URL.
const DeriveModuleFromPath = "module_from_path"

var validTargets = map[string]bool{
	TargetCourseArea: true,
	TargetComponent:  true,
	TargetEventName:  true,
	TargetStatus:     true,
}

var validFields = map[string]bool{
	"event_name":         true,
	"component":          true,
	"course_area":        true,
	"context":            true,
	"description":        true,
	"verb":               true,
	"origin":             true,
	"username":           true,
	"related_activities": true,
	"path":               true,
	"status":             true,
	"courseid":           true,
}

var validOps = map[string]bool{
	OpEq:           true,
	OpNeq:          true,
	OpContains:     true,
	OpContainsFold: true,
	OpContainsAny:  true,
}

// ValidateRules checks a rule table for unknown targets, fields, operators
// and derivations. A table that validates cleanly cannot fail at
// classification time.
func ValidateRules(rules []Rule) error {
	for i, r := range rules {
		if !validTargets[r.Target] {
			return &RuleError{Code: ErrCodeUnknownTarget, Index: i, Message: fmt.Sprintf("unknown target field %q", r.Target)}
		}
		if r.Value == "" && r.Derive == "" {
			return &RuleError{Code: ErrCodeEmptyRule, Index: i, Message: "rule has neither value nor derivation"}
		}
		if r.Derive != "" && r.Derive != DeriveModuleFromPath {
			return &RuleError{Code: ErrCodeUnknownDerivation, Index: i, Message: fmt.Sprintf("unknown derivation %q", r.Derive)}
		}
		for _, c := range r.When {
			if !validFields[c.Field] {
				return &RuleError{Code: ErrCodeUnknownField, Index: i, Message: fmt.Sprintf("unknown condition field %q", c.Field)}
			}
			if !validOps[c.Op] {
				return &RuleError{Code: ErrCodeUnknownOp, Index: i, Message: fmt.Sprintf("unknown operator %q", c.Op)}
			}
			if c.Field == "courseid" {
				if _, err := strconv.Atoi(c.Value); err != nil {
					return &RuleError{Code: ErrCodeUnknownField, Index: i, Message: fmt.Sprintf("courseid condition value %q is not an integer", c.Value)}
				}
			}
		}
	}
	return nil
}

// Classifier derives canonical course-area, component, event-name and
// status labels. It owns exactly those four fields and never touches the
// rest of the record.
type Classifier struct {
	// CourseNames maps course ids to course names. A courseid absent from
	// the table leaves CourseArea unset; that is resolved by cleaning
	// collaborators later, never by failing here.
	CourseNames map[int]string

	// Rules is the ordered override table. Nil means DefaultRules().
	Rules []Rule
}

// Classify runs the full classification pass over a batch and returns a new
// slice. Sub-steps, in order: course-id extraction, raw component/event
// extraction from the dotted event path, direct course-area lookup, then
// the ordered rule table (area overrides, component and event
// canonicalization, status derivation). A record with no matching rule for
// a field keeps that field unset.
func (c *Classifier) Classify(records []record.Record) []record.Record {
	rules := c.Rules
	if rules == nil {
		rules = DefaultRules()
	}

	out := record.CloneAll(records)
	for i := range out {
		r := &out[i]
		r.Component = ExtractRawComponent(r.Path)
		r.EventName = ExtractRawEventName(r.Path)
		r.CourseID = ExtractCourseID(r.RelatedActivities)
		if name, ok := c.CourseNames[r.CourseID]; ok {
			r.CourseArea = name
		}
		for _, rule := range rules {
			applyRule(r, rule)
		}
	}
	return out
}

// ExtractCourseID parses the course id out of a course-view URL inside
// RelatedActivities. Records without a course context get CourseNone.
func ExtractCourseID(relatedActivities string) int {
	const marker = "/course/view.php?id="
	idx := strings.Index(relatedActivities, marker)
	if idx < 0 {
		return record.CourseNone
	}
	rest := relatedActivities[idx+len(marker):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	id, err := strconv.Atoi(rest[:end])
	if err != nil {
		return record.CourseNone
	}
	return id
}

// ExtractRawComponent pulls the raw technical component out of a
// backslash-separated event path, e.g. `\mod_forum\event\post_created`
// yields "mod_forum".
func ExtractRawComponent(path string) string {
	parts := strings.Split(path, `\`)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// ExtractRawEventName pulls the raw event identifier out of a
// backslash-separated event path, e.g. `\mod_forum\event\post_created`
// yields "post_created".
func ExtractRawEventName(path string) string {
	const marker = `event\`
	idx := strings.Index(path, marker)
	if idx < 0 {
		return ""
	}
	return path[idx+len(marker):]
}

func applyRule(r *record.Record, rule Rule) {
	for _, cond := range rule.When {
		if !matchCondition(r, cond) {
			return
		}
	}
	value := rule.Value
	if rule.Derive == DeriveModuleFromPath {
		derived, ok := moduleFromPath(r.RelatedActivities)
		if !ok {
			return
		}
		value = derived
	}
	switch rule.Target {
	case TargetCourseArea:
		r.CourseArea = value
	case TargetComponent:
		r.Component = value
	case TargetEventName:
		r.EventName = value
	case TargetStatus:
		r.Status = record.Status(value)
	}
}

func matchCondition(r *record.Record, cond Condition) bool {
	if cond.Field == "courseid" {
		want, _ := strconv.Atoi(cond.Value)
		switch cond.Op {
		case OpNeq:
			return r.CourseID != want
		default:
			return r.CourseID == want
		}
	}

	got := fieldValue(r, cond.Field)
	switch cond.Op {
	case OpEq:
		return got == cond.Value
	case OpNeq:
		return got != cond.Value
	case OpContains:
		return strings.Contains(got, cond.Value)
	case OpContainsFold:
		return strings.Contains(strings.ToLower(got), strings.ToLower(cond.Value))
	case OpContainsAny:
		for _, sub := range strings.Split(cond.Value, "|") {
			if strings.Contains(got, sub) {
				return true
			}
		}
		return false
	}
	return false
}

func fieldValue(r *record.Record, field string) string {
	switch field {
	case "event_name":
		return r.EventName
	case "component":
		return r.Component
	case "course_area":
		return r.CourseArea
	case "context":
		return r.Context
	case "description":
		return r.Description
	case "verb":
		return r.Verb
	case "origin":
		return r.Origin
	case "username":
		return r.Username
	case "related_activities":
		return r.RelatedActivities
	case "path":
		return r.Path
	case "status":
		return string(r.Status)
	}
	return ""
}

// moduleFromPath recovers the true originating module from a URL of the
// form .../mod/<name>/..., for events whose component field the platform
// records as "System".
func moduleFromPath(relatedActivities string) (string, bool) {
	parts := strings.Split(relatedActivities, "/")
	for i, p := range parts {
		if p == "mod" && i+1 < len(parts) && parts[i+1] != "" {
			return "mod_" + parts[i+1], true
		}
	}
	return "", false
}
