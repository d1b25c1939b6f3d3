package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/AD1529/xapi-consolidate/internal/cleaning"
	"github.com/AD1529/xapi-consolidate/internal/engine"
)

// CompileClassification parses a CUE value holding a list of classification
// rules into an ordered rule table. The CUE value should be the list
// itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`classification: [ ... ]`)
//	rules, err := CompileClassification(v.LookupPath(cue.ParsePath("classification")))
//
// List order is preserved: it is the evaluation order of the table.
func CompileClassification(v cue.Value) ([]engine.Rule, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "classification",
			Message: "classification must be a list of rules",
			Pos:     v.Pos(),
		}
	}

	var rules []engine.Rule
	for i := 0; iter.Next(); i++ {
		rule, err := compileRule(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	if err := engine.ValidateRules(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func compileRule(v cue.Value, index int) (engine.Rule, error) {
	var rule engine.Rule

	target, err := requiredString(v, "target", index)
	if err != nil {
		return rule, err
	}
	rule.Target = target

	rule.Value, err = optionalString(v, "value", index)
	if err != nil {
		return rule, err
	}
	rule.Derive, err = optionalString(v, "derive", index)
	if err != nil {
		return rule, err
	}

	rule.When, err = compileConditions(v, index)
	if err != nil {
		return rule, err
	}
	return rule, nil
}

// CompileCleaning parses a CUE value holding a list of drop rules. The CUE
// value should be the list itself, looked up the same way as for
// CompileClassification.
func CompileCleaning(v cue.Value) ([]cleaning.DropRule, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "cleaning",
			Message: "cleaning must be a list of drop rules",
			Pos:     v.Pos(),
		}
	}

	var rules []cleaning.DropRule
	for i := 0; iter.Next(); i++ {
		rv := iter.Value()

		var rule cleaning.DropRule
		rule.Reason, err = requiredString(rv, "reason", i)
		if err != nil {
			return nil, err
		}

		conds, err := compileConditions(rv, i)
		if err != nil {
			return nil, err
		}
		for _, c := range conds {
			rule.When = append(rule.When, cleaning.Condition(c))
		}
		rules = append(rules, rule)
	}

	if err := cleaning.ValidateRules(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// compileConditions parses the rule's "when" list. A rule without a "when"
// field compiles to no conditions, which classification treats as
// always-fire and cleaning validation rejects.
func compileConditions(v cue.Value, index int) ([]engine.Condition, error) {
	whenVal := v.LookupPath(cue.ParsePath("when"))
	if !whenVal.Exists() {
		return nil, nil
	}

	iter, err := whenVal.List()
	if err != nil {
		return nil, &CompileError{
			Field:   fmt.Sprintf("rule %d: when", index),
			Message: "when must be a list of conditions",
			Pos:     whenVal.Pos(),
		}
	}

	var conds []engine.Condition
	for iter.Next() {
		cv := iter.Value()

		var cond engine.Condition
		if cond.Field, err = requiredString(cv, "field", index); err != nil {
			return nil, err
		}
		if cond.Op, err = requiredString(cv, "op", index); err != nil {
			return nil, err
		}
		if cond.Value, err = requiredString(cv, "value", index); err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

func requiredString(v cue.Value, field string, index int) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   fmt.Sprintf("rule %d: %s", index, field),
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{
			Field:   fmt.Sprintf("rule %d: %s", index, field),
			Message: field + " must be a string",
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}

func optionalString(v cue.Value, field string, index int) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{
			Field:   fmt.Sprintf("rule %d: %s", index, field),
			Message: field + " must be a string",
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}
