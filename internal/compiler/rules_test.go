package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AD1529/xapi-consolidate/internal/engine"
)

func compileValue(t *testing.T, src, path string) cue.Value {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return v.LookupPath(cue.ParsePath(path))
}

func TestCompileClassification(t *testing.T) {
	v := compileValue(t, `
classification: [
	{
		target: "course_area"
		value:  "Moodle Site"
		when: [{field: "courseid", op: "eq", value: "1"}]
	},
	{
		target: "component"
		derive: "module_from_path"
		when: [{field: "event_name", op: "eq", value: "course_module_completion_updated"}]
	},
]
`, "classification")

	rules, err := CompileClassification(v)

	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, engine.Rule{
		Target: "course_area",
		Value:  "Moodle Site",
		When:   []engine.Condition{{Field: "courseid", Op: "eq", Value: "1"}},
	}, rules[0])
	assert.Equal(t, engine.DeriveModuleFromPath, rules[1].Derive)
}

func TestCompileClassification_OrderPreserved(t *testing.T) {
	v := compileValue(t, `
classification: [
	{target: "status", value: "Available", when: [{field: "status", op: "eq", value: ""}]},
	{target: "status", value: "DELETED", when: [{field: "component", op: "contains", value: "https"}]},
]
`, "classification")

	rules, err := CompileClassification(v)

	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "Available", rules[0].Value)
	assert.Equal(t, "DELETED", rules[1].Value)
}

func TestCompileClassification_RejectsUnknownTarget(t *testing.T) {
	v := compileValue(t, `
classification: [
	{target: "duration", value: "x", when: [{field: "verb", op: "eq", value: "viewed"}]},
]
`, "classification")

	_, err := CompileClassification(v)

	require.Error(t, err)
	assert.True(t, engine.IsRuleError(err))
}

func TestCompileClassification_MissingTarget(t *testing.T) {
	v := compileValue(t, `
classification: [
	{value: "x"},
]
`, "classification")

	_, err := CompileClassification(v)

	require.Error(t, err)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Contains(t, compileErr.Message, "target is required")
}

func TestCompileClassification_NotAList(t *testing.T) {
	v := compileValue(t, `classification: {target: "status"}`, "classification")

	_, err := CompileClassification(v)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a list")
}

func TestCompileCleaning(t *testing.T) {
	v := compileValue(t, `
cleaning: [
	{
		reason: "admin sessions"
		when: [{field: "role", op: "eq", value: "Admin"}]
	},
	{
		reason: "assignment notifications"
		when: [
			{field: "component", op: "eq", value: "Assignment"},
			{field: "event_name", op: "eq", value: "Notification sent"},
		]
	},
]
`, "cleaning")

	rules, err := CompileCleaning(v)

	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "admin sessions", rules[0].Reason)
	assert.Len(t, rules[1].When, 2)
}

func TestCompileCleaning_RejectsRuleWithoutConditions(t *testing.T) {
	v := compileValue(t, `cleaning: [{reason: "everything"}]`, "cleaning")

	_, err := CompileCleaning(v)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conditions")
}
