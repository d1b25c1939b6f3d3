package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

func TestExtractCourseID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"course view url", "['https://site/course/view.php?id=42']", 42},
		{"trailing path", "['https://site/course/view.php?id=7', 'https://site/mod/forum/view.php?id=9']", 7},
		{"no course context", "['https://site/my/']", record.CourseNone},
		{"empty", "", record.CourseNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCourseID(tt.in))
		})
	}
}

func TestExtractRawComponentAndEventName(t *testing.T) {
	path := `\mod_forum\event\post_created`

	assert.Equal(t, "mod_forum", ExtractRawComponent(path))
	assert.Equal(t, "post_created", ExtractRawEventName(path))

	assert.Equal(t, "", ExtractRawComponent("no-backslashes"))
	assert.Equal(t, "", ExtractRawEventName("no-marker"))
}

func TestClassify_LastMatchWins(t *testing.T) {
	// assignsubmission_file is first broadened to "File submissions",
	// used to disambiguate the upload event, then narrowed to
	// "Assignment" by a later rule reading the rewritten value.
	c := &Classifier{}
	in := []record.Record{{
		Path:              `\assignsubmission_file\event\assessable_uploaded`,
		RelatedActivities: "['https://site/course/view.php?id=3']",
	}}

	out := c.Classify(in)

	require.Len(t, out, 1)
	assert.Equal(t, "Assignment", out[0].Component)
	assert.Equal(t, "A file has been uploaded.", out[0].EventName)
}

func TestClassify_CourseAreaLookupAndOverride(t *testing.T) {
	c := &Classifier{CourseNames: map[int]string{5: "Algebra"}}
	in := []record.Record{
		{
			Path:              `\core\event\course_viewed`,
			RelatedActivities: "['https://site/course/view.php?id=5']",
		},
		{
			Path:              `\core\event\user_loggedin`,
			RelatedActivities: "['https://site/login/index.php']",
		},
	}

	out := c.Classify(in)

	require.Len(t, out, 2)
	assert.Equal(t, "Algebra", out[0].CourseArea)
	assert.Equal(t, "Course home", out[0].Component)
	// authentication override wins even with no course context
	assert.Equal(t, "Authentication", out[1].CourseArea)
	assert.Equal(t, "Login", out[1].Component)
	assert.Equal(t, record.CourseNone, out[1].CourseID)
}

func TestClassify_FrontPageSentinelIsNotACourse(t *testing.T) {
	c := &Classifier{CourseNames: map[int]string{5: "Algebra"}}
	in := []record.Record{{
		Path:              `\core\event\course_viewed`,
		RelatedActivities: "['https://site/course/view.php?id=1']",
	}}

	out := c.Classify(in)

	assert.Equal(t, "Moodle Site", out[0].CourseArea)
	assert.Equal(t, "Site home", out[0].Component)
}

func TestClassify_MissingLookupLeavesCourseAreaUnset(t *testing.T) {
	c := &Classifier{CourseNames: map[int]string{5: "Algebra"}}
	in := []record.Record{{
		Path:              `\mod_quiz\event\attempt_started`,
		RelatedActivities: "['https://site/course/view.php?id=99']",
	}}

	out := c.Classify(in)

	// unknown course: no failure, area left for cleaning collaborators
	assert.Equal(t, "", out[0].CourseArea)
	assert.Equal(t, "Quiz", out[0].Component)
	assert.Equal(t, "Quiz attempt started", out[0].EventName)
}

func TestClassify_CompletionUpdateRecoversModule(t *testing.T) {
	c := &Classifier{}
	in := []record.Record{{
		Path:              `\core\event\course_module_completion_updated`,
		RelatedActivities: "['https://site/course/view.php?id=3', 'https://site/mod/quiz/view.php?id=77']",
	}}

	out := c.Classify(in)

	// the otherwise mislabeled "System" component is recovered from the
	// activity URL and then canonicalized by the later mod_quiz rule
	assert.Equal(t, "Quiz", out[0].Component)
	assert.Equal(t, "Course activity completion updated", out[0].EventName)
}

func TestClassify_RoleEventsGetRoleComponent(t *testing.T) {
	c := &Classifier{}
	in := []record.Record{{
		Path:              `\core\event\role_assigned`,
		RelatedActivities: "['https://site/course/view.php?id=5']",
	}}

	out := c.Classify(in)

	assert.Equal(t, "Role", out[0].Component)
	assert.Equal(t, "Role assigned", out[0].EventName)
}

func TestClassify_StatusDerivation(t *testing.T) {
	c := &Classifier{}
	in := []record.Record{
		{Path: `\mod_forum\event\post_created`, Context: "not available"},
		{Path: `\mod_forum\event\post_created`, Description: "deleted"},
		{Path: `\mod_forum\event\post_created`, Context: "Forum: news"},
	}

	out := c.Classify(in)

	assert.Equal(t, record.StatusDeleted, out[0].Status)
	assert.Equal(t, record.StatusDeleted, out[1].Status)
	assert.Equal(t, record.StatusAvailable, out[2].Status)
}

func TestClassify_MessagingOutsideChat(t *testing.T) {
	c := &Classifier{}
	in := []record.Record{{
		Path:              `\core\event\message_sent`,
		RelatedActivities: "['https://site/message/']",
	}}

	out := c.Classify(in)

	assert.Equal(t, "Social interaction", out[0].CourseArea)
	assert.Equal(t, "Messaging", out[0].Component)
	assert.Equal(t, "Message sent", out[0].EventName)
}

func TestClassify_UnmatchedEventKeptRaw(t *testing.T) {
	c := &Classifier{}
	in := []record.Record{{
		Path:              `\mod_unknownplugin\event\mystery_happened`,
		RelatedActivities: "['https://site/course/view.php?id=4']",
	}}

	out := c.Classify(in)

	// no rule matched: raw values stay, cleaning resolves them later
	assert.Equal(t, "mod_unknownplugin", out[0].Component)
	assert.Equal(t, "mystery_happened", out[0].EventName)
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
		code  RuleErrorCode
	}{
		{"unknown target", []Rule{{Target: "username", Value: "x"}}, ErrCodeUnknownTarget},
		{"unknown field", []Rule{{Target: TargetComponent, Value: "x", When: []Condition{{Field: "bogus", Op: OpEq}}}}, ErrCodeUnknownField},
		{"unknown op", []Rule{{Target: TargetComponent, Value: "x", When: []Condition{{Field: "component", Op: "regex"}}}}, ErrCodeUnknownOp},
		{"empty rule", []Rule{{Target: TargetComponent}}, ErrCodeEmptyRule},
		{"unknown derivation", []Rule{{Target: TargetComponent, Derive: "magic"}}, ErrCodeUnknownDerivation},
		{"bad courseid", []Rule{{Target: TargetComponent, Value: "x", When: []Condition{{Field: "courseid", Op: OpEq, Value: "abc"}}}}, ErrCodeUnknownField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRules(tt.rules)
			require.Error(t, err)
			require.True(t, IsRuleError(err))
			var re *RuleError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.code, re.Code)
		})
	}
}

func TestValidateRules_DefaultTableIsValid(t *testing.T) {
	require.NoError(t, ValidateRules(DefaultRules()))
}
