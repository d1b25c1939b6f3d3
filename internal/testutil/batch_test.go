package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

func TestBatch_AssignsIDsAndTimestamps(t *testing.T) {
	b := NewBatch(1000).
		Add("student1", `\mod_forum\event\discussion_viewed`, 5).
		Add("student1", `\mod_quiz\event\attempt_started`, 5)

	records := b.Records()

	require.Len(t, records, 2)
	assert.Equal(t, 0, records[0].ID)
	assert.Equal(t, int64(1000), records[0].UnixTime)
	assert.Equal(t, 1, records[1].ID)
	assert.Equal(t, int64(1060), records[1].UnixTime)
}

func TestBatch_RoleEventVerbs(t *testing.T) {
	b := NewBatch(1000).
		AddRoleEvent("student1", "student role", 5, true).
		AddRoleEvent("student1", "student role", 5, false)

	records := b.Records()

	assert.Equal(t, record.VerbAssigned, records[0].Verb)
	assert.Equal(t, record.VerbUnassigned, records[1].Verb)
	assert.Equal(t, "student role", records[0].Context)
}

func TestBatch_CSVHeader(t *testing.T) {
	csv := NewBatch(1696230000).Add("student1", `\mod_forum\event\post_created`, 5).CSV()

	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "index,timestamp,Email"))
	assert.Contains(t, lines[1], "2023-10-02T07:00:00Z")
	assert.Contains(t, lines[1], "view.php?id=5")
}
