package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

func exportBatch() []record.Record {
	return []record.Record{
		{
			ID: 0, UnixTime: 1696230000, Time: "2023-10-02T09:00:00+02:00",
			Roles: record.NewRoleSet("Student"), Username: "student1",
			CourseID: 5, CourseArea: "Algebra", Context: "Course: Algebra",
			Component: "Course", EventName: "Course viewed",
			Duration: 300, HasDuration: true, Status: record.StatusAvailable,
		},
		{
			ID: 1, UnixTime: 1696230300, Time: "2023-10-02T09:05:00+02:00",
			Roles: record.NewRoleSet("Student"), Username: "student1",
			CourseID: 5, CourseArea: "Algebra", Context: "Quiz One",
			Component: "Quiz", EventName: "Quiz attempt started",
			Status: record.StatusAvailable,
		},
		{
			ID: 2, UnixTime: 1696230600, Time: "2023-10-02T09:10:00+02:00",
			Roles: record.NewRoleSet("Student", "Teacher"), Username: "tutor1",
			CourseID: 7, CourseArea: "Biology", Context: "Lab report",
			Component: "Assignment", EventName: "A file has been uploaded.",
			Status: record.StatusAvailable,
		},
	}
}

func TestWrite_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, exportBatch()))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "consolidated", buf.Bytes())
}

func TestWrite_EmptyDurationCell(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, exportBatch()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	// record 0 carries a duration, record 1 does not; a missing duration
	// exports as an empty cell, never as 0
	assert.Contains(t, lines[1], ",300,")
	assert.Contains(t, lines[2], ",,Available")
}

func TestWrite_MultiRoleCell(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, exportBatch()))

	assert.Contains(t, buf.String(), `"Student, Teacher"`)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, WriteFile(path, exportBatch()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "ID,Unix_Time,Time,Role,"))
}

func TestWrite_HeaderOnlyForEmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))

	assert.Equal(t, strings.Join(Header, ",")+"\n", buf.String())
}
