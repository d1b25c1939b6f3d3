// Package export writes a consolidated batch back out as CSV.
//
// The column order matches the files produced by the earlier analysis
// tooling, so downstream notebooks keep working unchanged.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

// Header is the exported column order. Duration is left empty for records
// that carry no duration, never zero.
var Header = []string{
	"ID", "Unix_Time", "Time", "Role", "Username", "courseid",
	"Course_Area", "Context", "Component", "Event_name", "Duration", "Status",
}

// Write renders the records as CSV, header first.
func Write(w io.Writer, records []record.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// WriteFile writes the records to a CSV file, truncating any existing one.
func WriteFile(path string, records []record.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func row(r record.Record) []string {
	duration := ""
	if r.HasDuration {
		duration = strconv.FormatInt(r.Duration, 10)
	}
	return []string{
		strconv.Itoa(r.ID),
		strconv.FormatInt(r.UnixTime, 10),
		r.Time,
		r.Roles.String(),
		r.Username,
		strconv.Itoa(r.CourseID),
		r.CourseArea,
		r.Context,
		r.Component,
		r.EventName,
		duration,
		string(r.Status),
	}
}
