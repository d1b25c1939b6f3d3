package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

// LoadCourseNames reads an id→name lookup table from a delimited text
// file. A header row is detected by the first column: if it is not
// integer-only the row is a header and is skipped.
func LoadCourseNames(path string) (map[int]string, error) {
	rows, err := readLookup(path, 2)
	if err != nil {
		return nil, fmt.Errorf("course names: %w", err)
	}

	names := make(map[int]string, len(rows))
	for _, row := range rows {
		id, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("course names: invalid id %q", row[0])
		}
		names[id] = strings.TrimSpace(row[1])
	}
	return names, nil
}

// LoadCourseDates reads an id→(startdate, enddate) lookup table from a
// delimited text file, header auto-detected the same way as course names.
func LoadCourseDates(path string) (map[int]record.DateRange, error) {
	rows, err := readLookup(path, 3)
	if err != nil {
		return nil, fmt.Errorf("course dates: %w", err)
	}

	dates := make(map[int]record.DateRange, len(rows))
	for _, row := range rows {
		id, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("course dates: invalid id %q", row[0])
		}
		start, err := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("course dates: invalid startdate %q", row[1])
		}
		end, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("course dates: invalid enddate %q", row[2])
		}
		dates[id] = record.DateRange{Start: start, End: end}
	}
	return dates, nil
}

func readLookup(path string, minFields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseLookup(f, minFields)
}

func parseLookup(r io.Reader, minFields int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	if !isIntCell(rows[0][0]) {
		rows = rows[1:]
	}

	for _, row := range rows {
		if len(row) < minFields {
			return nil, fmt.Errorf("row has %d fields, want %d", len(row), minFields)
		}
	}
	return rows, nil
}
