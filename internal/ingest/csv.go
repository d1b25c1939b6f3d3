package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

// DefaultColumns names the columns of a headerless export, in file order.
var DefaultColumns = []string{
	"index", "timestamp", "Email", "ACTION_VERB", "Context",
	"OBJECT_NAME", "OBJECT_DESCRIPTION", "Origin", "RelatedActivities",
}

// columnRenames maps raw export headers to normalized column names. The
// raw "Context" column carries the namespaced event path, while the
// normalized Context (the human-readable object name) comes from
// OBJECT_NAME — the rename is a swap, not a typo.
var columnRenames = map[string]string{
	"index":              "ID",
	"timestamp":          "Time",
	"Email":              "Username",
	"ACTION_VERB":        "Verb",
	"Context":            "Path",
	"OBJECT_NAME":        "Context",
	"OBJECT_TYPE":        "Object",
	"OBJECT_DESCRIPTION": "Description",
}

// ReadLogs reads one export file into normalized records.
//
// If the first cell of the first row parses as an integer the file has no
// header row and DefaultColumns applies. Rows with a wrong field count are
// skipped with a warning; they never fail the batch. An unparsable
// timestamp does fail the batch (see TimestampError).
func ReadLogs(path string, log *slog.Logger) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open logs: %w", err)
	}
	defer f.Close()

	records, err := readLogs(f, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// CollectDir reads and concatenates every *.csv export in a directory, in
// lexical order. Used when a platform exports one file per course.
func CollectDir(dir string, log *slog.Logger) ([]record.Record, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("scan directory: %w", err)
	}
	sort.Strings(paths)

	var all []record.Record
	for _, path := range paths {
		records, err := ReadLogs(path, log)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	// reindex across files
	for i := range all {
		all[i].ID = i
	}
	return all, nil
}

func readLogs(r io.Reader, log *slog.Logger) ([]record.Record, error) {
	if log == nil {
		log = slog.Default()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return []record.Record{}, nil
	}

	columns := DefaultColumns
	start := 0
	if !isIntCell(rows[0][0]) {
		columns = rows[0]
		start = 1
	}

	idx := columnIndex(columns)

	records := make([]record.Record, 0, len(rows)-start)
	for rowNum, row := range rows[start:] {
		if len(row) != len(columns) {
			log.Warn("skipping malformed row", "row", rowNum+start, "fields", len(row), "want", len(columns))
			continue
		}
		rec, err := buildRecord(row, idx, rowNum+start)
		if err != nil {
			return nil, err
		}
		rec.ID = len(records)
		records = append(records, rec)
	}
	return records, nil
}

// columnIndex maps normalized column names to their positions, applying
// the export renames.
func columnIndex(columns []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for i, name := range columns {
		name = strings.TrimSpace(name)
		if renamed, ok := columnRenames[name]; ok {
			name = renamed
		}
		idx[name] = i
	}
	return idx
}

func buildRecord(row []string, idx map[string]int, rowNum int) (record.Record, error) {
	cell := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rec := record.Record{
		Time:              cell("Time"),
		Username:          cell("Username"),
		Verb:              cell("Verb"),
		Path:              cell("Path"),
		Context:           cell("Context"),
		Description:       cell("Description"),
		Origin:            cell("Origin"),
		RelatedActivities: cell("RelatedActivities"),
	}

	unix, err := ParseTime(rec.Time)
	if err != nil {
		var te *TimestampError
		if errors.As(err, &te) {
			te.Row = rowNum
		}
		return record.Record{}, err
	}
	rec.UnixTime = unix
	return rec, nil
}

// isIntCell reports whether a header cell is integer-typed, which marks a
// file exported without a header row.
func isIntCell(s string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil
}
