package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

// ListRuns returns the metadata of every persisted run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, source, scenario, record_count
		FROM runs
		ORDER BY created_at DESC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Source, &r.Scenario, &r.RecordCount); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	if runs == nil {
		runs = []Run{}
	}
	return runs, nil
}

// GetRun retrieves a single run's metadata.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, source, scenario, record_count
		FROM runs
		WHERE id = ?
	`, runID).Scan(&r.ID, &r.CreatedAt, &r.Source, &r.Scenario, &r.RecordCount)
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ReadRun returns a run's records in id order.
// Returns an empty slice (not nil) if the run has no records.
func (s *Store) ReadRun(ctx context.Context, runID string) ([]record.Record, error) {
	return s.ReadRunWhere(ctx, runID, Filter{})
}

// ReadRunWhere returns a run's records matching the filter, in id order.
func (s *Store) ReadRunWhere(ctx context.Context, runID string, f Filter) ([]record.Record, error) {
	query, params := compileFilter(runID, f)

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	defer rows.Close()

	var records []record.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("read run: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}

	if records == nil {
		records = []record.Record{}
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (record.Record, error) {
	var r record.Record
	var roles string
	var duration sql.NullInt64
	var status string

	err := rows.Scan(&r.ID, &r.UnixTime, &r.Time, &roles, &r.Username,
		&r.CourseID, &r.CourseArea, &r.Context, &r.Component, &r.EventName,
		&duration, &status)
	if err != nil {
		return record.Record{}, err
	}

	if roles != "" {
		r.Roles = record.NewRoleSet(strings.Split(roles, ", ")...)
	}
	if duration.Valid {
		r.Duration = duration.Int64
		r.HasDuration = true
	}
	r.Status = record.Status(status)
	return r, nil
}
