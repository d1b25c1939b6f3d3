package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

// Run is the metadata of one persisted consolidation run.
type Run struct {
	// ID is the run identifier, a UUID.
	ID string

	// CreatedAt is the unix timestamp the run was written.
	CreatedAt int64

	// Source names the input the run was built from (file or directory).
	Source string

	// Scenario is the outlier scenario the run was built with, empty when
	// no duration capping was applied.
	Scenario string

	// RecordCount is the number of consolidated records in the run.
	RecordCount int
}

// NewRun stamps fresh run metadata: a random UUID and the current time.
func NewRun(source, scenario string) Run {
	return Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().Unix(),
		Source:    source,
		Scenario:  scenario,
	}
}

// WriteRun persists a run and its records in one transaction. The run id
// must not already exist; runs are immutable and never overwritten.
func (s *Store) WriteRun(ctx context.Context, run Run, records []record.Record) error {
	run.RecordCount = len(records)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, source, scenario, record_count)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.CreatedAt, run.Source, run.Scenario, run.RecordCount)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records
		(run_id, id, unix_time, time, role, username, courseid,
		 course_area, context, component, event_name, duration, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var duration sql.NullInt64
		if r.HasDuration {
			duration = sql.NullInt64{Int64: r.Duration, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			run.ID, r.ID, r.UnixTime, r.Time, r.Roles.String(), r.Username,
			r.CourseID, r.CourseArea, r.Context, r.Component, r.EventName,
			duration, string(r.Status),
		)
		if err != nil {
			return fmt.Errorf("write run: record %d: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

// DeleteRun removes a run and, through the cascading foreign key, its
// records.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
