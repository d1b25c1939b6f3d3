package engine

import (
	"log/slog"

	"github.com/AD1529/xapi-consolidate/internal/record"
)

// Consolidator runs the full consolidation pipeline over one closed batch.
//
// The engine is single-threaded and synchronous: each stage consumes the
// whole batch and hands a new slice to the next stage. The full batch must
// be visible to the role reconstructor before any single record's role can
// be resolved, so there are no streaming or partial results.
type Consolidator struct {
	// CourseNames maps course ids to course names for course-area lookup.
	CourseNames map[int]string

	// Rules overrides the default classification table. Nil means
	// DefaultRules().
	Rules []Rule

	// Roles configures role reconstruction.
	Roles RoleOptions

	// Logger receives per-stage progress. Nil means slog.Default().
	Logger *slog.Logger
}

// Consolidate orders, classifies and role-annotates a batch, returning the
// consolidated records. An empty batch is a no-op yielding an empty slice,
// never an error. Duration derivation is a separate, optional concern; see
// DeriveDurations.
func (c *Consolidator) Consolidate(records []record.Record) ([]record.Record, error) {
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}

	if c.Rules != nil {
		if err := ValidateRules(c.Rules); err != nil {
			return nil, err
		}
	}

	if len(records) == 0 {
		log.Warn("consolidating empty batch")
		return []record.Record{}, nil
	}

	out := Order(records)
	log.Info("batch ordered", "records", len(out))

	classifier := &Classifier{CourseNames: c.CourseNames, Rules: c.Rules}
	out = classifier.Classify(out)
	log.Info("batch classified")

	out = ReconstructRoles(out, c.Roles)
	log.Info("roles reconstructed", "point_in_time", c.Roles.PointInTime)

	return out, nil
}
