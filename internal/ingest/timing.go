// Package ingest reads raw platform exports and lookup tables into the
// normalized record model.
//
// Exports are CSV with one row per user action. Column layouts vary per
// export, and some files arrive without a header row; both cases are
// normalized here so the engine only ever sees fixed column semantics.
package ingest

import (
	"errors"
	"fmt"
	"time"
)

// Display timestamp layouts accepted in exports. Offsets appear both with
// and without a colon depending on the exporting tool.
var timeLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
}

// TimestampError reports a display time that matches no accepted layout.
//
// Unlike a missing course lookup this is fatal to the whole batch: the
// ordering invariants every later stage relies on cannot be guaranteed if
// even one timestamp is silently mis-read.
type TimestampError struct {
	Value string
	Row   int
}

// Error implements the error interface.
func (e *TimestampError) Error() string {
	return fmt.Sprintf("UNPARSABLE_TIMESTAMP: row %d: %q matches no accepted layout", e.Row, e.Value)
}

// IsTimestampError reports whether err is a timestamp parse failure.
// Uses errors.As to handle wrapped errors.
func IsTimestampError(err error) bool {
	var te *TimestampError
	return errors.As(err, &te)
}

// ParseTime converts a display timestamp into seconds since the epoch.
func ParseTime(value string) (int64, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.Unix(), nil
		}
	}
	return 0, &TimestampError{Value: value}
}
