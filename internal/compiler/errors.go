// Package compiler turns CUE rule files into the engine's and the cleaner's
// rule tables.
//
// Rule tables are configuration, not code: a deployment tunes its
// classification overrides and drop rules by editing CUE, and the compiler
// is the only place that CUE syntax is interpreted. Uses the CUE SDK's Go
// API directly (not CLI subprocess).
package compiler

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// CompileError reports a structural problem in a CUE rule file.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError wraps a raw CUE evaluation error.
func formatCUEError(err error) error {
	return fmt.Errorf("cue: %w", err)
}
