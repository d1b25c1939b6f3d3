package engine

import (
	"errors"
	"fmt"
)

// RuleErrorCode categorizes rule-table validation errors.
type RuleErrorCode string

const (
	// ErrCodeUnknownTarget indicates a rule writes a field no stage owns.
	ErrCodeUnknownTarget RuleErrorCode = "UNKNOWN_TARGET"

	// ErrCodeUnknownField indicates a condition reads an unknown field.
	ErrCodeUnknownField RuleErrorCode = "UNKNOWN_FIELD"

	// ErrCodeUnknownOp indicates a condition uses an unknown operator.
	ErrCodeUnknownOp RuleErrorCode = "UNKNOWN_OP"

	// ErrCodeUnknownDerivation indicates a rule names a derived value the
	// engine does not implement.
	ErrCodeUnknownDerivation RuleErrorCode = "UNKNOWN_DERIVATION"

	// ErrCodeEmptyRule indicates a rule with neither value nor derivation.
	ErrCodeEmptyRule RuleErrorCode = "EMPTY_RULE"
)

// RuleError reports an invalid entry in a classification rule table.
// Rule tables are deployment data, so errors carry the rule index for
// diagnostics rather than a file position.
type RuleError struct {
	Code    RuleErrorCode
	Index   int
	Message string
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: rule %d: %s", e.Code, e.Index, e.Message)
}

// IsRuleError reports whether err is a rule-table validation error.
// Uses errors.As to handle wrapped errors.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}
