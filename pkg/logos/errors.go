package logos

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseError is returned by Engine.Load and Engine.NewQuery when source
// text is malformed. The rule index (or, for NewQuery, the rule index's
// visible state) is left unchanged.
type ParseError struct {
	Pos     Pos
	Message string
	cause   error
}

func (e *ParseError) Error() string {
	if e.Pos.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

func (e *ParseError) Unwrap() error { return e.cause }

// NewParseError wraps a message with its source position using
// github.com/pkg/errors so callers retain a stack trace at the point of
// failure.
func NewParseError(pos Pos, format string, args ...interface{}) *ParseError {
	msg := fmt.Sprintf(format, args...)
	return &ParseError{Pos: pos, Message: msg, cause: errors.New(msg)}
}

// ProtocolRule names the embedding-API invariant a ProtocolError violated.
type ProtocolRule string

const (
	// RulePollAfterDone: poll was called on a cursor that already emitted Done.
	RulePollAfterDone ProtocolRule = "poll-after-done"
	// RuleUnknownCallID: supply_external_result referenced a call_id never emitted, or already fulfilled.
	RuleUnknownCallID ProtocolRule = "unknown-call-id"
	// RulePollBeforeSupply: poll was called while an ExternalCall was still outstanding.
	RulePollBeforeSupply ProtocolRule = "poll-before-supply"
)

// ProtocolError is fatal: the embedding API was used in a way the protocol
// forbids (polling after Done, or supplying a value for an unknown or
// already-fulfilled call_id). The cursor it occurred on is poisoned;
// subsequent operations on it fail deterministically with the same error.
type ProtocolError struct {
	Rule   ProtocolRule
	CallID uint64
}

func (e *ProtocolError) Error() string {
	switch e.Rule {
	case RuleUnknownCallID:
		return fmt.Sprintf("protocol violation: unknown or already-fulfilled call_id %d", e.CallID)
	default:
		return fmt.Sprintf("protocol violation: %s", e.Rule)
	}
}

// ResourceCeiling names which configured limit was exceeded.
type ResourceCeiling string

const (
	CeilingTrailDepth     ResourceCeiling = "trail-depth"
	CeilingGoalStackDepth ResourceCeiling = "goal-stack-depth"
	CeilingSteps          ResourceCeiling = "steps"
)

// ResourceError is fatal: a configured ceiling (MaxTrailDepth,
// MaxGoalStackDepth, or MaxSteps) was reached. Any Result events already
// emitted before this error remain valid; no further progress is made on
// this cursor.
type ResourceError struct {
	Ceiling ResourceCeiling
	Limit   int
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource exhausted: %s ceiling of %d reached", e.Ceiling, e.Limit)
}

// wrapf is the internal helper for attaching caller-facing context to an
// error without discarding its cause, in the style of pkg/errors.Wrapf.
func wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
