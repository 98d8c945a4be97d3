package logos

// defaultMaxTrailDepth and defaultMaxGoalStackDepth are generous enough
// that no realistic query trips them; they exist only as a backstop
// against a runaway resolver, not as a tuning knob most hosts touch.
const (
	defaultMaxTrailDepth     = 1_000_000
	defaultMaxGoalStackDepth = 1_000_000
)

// Limits bounds the resources a single query may consume. MaxSteps's zero
// value means unbounded; MaxTrailDepth and MaxGoalStackDepth default to a
// large constant rather than unbounded (see DefaultLimits). Limits are
// supplied once, at Engine construction, and apply to every query the
// Engine opens; there is no environment-variable, file, or CLI source for
// them.
type Limits struct {
	// MaxTrailDepth caps the bindings log length. 0 means unbounded, but
	// DefaultLimits sets it to a large constant rather than 0.
	MaxTrailDepth int
	// MaxGoalStackDepth caps the goal stack length. 0 means unbounded, but
	// DefaultLimits sets it to a large constant rather than 0.
	MaxGoalStackDepth int
	// MaxSteps caps the number of resolver steps (goal pops) per query. 0 = unbounded.
	MaxSteps int
}

// DefaultLimits returns the ceilings a host gets without specifying any:
// a large but finite trail and goal-stack depth, and no step ceiling
// (MaxSteps is host-imposed infinite-loop protection, not a default
// safety net). Call sites that want unbounded trail/stack depth must say
// so explicitly rather than rely on the zero value.
func DefaultLimits() Limits {
	return Limits{
		MaxTrailDepth:     defaultMaxTrailDepth,
		MaxGoalStackDepth: defaultMaxGoalStackDepth,
		MaxSteps:          0,
	}
}
