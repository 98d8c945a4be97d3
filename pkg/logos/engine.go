package logos

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/gitrdm/logos/pkg/logos/parse"
)

// Engine owns the rule index and issues query cursors against it. It is
// the sole piece of state potentially shared across queries: the design
// requires that no rules are loaded while any query against that rule
// base is live, but concurrent queries against a frozen rule base need no
// internal locking since each owns private bindings, goal stack, and
// choice-point stack.
type Engine struct {
	rules  *RuleIndex
	limits Limits
	log    *stepLogger

	nextQueryID    uint64
	instanceIDSeq  uint64
	loadGeneration uint64
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLimits supplies the resource ceilings every query opened by this
// Engine will be bounded by.
func WithLimits(l Limits) Option {
	return func(e *Engine) { e.limits = l }
}

// WithLogger supplies a *logrus.Logger for structured step tracing. If
// omitted, logrus.StandardLogger() is used.
func WithLogger(l *logrus.Logger) Option {
	return func(e *Engine) { e.log = newStepLogger(l) }
}

// NewEngine returns an Engine with an empty rule index and DefaultLimits,
// overridable via WithLimits.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rules:         NewRuleIndex(),
		limits:        DefaultLimits(),
		instanceIDSeq: 0,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = newStepLogger(nil)
	}
	return e
}

func (e *Engine) logger() *stepLogger { return e.log }

func (e *Engine) nextInstanceID() uint64 {
	return atomic.AddUint64(&e.instanceIDSeq, 1)
}

// Generation returns the current load generation, bumped by every
// successful Load. internal/batch uses this to refuse starting a batch of
// queries while a Load could still be racing with it.
func (e *Engine) Generation() uint64 {
	return atomic.LoadUint64(&e.loadGeneration)
}

// Load parses sourceText and extends the rule index with the rules it
// contains. Facts and rules are separated by `;`; an empty body means
// `true`. The rule index is left unchanged if sourceText fails to parse.
func (e *Engine) Load(sourceText string) error {
	rules, err := parse.ParseRules(sourceText)
	if err != nil {
		return adaptParseError(err)
	}
	for _, r := range rules {
		e.rules.Add(adaptRule(r))
	}
	atomic.AddUint64(&e.loadGeneration, 1)
	return nil
}

// NewQuery parses queryText as a goal expression and returns a fresh
// cursor over the current rule index.
func (e *Engine) NewQuery(queryText string) (*Query, error) {
	goal, err := parse.ParseGoal(queryText)
	if err != nil {
		return nil, adaptParseError(err)
	}
	id := atomic.AddUint64(&e.nextQueryID, 1)
	return newQuery(e, id, queryText, adaptTerm(goal)), nil
}

// Poll advances cursor to its next event. It is equivalent to
// cursor.Poll(); both are provided because the embedding API in §6 names
// poll as an engine-facing operation on a cursor.
func (e *Engine) Poll(cursor *Query) (Event, error) {
	return cursor.Poll()
}

// SupplyExternalResult answers cursor's most recent ExternalCall.
func (e *Engine) SupplyExternalResult(cursor *Query, callID uint64, value Term) error {
	return cursor.SupplyExternalResult(callID, value)
}

// RuleCount reports how many clauses are currently loaded, across every
// predicate key.
func (e *Engine) RuleCount() int { return e.rules.Len() }
