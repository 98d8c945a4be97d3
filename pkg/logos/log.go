package logos

import (
	"github.com/sirupsen/logrus"
)

// stepLogger wraps a *logrus.Logger with the fields the resolver needs on
// every trace/debug line: which query, which predicate clause is being
// tried, how deep the trail and choice-point stacks are. The trace and
// debug step lines populate fields only when their level is enabled, so a
// silenced logger allocates nothing for them beyond the level check; the
// warn-level protocol-violation and error-level resource lines always
// build their fields.
type stepLogger struct {
	base *logrus.Logger
}

func newStepLogger(base *logrus.Logger) *stepLogger {
	if base == nil {
		base = logrus.StandardLogger()
	}
	return &stepLogger{base: base}
}

func (l *stepLogger) clauseAttempt(queryID uint64, key PredicateKey, clauseIdx, trailDepth, cpDepth int) {
	if !l.base.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	l.base.WithFields(logrus.Fields{
		"query_id":     queryID,
		"predicate":    key.String(),
		"clause_index": clauseIdx,
		"trail_depth":  trailDepth,
		"cp_depth":     cpDepth,
	}).Trace("attempting clause")
}

func (l *stepLogger) backtrack(queryID uint64, trailDepth, cpDepth int) {
	if !l.base.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	l.base.WithFields(logrus.Fields{
		"query_id":    queryID,
		"trail_depth": trailDepth,
		"cp_depth":    cpDepth,
	}).Debug("backtracking")
}

func (l *stepLogger) protocolViolation(queryID uint64, rule ProtocolRule) {
	l.base.WithFields(logrus.Fields{
		"query_id": queryID,
		"rule":     rule,
	}).Warn("protocol violation")
}

func (l *stepLogger) resourceExhausted(queryID uint64, ceiling ResourceCeiling, limit int) {
	l.base.WithFields(logrus.Fields{
		"query_id": queryID,
		"ceiling":  ceiling,
		"limit":    limit,
	}).Error("resource ceiling reached")
}
