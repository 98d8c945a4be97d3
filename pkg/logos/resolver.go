package logos

import "fmt"

// runUntilEvent drives the goal stack forward until an event is queued:
// either a caller-visible suspension point (Result, ExternalCall,
// MakeExternal, Done) or a resource ceiling is hit. Goal failures
// (unification mismatches, exhausted clause lists, a negation that
// succeeded) trigger backtrack immediately, inline, without returning
// control to the caller — only Result/ExternalCall/MakeExternal/Done are
// suspension points.
func (q *Query) runUntilEvent() error {
	for len(q.pendingEvents) == 0 {
		if q.resumeBacktrack {
			q.resumeBacktrack = false
			if !q.backtrack() {
				q.pushEvent(Done{})
				break
			}
			continue
		}

		g, ok := q.goals.pop()
		if !ok {
			q.pushEvent(q.makeResult())
			q.resumeBacktrack = true
			continue
		}

		q.steps++
		if lim := q.engine.limits.MaxSteps; lim > 0 && q.steps > lim {
			q.engine.logger().resourceExhausted(q.id, CeilingSteps, lim)
			return &ResourceError{Ceiling: CeilingSteps, Limit: lim}
		}

		if err := q.dispatch(g); err != nil {
			return err
		}

		if lim := q.engine.limits.MaxTrailDepth; lim > 0 && q.binds.Depth() > lim {
			q.engine.logger().resourceExhausted(q.id, CeilingTrailDepth, lim)
			return &ResourceError{Ceiling: CeilingTrailDepth, Limit: lim}
		}
		if lim := q.engine.limits.MaxGoalStackDepth; lim > 0 && q.goals.len() > lim {
			q.engine.logger().resourceExhausted(q.id, CeilingGoalStackDepth, lim)
			return &ResourceError{Ceiling: CeilingGoalStackDepth, Limit: lim}
		}
	}
	return nil
}

// dispatch performs the reduction for one popped goal.
func (q *Query) dispatch(g Goal) error {
	switch goal := g.(type) {
	case solveGoal:
		return q.solve(goal.Expr)
	case unifyGoal:
		return q.unifyStep(goal.A, goal.B)
	case clauseGoal:
		return q.tryClause(goal)
	case negationGuardGoal:
		return q.negationSucceeded(goal)
	case awaitExternalGoal:
		return q.resumeExternal(goal)
	case noopGoal:
		return nil
	default:
		return fmt.Errorf("logos: unrecognized goal type %T", g)
	}
}

// fail triggers backtrack inline; if no choice point remains, it queues
// Done. Either way it never returns an error of its own.
func (q *Query) fail() error {
	if !q.backtrack() {
		q.pushEvent(Done{})
	}
	return nil
}

// backtrack implements §4.4: pop the most recent choice point, truncate
// bindings and the goal stack to its snapshot, and push its alternative.
// This is the single place an actual backtrack happens, whether it was
// triggered by fail() (a failed unify, an exhausted clause list, a
// negation that succeeded) or by runUntilEvent resuming search after
// emitting a solution — so it is also the single place the event is
// logged.
func (q *Query) backtrack() bool {
	cp, ok := q.cps.pop()
	if !ok {
		return false
	}
	q.binds.Truncate(cp.TrailDepth)
	q.goals.truncate(cp.GoalStackLength)
	q.goals.push(cp.Next)
	q.engine.logger().backtrack(q.id, q.binds.Depth(), q.cps.depth())
	return true
}

func (q *Query) makeResult() Result {
	out := make(map[string]Term, len(q.queryVars))
	for _, name := range q.queryVars {
		out[name] = DeepWalk(&Variable{Name: name}, q.binds)
	}
	return Result{Bindings: out}
}

// solve reduces one Expression/Call/boolean-literal goal.
func (q *Query) solve(expr Term) error {
	expr = Walk(expr, q.binds)
	switch e := expr.(type) {
	case *Boolean:
		if e.Value {
			return nil
		}
		return q.fail()
	case *Call:
		return q.solveCall(e)
	case *Expression:
		return q.solveExpression(e)
	default:
		return q.fail()
	}
}

func (q *Query) solveCall(c *Call) error {
	key := c.Key()
	clauses := q.engine.rules.Lookup(key)
	if len(clauses) == 0 {
		return q.fail()
	}
	q.goals.push(clauseGoal{Args: c.Args, Clauses: clauses, Index: 0})
	return nil
}

func (q *Query) solveExpression(e *Expression) error {
	switch e.Op {
	case OpAnd:
		q.goals.pushAll(solveGoal{Expr: e.Args[0]}, solveGoal{Expr: e.Args[1]})
		return nil
	case OpOr:
		q.cps.push(&ChoicePoint{
			GoalStackLength: q.goals.len(),
			TrailDepth:      q.binds.Depth(),
			Next:            solveGoal{Expr: e.Args[1]},
		})
		q.goals.push(solveGoal{Expr: e.Args[0]})
		return nil
	case OpNot:
		return q.solveNegation(e.Args[0])
	case OpUnify, OpIsa:
		q.goals.push(unifyGoal{A: e.Args[0], B: e.Args[1]})
		return nil
	default:
		// A bare field-access or other expression used directly as a goal
		// has no binding target; it is not a recognized goal shape.
		return q.fail()
	}
}

// solveNegation installs the choice point / guard-goal pair described in
// §4.3: a choice point whose alternative is a no-op (reached if the
// negated goal exhausts without a solution, meaning negation succeeds),
// and a guard goal sitting just below "solve A" (reached only if A
// produces a solution, meaning negation must fail).
func (q *Query) solveNegation(inner Term) error {
	entryTrail := q.binds.Depth()
	entryCP := q.cps.depth()
	entryGoalLen := q.goals.len()

	q.cps.push(&ChoicePoint{
		GoalStackLength: entryGoalLen,
		TrailDepth:      entryTrail,
		Next:            noopGoal{},
	})
	q.goals.push(negationGuardGoal{EntryTrail: entryTrail, EntryCP: entryCP, EntryGoalLen: entryGoalLen})
	q.goals.push(solveGoal{Expr: inner})
	return nil
}

// negationSucceeded runs when the negated goal actually produced a
// solution: discard everything it did (its own leftover choice points,
// its bindings, its remaining goals) and fail the negation.
func (q *Query) negationSucceeded(g negationGuardGoal) error {
	q.cps.truncate(g.EntryCP)
	q.binds.Truncate(g.EntryTrail)
	q.goals.truncate(g.EntryGoalLen)
	return q.fail()
}

// tryClause attempts one clause of a predicate's ordered clause list,
// installing a choice point for the next clause first if more remain.
func (q *Query) tryClause(g clauseGoal) error {
	if g.Index >= len(g.Clauses) {
		return q.fail()
	}
	if g.Index+1 < len(g.Clauses) {
		q.cps.push(&ChoicePoint{
			GoalStackLength: q.goals.len(),
			TrailDepth:      q.binds.Depth(),
			Next:            clauseGoal{Args: g.Args, Clauses: g.Clauses, Index: g.Index + 1},
		})
	}

	q.engine.logger().clauseAttempt(q.id, g.Clauses[g.Index].Head.Key(), g.Index, q.binds.Depth(), q.cps.depth())

	head, body := q.activateRule(g.Clauses[g.Index])
	if len(head.Args) != len(g.Args) {
		return q.fail()
	}

	q.goals.push(solveGoal{Expr: body})
	q.goals.pushAll(buildHeadGoals(g.Args, head.Args)...)
	return nil
}

// buildHeadGoals builds the per-argument unify goals for a clause attempt,
// left to right. A specializer head argument `x: T` (§4.7) expands into
// two unify goals: the formal variable against the actual argument, and
// the actual argument against the pattern T — in that order, so T can
// reference variables an earlier argument's specializer already bound.
func buildHeadGoals(callArgs, headArgs []Term) []Goal {
	goals := make([]Goal, 0, len(headArgs))
	for i := range headArgs {
		h := headArgs[i]
		if spec, ok := h.(*Expression); ok && spec.Op == OpIsa {
			goals = append(goals, unifyGoal{A: callArgs[i], B: spec.Args[0]})
			goals = append(goals, unifyGoal{A: callArgs[i], B: spec.Args[1]})
			continue
		}
		goals = append(goals, unifyGoal{A: callArgs[i], B: h})
	}
	return goals
}

// activateRule renames every variable in rule to a fresh name unique to
// this activation (so distinct activations never share a logical
// variable) and materializes any instance literal the renamed term tree
// carries.
func (q *Query) activateRule(rule *Rule) (*Call, Term) {
	mapping := map[string]*Variable{}
	head := q.renameTerm(rule.Head, mapping).(*Call)
	body := q.renameTerm(rule.Body, mapping)
	return q.materializeDeep(head).(*Call), q.materializeDeep(body)
}

func (q *Query) renameTerm(t Term, mapping map[string]*Variable) Term {
	switch v := t.(type) {
	case *Variable:
		if nv, ok := mapping[v.Name]; ok {
			return nv
		}
		nv := q.fresh(v.Name)
		mapping[v.Name] = nv
		return nv
	case *Sequence:
		items := make([]Term, len(v.Items))
		for i, it := range v.Items {
			items[i] = q.renameTerm(it, mapping)
		}
		return &Sequence{Items: items, At: v.At}
	case *Mapping:
		out := NewMapping()
		out.At = v.At
		for pair := v.Entries.Oldest(); pair != nil; pair = pair.Next() {
			out.Entries.Set(pair.Key, q.renameTerm(pair.Value, mapping))
		}
		return out
	case *Instance:
		if v.Literal == nil {
			return v
		}
		lit := NewFields()
		for pair := v.Literal.Oldest(); pair != nil; pair = pair.Next() {
			lit.Set(pair.Key, q.renameTerm(pair.Value, mapping))
		}
		return &Instance{ClassName: v.ClassName, Literal: lit, At: v.At}
	case *Call:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = q.renameTerm(a, mapping)
		}
		return &Call{Name: v.Name, Args: args, At: v.At}
	case *Expression:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = q.renameTerm(a, mapping)
		}
		return &Expression{Op: v.Op, Args: args, At: v.At}
	default:
		return v
	}
}

// materializeDeep walks a freshly introduced term (a clause activation, or
// the original query goal) and assigns every not-yet-materialized Instance
// literal a stable id, queuing a MakeExternal notification for each.
func (q *Query) materializeDeep(t Term) Term {
	switch v := t.(type) {
	case *Instance:
		if v.Literal == nil {
			return v
		}
		newLit := NewFields()
		fields := make(map[string]Term, v.Literal.Len())
		for pair := v.Literal.Oldest(); pair != nil; pair = pair.Next() {
			mv := q.materializeDeep(pair.Value)
			newLit.Set(pair.Key, mv)
			fields[pair.Key] = DeepWalk(mv, q.binds)
		}
		id := q.engine.nextInstanceID()
		q.pushEvent(MakeExternal{InstanceID: id, ClassName: v.ClassName, Fields: fields})
		return &Instance{InstanceID: id, ClassName: v.ClassName, At: v.At}
	case *Sequence:
		items := make([]Term, len(v.Items))
		for i, it := range v.Items {
			items[i] = q.materializeDeep(it)
		}
		return &Sequence{Items: items, At: v.At}
	case *Mapping:
		out := NewMapping()
		out.At = v.At
		for pair := v.Entries.Oldest(); pair != nil; pair = pair.Next() {
			out.Entries.Set(pair.Key, q.materializeDeep(pair.Value))
		}
		return out
	case *Call:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = q.materializeDeep(a)
		}
		return &Call{Name: v.Name, Args: args, At: v.At}
	case *Expression:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = q.materializeDeep(a)
		}
		return &Expression{Op: v.Op, Args: args, At: v.At}
	default:
		return v
	}
}

// unifyStep resolves a single `A = B` (or specializer `isa`) goal. Either
// operand may need a host round-trip before it can be compared: a
// Mapping-vs-Instance pair decomposes into per-field lookups, and a dot
// expression resolves via the Mapping field table or an ExternalCall.
func (q *Query) unifyStep(a, b Term) error {
	a = Walk(a, q.binds)
	b = Walk(b, q.binds)

	if ma, ok := a.(*Mapping); ok {
		if ia, ok2 := b.(*Instance); ok2 {
			return q.unifyMappingInstance(ma, ia)
		}
	}
	if mb, ok := b.(*Mapping); ok {
		if ia, ok2 := a.(*Instance); ok2 {
			return q.unifyMappingInstance(mb, ia)
		}
	}

	if de, isDot := q.evalDot(a); isDot {
		if de.fail {
			return q.fail()
		}
		if de.call != nil {
			return q.suspendExternalCall(*de.call, b)
		}
		a = de.value
	}
	if de, isDot := q.evalDot(b); isDot {
		if de.fail {
			return q.fail()
		}
		if de.call != nil {
			return q.suspendExternalCall(*de.call, a)
		}
		b = de.value
	}

	if Unify(a, b, q.binds) {
		return nil
	}
	return q.fail()
}

// unifyMappingInstance decomposes a Mapping-pattern-vs-Instance match into
// one unify goal per pattern field, each comparing the pattern's value
// against a field-access expression on the instance. Pushed via pushAll so
// fields are checked left to right, matching ordinary dict-head matching.
func (q *Query) unifyMappingInstance(pattern *Mapping, instance *Instance) error {
	var fieldGoals []Goal
	for pair := pattern.Entries.Oldest(); pair != nil; pair = pair.Next() {
		dot := &Expression{Op: OpDot, Args: []Term{instance, NewString(pair.Key)}}
		fieldGoals = append(fieldGoals, unifyGoal{A: pair.Value, B: dot})
	}
	q.goals.pushAll(fieldGoals...)
	return nil
}

// dotEval is the outcome of evaluating a `t.f` expression: either a
// directly resolved value (Mapping base), a suspension (Instance base), or
// a failure (field absent, or a base that supports neither).
type dotEval struct {
	value Term
	call  *ExternalCall
	fail  bool
}

func (q *Query) evalDot(t Term) (dotEval, bool) {
	expr, ok := t.(*Expression)
	if !ok || expr.Op != OpDot {
		return dotEval{}, false
	}
	base := Walk(expr.Args[0], q.binds)
	fieldTerm := Walk(expr.Args[1], q.binds)
	fieldName, ok := fieldTerm.(*Str)
	if !ok {
		return dotEval{fail: true}, true
	}
	switch bv := base.(type) {
	case *Mapping:
		v, found := bv.Entries.Get(fieldName.Value)
		if !found {
			return dotEval{fail: true}, true
		}
		return dotEval{value: v}, true
	case *Instance:
		return dotEval{call: &ExternalCall{CallID: q.nextCallID(), InstanceID: bv.InstanceID, Field: fieldName.Value}}, true
	default:
		return dotEval{fail: true}, true
	}
}

func (q *Query) suspendExternalCall(call ExternalCall, target Term) error {
	q.pending[call.CallID] = &pendingCall{status: callPending}
	id := call.CallID
	q.awaitCallID = &id
	q.goals.push(awaitExternalGoal{CallID: call.CallID, Target: target})
	q.pushEvent(call)
	return nil
}

// resumeExternal consumes the value SupplyExternalResult recorded for
// this call: a supplied value resumes unification (re-entering unifyStep
// in case Target is itself still an unevaluated dot expression), and a nil
// value ("no more values") fails and backtracks.
func (q *Query) resumeExternal(g awaitExternalGoal) error {
	pc := q.pending[g.CallID]
	if pc.value == nil {
		return q.fail()
	}
	return q.unifyStep(pc.value, g.Target)
}
