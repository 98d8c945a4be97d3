package logos

// Query is the cursor a caller drives by repeatedly calling Poll. It
// encapsulates the original goal expression, the live goal stack, current
// bindings, the choice-point stack, and the host-bridge's pending-call
// table, exactly as the data model describes it.
type Query struct {
	id       uint64
	engine   *Engine
	text     string
	goalExpr Term
	queryVars []string

	goals goalStack
	cps   choicePointStack
	binds *Bindings

	pending    map[uint64]*pendingCall
	awaitCallID *uint64
	callCounter uint64

	varCounter uint64

	pendingEvents  []Event
	resumeBacktrack bool
	doneEmitted     bool
	poisoned        error

	steps int
}

func newQuery(engine *Engine, id uint64, text string, goalExpr Term) *Query {
	q := &Query{
		id:       id,
		engine:   engine,
		text:     text,
		binds:    NewBindings(),
		pending:  make(map[uint64]*pendingCall),
		callCounter: 1,
	}
	seen := map[string]bool{}
	vars := collectVariables(goalExpr, nil, seen)
	q.queryVars = make([]string, len(vars))
	for i, v := range vars {
		q.queryVars[i] = v.Name
	}
	q.goalExpr = q.materializeDeep(goalExpr)
	q.goals.push(solveGoal{Expr: q.goalExpr})
	return q
}

func (q *Query) pushEvent(e Event) {
	q.pendingEvents = append(q.pendingEvents, e)
}

func (q *Query) nextCallID() uint64 {
	id := q.callCounter
	q.callCounter++
	return id
}

// fresh mints a Variable with a name guaranteed distinct from anything the
// parser could have produced, using a per-query monotonic counter that
// also serves as the variable's generation for the var-var tie-break.
func (q *Query) fresh(base string) *Variable {
	q.varCounter++
	return &Variable{Name: variableSuffix(base, q.varCounter), Generation: q.varCounter}
}

func variableSuffix(base string, n uint64) string {
	return base + "#" + uitoa(n)
}

func uitoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Poll advances the query to its next event. It must not be called again
// after a Done event, nor while an ExternalCall is outstanding (the host
// must call SupplyExternalResult first); either misuse poisons the cursor.
func (q *Query) Poll() (Event, error) {
	if q.poisoned != nil {
		return nil, q.poisoned
	}
	if q.doneEmitted {
		err := &ProtocolError{Rule: RulePollAfterDone}
		q.poisoned = err
		q.engine.logger().protocolViolation(q.id, RulePollAfterDone)
		return nil, err
	}
	if q.awaitCallID != nil {
		err := &ProtocolError{Rule: RulePollBeforeSupply, CallID: *q.awaitCallID}
		q.poisoned = err
		q.engine.logger().protocolViolation(q.id, RulePollBeforeSupply)
		return nil, err
	}
	if len(q.pendingEvents) == 0 {
		if err := q.runUntilEvent(); err != nil {
			q.poisoned = err
			return nil, err
		}
	}
	if len(q.pendingEvents) == 0 {
		// Defensive: runUntilEvent only returns once an event is queued.
		return nil, &ProtocolError{Rule: RulePollAfterDone}
	}
	ev := q.pendingEvents[0]
	q.pendingEvents = q.pendingEvents[1:]
	if _, ok := ev.(Done); ok {
		q.doneEmitted = true
	}
	return ev, nil
}

// SupplyExternalResult answers the most recently emitted ExternalCall.
// value == nil means "no more values from this source", which fails and
// backtracks the goal that issued the call. It must be called exactly
// once per ExternalCall, before the next Poll.
func (q *Query) SupplyExternalResult(callID uint64, value Term) error {
	if q.poisoned != nil {
		return q.poisoned
	}
	pc, ok := q.pending[callID]
	if !ok || pc.status != callPending || q.awaitCallID == nil || *q.awaitCallID != callID {
		err := &ProtocolError{Rule: RuleUnknownCallID, CallID: callID}
		q.poisoned = err
		q.engine.logger().protocolViolation(q.id, RuleUnknownCallID)
		return err
	}
	pc.status = callFulfilled
	pc.value = value
	q.awaitCallID = nil
	return nil
}
