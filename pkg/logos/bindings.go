package logos

// entry is one append-only bindings-log record: the named variable and the
// term it was bound to at the time of binding.
type entry struct {
	name  string
	value Term
}

// Bindings is the query's reversible variable environment: an append-only
// log of (Variable, Term) associations. Trail depth is simply len(log).
// Backtracking truncates the log by an exact prefix length, which is why
// the representation is a plain slice rather than a map: truncation must
// be O(1) and must not disturb entries before the cut point.
type Bindings struct {
	log []entry
}

// NewBindings returns an empty bindings log.
func NewBindings() *Bindings {
	return &Bindings{}
}

// Depth returns the current trail depth (the log length).
func (b *Bindings) Depth() int { return len(b.log) }

// Truncate discards every entry at or after index depth, restoring the log
// to the state it was in when depth was last observed. Truncating to a
// depth greater than the current length is a no-op.
func (b *Bindings) Truncate(depth int) {
	if depth < len(b.log) {
		b.log = b.log[:depth]
	}
}

// bind appends a new entry without checking for an existing one; callers
// are responsible for only binding free variables.
func (b *Bindings) bind(name string, value Term) {
	b.log = append(b.log, entry{name: name, value: value})
}

// lookup returns the term first bound to name, and whether a
// binding exists. Each variable is bound at most once per activation (the
// resolver never rebinds an already-bound variable), so a forward scan
// finds the single relevant entry.
func (b *Bindings) lookup(name string) (Term, bool) {
	for i := range b.log {
		if b.log[i].name == name {
			return b.log[i].value, true
		}
	}
	return nil, false
}

// Walk resolves a term one level: if it is a bound Variable, follow its
// binding and recurse (bindings may chain variable-to-variable); anything
// else, including an unbound Variable, is returned unchanged. Walk does
// not descend into sub-terms of a Sequence, Mapping, Call, or Expression.
func Walk(term Term, b *Bindings) Term {
	for {
		v, ok := term.(*Variable)
		if !ok {
			return term
		}
		bound, ok := b.lookup(v.Name)
		if !ok {
			return term
		}
		term = bound
	}
}

// DeepWalk produces a final term with every bound variable, at every
// depth, recursively substituted. It is used when handing bindings back to
// the caller in a Result event and is idempotent:
// DeepWalk(DeepWalk(t)) == DeepWalk(t).
func DeepWalk(term Term, b *Bindings) Term {
	term = Walk(term, b)
	switch v := term.(type) {
	case *Sequence:
		items := make([]Term, len(v.Items))
		for i, it := range v.Items {
			items[i] = DeepWalk(it, b)
		}
		return &Sequence{Items: items, At: v.At}
	case *Mapping:
		out := NewMapping()
		out.At = v.At
		for pair := v.Entries.Oldest(); pair != nil; pair = pair.Next() {
			out.Entries.Set(pair.Key, DeepWalk(pair.Value, b))
		}
		return out
	case *Call:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = DeepWalk(a, b)
		}
		return &Call{Name: v.Name, Args: args, At: v.At}
	case *Expression:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = DeepWalk(a, b)
		}
		return &Expression{Op: v.Op, Args: args, At: v.At}
	case *Instance:
		if v.Literal == nil {
			return v
		}
		out := NewMapping()
		for pair := v.Literal.Oldest(); pair != nil; pair = pair.Next() {
			out.Entries.Set(pair.Key, DeepWalk(pair.Value, b))
		}
		return &Instance{InstanceID: v.InstanceID, ClassName: v.ClassName, Literal: out.Entries, At: v.At}
	default:
		return term
	}
}

// Unify attempts to make a and b equal under b's bindings, mutating the log
// on success and leaving it byte-for-byte unchanged on failure. There is no
// occurs-check, matching the source language this engine implements.
func Unify(a, b Term, binds *Bindings) bool {
	mark := binds.Depth()
	a = Walk(a, binds)
	b = Walk(b, binds)

	av, aIsVar := a.(*Variable)
	bv, bIsVar := b.(*Variable)

	switch {
	case aIsVar && bIsVar:
		if av.Name == bv.Name {
			return true
		}
		// Bind the newer variable to the older one so that the surviving
		// binding always points toward the longer-lived symbol.
		if av.Generation >= bv.Generation {
			binds.bind(av.Name, bv)
		} else {
			binds.bind(bv.Name, av)
		}
		return true
	case aIsVar:
		binds.bind(av.Name, b)
		return true
	case bIsVar:
		binds.bind(bv.Name, a)
		return true
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case *Integer:
		return av.Value == b.(*Integer).Value
	case *Str:
		return av.Value == b.(*Str).Value
	case *Boolean:
		return av.Value == b.(*Boolean).Value
	case *Sequence:
		bv := b.(*Sequence)
		if len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Unify(av.Items[i], bv.Items[i], binds) {
				binds.Truncate(mark)
				return false
			}
		}
		return true
	case *Mapping:
		if !unifyMappingPattern(av, b.(*Mapping).Entries, binds) {
			binds.Truncate(mark)
			return false
		}
		return true
	case *Instance:
		bv := b.(*Instance)
		return av.InstanceID == bv.InstanceID
	case *Call:
		bv := b.(*Call)
		if av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Unify(av.Args[i], bv.Args[i], binds) {
				binds.Truncate(mark)
				return false
			}
		}
		return true
	}
	return false
}

// unifyMappingPattern implements the "dict head" subset-match rule: every
// field in the left-hand pattern must be present on the right with
// element-wise unification; the right side may carry extra fields.
func unifyMappingPattern(pattern *Mapping, against Fields, binds *Bindings) bool {
	for pair := pattern.Entries.Oldest(); pair != nil; pair = pair.Next() {
		rhs, ok := against.Get(pair.Key)
		if !ok {
			return false
		}
		if !Unify(pair.Value, rhs, binds) {
			return false
		}
	}
	return true
}
