package logos

// Rule is a head (a Call whose arguments may contain Variables, Mappings
// with Variable values, Instance literals, or nested terms) and a body (an
// Expression tree, or True() for a trivial body).
type Rule struct {
	Head *Call
	Body Term
}

// RuleIndex maps a predicate key (name, arity) to its ordered clause list.
// Appending rules preserves existing order; rules sharing a key are
// appended to the end of that key's slice, so enumeration order follows
// load order.
type RuleIndex struct {
	clauses map[PredicateKey][]*Rule
}

// NewRuleIndex returns an empty rule index.
func NewRuleIndex() *RuleIndex {
	return &RuleIndex{clauses: make(map[PredicateKey][]*Rule)}
}

// Add appends rule to the clause list for its head's predicate key.
func (idx *RuleIndex) Add(rule *Rule) {
	key := rule.Head.Key()
	idx.clauses[key] = append(idx.clauses[key], rule)
}

// Lookup returns the ordered clause list for key, or nil if the predicate
// has no clauses (an unknown predicate is not an error; it behaves like a
// predicate with zero clauses).
func (idx *RuleIndex) Lookup(key PredicateKey) []*Rule {
	return idx.clauses[key]
}

// Len reports the total number of loaded clauses, across all predicates.
func (idx *RuleIndex) Len() int {
	n := 0
	for _, cs := range idx.clauses {
		n += len(cs)
	}
	return n
}
