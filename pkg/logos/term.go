// Package logos implements the evaluation core of the policy language: a
// depth-first, backtracking resolution engine built on unification, a goal
// stack, a reversible bindings trail, and a host-bridge suspend/resume
// protocol for external calls into host-owned objects.
//
// The package never owns a thread. An Engine loads rule text, a Query is a
// cursor the caller drives by repeatedly calling Poll; all state transitions
// happen synchronously on the caller's goroutine between two polls.
package logos

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags the variant a Term holds. The resolver and the unifier dispatch
// on Kind rather than using open-ended type assertions, mirroring a tagged
// union.
type Kind int

const (
	KindInteger Kind = iota
	KindString
	KindBoolean
	KindSequence
	KindMapping
	KindInstance
	KindVariable
	KindCall
	KindExpression
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindString:
		return "String"
	case KindBoolean:
		return "Boolean"
	case KindSequence:
		return "Sequence"
	case KindMapping:
		return "Mapping"
	case KindInstance:
		return "Instance"
	case KindVariable:
		return "Variable"
	case KindCall:
		return "Call"
	case KindExpression:
		return "Expression"
	default:
		return "Unknown"
	}
}

// Operator identifies the primitive built-in an Expression term applies.
// Arity is fixed by the operator: Not takes one argument; every other
// operator, Dot included (base term, field name), takes two.
type Operator string

const (
	OpUnify   Operator = "="
	OpNot     Operator = "!"
	OpOr      Operator = "|"
	OpAnd     Operator = ","
	OpDot     Operator = "."
	OpIsa     Operator = "isa"
)

// Pos is opaque source-location metadata. The engine never interprets it;
// it exists only so parse errors and diagnostics can point back at source
// text.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	if p.Line == 0 {
		return ""
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Term is an immutable tagged value: a scalar, a sequence, a mapping, a
// host-owned instance reference, a variable, a predicate call, or a
// primitive expression. Host code (normally the parser) constructs Terms;
// the engine never mutates one in place.
type Term interface {
	Kind() Kind
	String() string
	Pos() Pos
}

// Fields is the ordered field-name -> Term association used by Mapping and
// Instance literals. Insertion order is preserved for display purposes;
// lookups are by field name only (mapping equality does not consider
// order, per the term model).
type Fields = *orderedmap.OrderedMap[string, Term]

// NewFields returns an empty, insertion-order-preserving field map.
func NewFields() Fields {
	return orderedmap.New[string, Term]()
}

// Integer is a signed 64-bit scalar.
type Integer struct {
	Value int64
	At    Pos
}

func NewInteger(v int64) *Integer            { return &Integer{Value: v} }
func (t *Integer) Kind() Kind                { return KindInteger }
func (t *Integer) Pos() Pos                  { return t.At }
func (t *Integer) String() string            { return fmt.Sprintf("%d", t.Value) }

// Str is a text scalar. Named Str rather than String to avoid colliding
// with the Term.String() method.
type Str struct {
	Value string
	At    Pos
}

func NewString(v string) *Str     { return &Str{Value: v} }
func (t *Str) Kind() Kind         { return KindString }
func (t *Str) Pos() Pos           { return t.At }
func (t *Str) String() string     { return fmt.Sprintf("%q", t.Value) }

// Boolean is a true/false scalar.
type Boolean struct {
	Value bool
	At    Pos
}

func NewBoolean(v bool) *Boolean { return &Boolean{Value: v} }
func (t *Boolean) Kind() Kind    { return KindBoolean }
func (t *Boolean) Pos() Pos      { return t.At }
func (t *Boolean) String() string {
	if t.Value {
		return "true"
	}
	return "false"
}

// Sequence is an ordered list of Terms.
type Sequence struct {
	Items []Term
	At    Pos
}

func NewSequence(items ...Term) *Sequence { return &Sequence{Items: items} }
func (t *Sequence) Kind() Kind            { return KindSequence }
func (t *Sequence) Pos() Pos              { return t.At }
func (t *Sequence) String() string {
	parts := make([]string, len(t.Items))
	for i, it := range t.Items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Mapping is an insertion-order-preserving, field-name-unique association
// from strings to Terms (a "dict").
type Mapping struct {
	Entries Fields
	At      Pos
}

func NewMapping() *Mapping { return &Mapping{Entries: NewFields()} }

func (t *Mapping) Kind() Kind { return KindMapping }
func (t *Mapping) Pos() Pos   { return t.At }
func (t *Mapping) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for pair := t.Entries.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s: %s", pair.Key, pair.Value.String())
	}
	b.WriteByte('}')
	return b.String()
}

// Instance is a reference to a host-owned object. InstanceID is stable and
// non-zero once materialized; a literal freshly produced by the parser
// carries InstanceID == 0 and a non-nil Literal field map, and is
// materialized (assigned a fresh id, reported to the host via
// MakeExternal) the first time the resolver encounters it.
type Instance struct {
	InstanceID uint64
	ClassName  string
	Literal    Fields // non-nil only for not-yet-materialized literals
	At         Pos
}

func NewInstanceLiteral(className string, fields Fields) *Instance {
	return &Instance{ClassName: className, Literal: fields}
}

func NewInstanceRef(id uint64, className string) *Instance {
	return &Instance{InstanceID: id, ClassName: className}
}

func (t *Instance) Kind() Kind { return KindInstance }
func (t *Instance) Pos() Pos   { return t.At }
func (t *Instance) String() string {
	if t.Literal != nil {
		var b strings.Builder
		fmt.Fprintf(&b, "%s{", t.ClassName)
		first := true
		for pair := t.Literal.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				b.WriteString(", ")
			}
			first = false
			fmt.Fprintf(&b, "%s: %s", pair.Key, pair.Value.String())
		}
		b.WriteByte('}')
		return b.String()
	}
	return fmt.Sprintf("%s#%d", t.ClassName, t.InstanceID)
}

// Materialized reports whether this instance has been assigned a stable id
// (and therefore reported to the host via MakeExternal already).
func (t *Instance) Materialized() bool { return t.Literal == nil }

// Variable is a symbol. Generation orders variables by creation time across
// a query: when unifying two free variables, the newer (higher generation)
// is bound to the older, per the engine's deterministic tie-break.
type Variable struct {
	Name       string
	Generation uint64
	At         Pos
}

func NewVariable(name string, generation uint64) *Variable {
	return &Variable{Name: name, Generation: generation}
}

func (t *Variable) Kind() Kind     { return KindVariable }
func (t *Variable) Pos() Pos       { return t.At }
func (t *Variable) String() string { return t.Name }

// Call is a predicate application: a symbol plus an ordered argument list.
type Call struct {
	Name string
	Args []Term
	At   Pos
}

func NewCall(name string, args ...Term) *Call { return &Call{Name: name, Args: args} }
func (t *Call) Kind() Kind                    { return KindCall }
func (t *Call) Pos() Pos                      { return t.At }
func (t *Call) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", t.Name, strings.Join(parts, ", "))
}

// PredicateKey identifies a rule's name/arity slot in the rule index.
type PredicateKey struct {
	Name  string
	Arity int
}

func (k PredicateKey) String() string { return fmt.Sprintf("%s/%d", k.Name, k.Arity) }

// Key returns the predicate key this call would look up in the rule index.
func (t *Call) Key() PredicateKey { return PredicateKey{Name: t.Name, Arity: len(t.Args)} }

// Expression is a primitive built-in: one of the fixed engine operators
// over one or two Term operands.
type Expression struct {
	Op   Operator
	Args []Term
	At   Pos
}

func NewExpression(op Operator, args ...Term) *Expression {
	return &Expression{Op: op, Args: args}
}

func (t *Expression) Kind() Kind { return KindExpression }
func (t *Expression) Pos() Pos   { return t.At }
func (t *Expression) String() string {
	switch t.Op {
	case OpNot:
		return fmt.Sprintf("!%s", t.Args[0].String())
	case OpDot:
		return fmt.Sprintf("%s.%s", t.Args[0].String(), t.Args[1].String())
	case OpIsa:
		return fmt.Sprintf("%s: %s", t.Args[0].String(), t.Args[1].String())
	default:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return "(" + strings.Join(parts, string(t.Op)) + ")"
	}
}

// True is the canonical trivial rule body, used whenever the parser sees an
// empty clause body.
func True() *Boolean { return &Boolean{Value: true} }

// Equal implements the term model's structural equality: Instances compare
// by instance id, Mappings by field set and value (ignoring insertion
// order), Variables by symbol, everything else structurally. Equal never
// consults bindings.
func Equal(a, b Term) bool {
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
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *Mapping:
		bv := b.(*Mapping)
		if av.Entries.Len() != bv.Entries.Len() {
			return false
		}
		for pair := av.Entries.Oldest(); pair != nil; pair = pair.Next() {
			other, ok := bv.Entries.Get(pair.Key)
			if !ok || !Equal(pair.Value, other) {
				return false
			}
		}
		return true
	case *Instance:
		bv := b.(*Instance)
		return av.InstanceID == bv.InstanceID
	case *Variable:
		return av.Name == b.(*Variable).Name
	case *Call:
		bv := b.(*Call)
		if av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case *Expression:
		bv := b.(*Expression)
		if av.Op != bv.Op || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// collectVariables appends every Variable reachable in term (without
// following bindings) to out, in first-occurrence order.
func collectVariables(term Term, out []*Variable, seen map[string]bool) []*Variable {
	switch v := term.(type) {
	case *Variable:
		if !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v)
		}
	case *Sequence:
		for _, it := range v.Items {
			out = collectVariables(it, out, seen)
		}
	case *Mapping:
		for pair := v.Entries.Oldest(); pair != nil; pair = pair.Next() {
			out = collectVariables(pair.Value, out, seen)
		}
	case *Instance:
		if v.Literal != nil {
			for pair := v.Literal.Oldest(); pair != nil; pair = pair.Next() {
				out = collectVariables(pair.Value, out, seen)
			}
		}
	case *Call:
		for _, a := range v.Args {
			out = collectVariables(a, out, seen)
		}
	case *Expression:
		for _, a := range v.Args {
			out = collectVariables(a, out, seen)
		}
	}
	return out
}
