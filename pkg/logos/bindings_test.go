package logos

import "testing"

func TestWalkFollowsChain(t *testing.T) {
	b := NewBindings()
	x := NewVariable("X", 1)
	y := NewVariable("Y", 2)
	b.bind("X", y)
	b.bind("Y", NewInteger(7))

	got := Walk(x, b)
	if i, ok := got.(*Integer); !ok || i.Value != 7 {
		t.Fatalf("expected Walk to chase X -> Y -> 7, got %v", got)
	}
}

func TestWalkLeavesUnboundVariable(t *testing.T) {
	b := NewBindings()
	x := NewVariable("X", 1)
	got := Walk(x, b)
	if got != Term(x) {
		t.Fatalf("expected unbound variable unchanged, got %v", got)
	}
}

func TestDeepWalkIdempotent(t *testing.T) {
	b := NewBindings()
	x := NewVariable("X", 1)
	y := NewVariable("Y", 2)
	b.bind("Y", NewInteger(3))
	b.bind("X", NewSequence(y, NewInteger(1)))

	first := DeepWalk(NewSequence(x), b)
	second := DeepWalk(first, b)
	if !Equal(first, second) {
		t.Fatalf("DeepWalk is not idempotent: %v != %v", first, second)
	}
	seq, ok := first.(*Sequence)
	if !ok || len(seq.Items) != 1 {
		t.Fatalf("unexpected shape: %v", first)
	}
	inner, ok := seq.Items[0].(*Sequence)
	if !ok || !Equal(inner.Items[0], NewInteger(3)) {
		t.Fatalf("expected nested substitution down to 3, got %v", first)
	}
}

func TestUnifyVarVarGenerationTieBreak(t *testing.T) {
	b := NewBindings()
	older := NewVariable("A", 1)
	newer := NewVariable("B", 2)
	if !Unify(newer, older, b) {
		t.Fatal("expected var-var unify to succeed")
	}
	// The newer variable should be bound to the older.
	if _, ok := b.lookup("B"); !ok {
		t.Fatal("expected B to be bound")
	}
	if _, ok := b.lookup("A"); ok {
		t.Fatal("expected A to remain unbound")
	}
}

func TestUnifyVarVarSameName(t *testing.T) {
	b := NewBindings()
	a := NewVariable("A", 1)
	if !Unify(a, a, b) {
		t.Fatal("expected a variable to unify with itself")
	}
	if b.Depth() != 0 {
		t.Fatal("expected no binding recorded for self-unification")
	}
}

func TestUnifyVarWithNonVar(t *testing.T) {
	b := NewBindings()
	x := NewVariable("X", 1)
	if !Unify(x, NewInteger(5), b) {
		t.Fatal("expected var-nonvar unify to succeed")
	}
	v, ok := b.lookup("X")
	if !ok || !Equal(v, NewInteger(5)) {
		t.Fatalf("expected X bound to 5, got %v", v)
	}
}

func TestUnifyScalarMismatch(t *testing.T) {
	b := NewBindings()
	if Unify(NewInteger(1), NewInteger(2), b) {
		t.Fatal("expected 1 != 2 to fail unification")
	}
	if Unify(NewInteger(1), NewString("1"), b) {
		t.Fatal("expected kind mismatch to fail unification")
	}
}

func TestUnifySequenceElementwise(t *testing.T) {
	b := NewBindings()
	x := NewVariable("X", 1)
	lhs := NewSequence(x, NewInteger(2))
	rhs := NewSequence(NewInteger(1), NewInteger(2))
	if !Unify(lhs, rhs, b) {
		t.Fatal("expected elementwise sequence unify to succeed")
	}
	v, _ := b.lookup("X")
	if !Equal(v, NewInteger(1)) {
		t.Fatalf("expected X bound to 1, got %v", v)
	}
}

func TestUnifySequenceLengthMismatch(t *testing.T) {
	b := NewBindings()
	lhs := NewSequence(NewInteger(1))
	rhs := NewSequence(NewInteger(1), NewInteger(2))
	if Unify(lhs, rhs, b) {
		t.Fatal("expected length mismatch to fail")
	}
}

func TestUnifyMappingPatternSubset(t *testing.T) {
	b := NewBindings()
	x := NewVariable("X", 1)
	pattern := NewMapping()
	pattern.Entries.Set("a", x)

	full := NewMapping()
	full.Entries.Set("a", NewInteger(1))
	full.Entries.Set("b", NewInteger(2))

	if !Unify(pattern, full, b) {
		t.Fatal("expected dict-head subset match to succeed")
	}
	v, _ := b.lookup("X")
	if !Equal(v, NewInteger(1)) {
		t.Fatalf("expected X bound to 1, got %v", v)
	}
}

func TestUnifyMappingPatternMissingField(t *testing.T) {
	b := NewBindings()
	pattern := NewMapping()
	pattern.Entries.Set("missing", NewInteger(1))
	full := NewMapping()
	full.Entries.Set("a", NewInteger(1))

	if Unify(pattern, full, b) {
		t.Fatal("expected missing pattern field to fail")
	}
}

func TestUnifyInstanceByID(t *testing.T) {
	b := NewBindings()
	if !Unify(NewInstanceRef(1, "Widget"), NewInstanceRef(1, "Widget"), b) {
		t.Fatal("expected same-id instances to unify")
	}
	if Unify(NewInstanceRef(1, "Widget"), NewInstanceRef(2, "Widget"), b) {
		t.Fatal("expected different-id instances to fail")
	}
}

func TestTruncateRestoresPriorDepth(t *testing.T) {
	b := NewBindings()
	b.bind("X", NewInteger(1))
	mark := b.Depth()
	b.bind("Y", NewInteger(2))
	b.bind("Z", NewInteger(3))
	if b.Depth() != mark+2 {
		t.Fatalf("expected depth %d, got %d", mark+2, b.Depth())
	}
	b.Truncate(mark)
	if b.Depth() != mark {
		t.Fatalf("expected depth restored to %d, got %d", mark, b.Depth())
	}
	if _, ok := b.lookup("Y"); ok {
		t.Fatal("expected Y binding to be discarded")
	}
	if _, ok := b.lookup("X"); !ok {
		t.Fatal("expected X binding to survive truncation")
	}
}
