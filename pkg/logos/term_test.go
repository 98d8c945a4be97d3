package logos

import "testing"

func TestEqualScalars(t *testing.T) {
	t.Run("integers", func(t *testing.T) {
		if !Equal(NewInteger(3), NewInteger(3)) {
			t.Fatal("expected 3 == 3")
		}
		if Equal(NewInteger(3), NewInteger(4)) {
			t.Fatal("expected 3 != 4")
		}
	})

	t.Run("strings", func(t *testing.T) {
		if !Equal(NewString("a"), NewString("a")) {
			t.Fatal("expected \"a\" == \"a\"")
		}
	})

	t.Run("booleans", func(t *testing.T) {
		if Equal(NewBoolean(true), NewBoolean(false)) {
			t.Fatal("expected true != false")
		}
	})

	t.Run("kind mismatch", func(t *testing.T) {
		if Equal(NewInteger(1), NewString("1")) {
			t.Fatal("expected Integer(1) != String(\"1\")")
		}
	})
}

func TestEqualMappingIgnoresOrder(t *testing.T) {
	a := NewMapping()
	a.Entries.Set("x", NewInteger(1))
	a.Entries.Set("y", NewInteger(2))

	b := NewMapping()
	b.Entries.Set("y", NewInteger(2))
	b.Entries.Set("x", NewInteger(1))

	if !Equal(a, b) {
		t.Fatal("mapping equality must ignore insertion order")
	}
}

func TestEqualInstanceByID(t *testing.T) {
	a := NewInstanceRef(1, "Widget")
	b := NewInstanceRef(1, "Gadget") // different class name, same id
	if !Equal(a, b) {
		t.Fatal("instances with the same id must be equal regardless of class name")
	}

	c := NewInstanceRef(2, "Widget")
	if Equal(a, c) {
		t.Fatal("instances with different ids must not be equal")
	}
}

func TestEqualVariableBySymbol(t *testing.T) {
	a := NewVariable("x", 1)
	b := NewVariable("x", 2)
	if !Equal(a, b) {
		t.Fatal("variables compare by symbol, not generation")
	}
}

func TestPredicateKey(t *testing.T) {
	c := NewCall("f", NewInteger(1), NewInteger(2))
	key := c.Key()
	if key.Name != "f" || key.Arity != 2 {
		t.Fatalf("unexpected key: %+v", key)
	}
	if key.String() != "f/2" {
		t.Fatalf("unexpected key string: %s", key.String())
	}
}
