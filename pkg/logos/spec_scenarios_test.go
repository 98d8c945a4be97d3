package logos

import (
	"fmt"
	"sort"
	"testing"
)

// This file exercises the worked examples and the rule-ordering property
// verbatim, the way the design notes describe: literal program text lifted
// straight from the ground-truth vectors rather than paraphrased fixtures,
// so the vectors themselves are actually checked, not just the shapes they
// illustrate.

// Scenario 1: a three-predicate chain with a query that must fail for
// every argument except the one value the chain actually supports.
func TestSpecScenario1Chain(t *testing.T) {
	e := NewEngine()
	if err := e.Load(`f(1); f(2); g(1); g(2); h(2); k(x) := f(x), h(x), g(x);`); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	q, err := e.NewQuery(`k(a)`)
	if err != nil {
		t.Fatalf("query k(a) failed: %v", err)
	}
	rows := drain(t, q)
	if len(rows) != 1 || rows[0]["a"] != "2" {
		t.Fatalf("k(a): expected exactly one result a=2, got %v", rows)
	}

	q, err = e.NewQuery(`k(1)`)
	if err != nil {
		t.Fatalf("query k(1) failed: %v", err)
	}
	if rows := drain(t, q); len(rows) != 0 {
		t.Fatalf("k(1): expected no results, got %v", rows)
	}

	q, err = e.NewQuery(`k(3)`)
	if err != nil {
		t.Fatalf("query k(3) failed: %v", err)
	}
	if rows := drain(t, q); len(rows) != 0 {
		t.Fatalf("k(3): expected no results, got %v", rows)
	}
}

// Scenario 2: the jealousy Cartesian product without a self-exclusion
// clause, so the full {vincent,marcellus}^2 square (including both
// diagonal self-pairs) must come back.
func TestSpecScenario2JealousyCartesianProductNoExclusion(t *testing.T) {
	e := NewEngine()
	if err := e.Load(`loves("vincent","mia"); loves("marcellus","mia"); jealous(a,b) := loves(a,c), loves(b,c);`); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	q, err := e.NewQuery(`jealous(who,of)`)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	rows := drain(t, q)
	if len(rows) != 4 {
		t.Fatalf("expected exactly 4 results (the full cartesian square), got %d: %v", len(rows), rows)
	}

	want := map[string]bool{
		`"vincent","vincent"`:     true,
		`"vincent","marcellus"`:   true,
		`"marcellus","vincent"`:   true,
		`"marcellus","marcellus"`: true,
	}
	got := map[string]bool{}
	for _, r := range rows {
		got[r["who"]+","+r["of"]] = true
	}
	for k := range want {
		if !got[k] {
			t.Fatalf("missing expected pair %s in %v", k, rows)
		}
	}
}

// Scenario 3: negation over single-fact predicates, including the case
// where the negated predicate call fails outright (so negation trivially
// succeeds).
func TestSpecScenario3NegationOddEven(t *testing.T) {
	e := NewEngine()
	if err := e.Load(`odd(1); even(2);`); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	cases := []struct {
		query string
		want  int
	}{
		{`odd(1)`, 1},
		{`!odd(1)`, 0},
		{`!odd(2)`, 1},
		{`!even(3)`, 1},
	}
	for _, c := range cases {
		q, err := e.NewQuery(c.query)
		if err != nil {
			t.Fatalf("query %q failed: %v", c.query, err)
		}
		rows := drain(t, q)
		if len(rows) != c.want {
			t.Fatalf("query %q: expected %d results, got %d: %v", c.query, c.want, len(rows), rows)
		}
	}
}

// Scenario 4: a three-level rule chain where the middle predicate has two
// clauses, each resolving through a different leaf fact; results must come
// back in program order.
func TestSpecScenario4RuleChainOrderedByClauseIndex(t *testing.T) {
	e := NewEngine()
	if err := e.Load(`f(x) := g(x); g(x) := h(x); h(2); g(x) := j(x); j(4);`); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	q, err := e.NewQuery(`f(a)`)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	rows := drain(t, q)
	if len(rows) != 2 || rows[0]["a"] != "2" || rows[1]["a"] != "4" {
		t.Fatalf("expected a=2 then a=4 in that order, got %v", rows)
	}
}

// Scenario 5: a disjunctive rule body backtracks across both branches for
// an unbound argument, and fails outright for an argument neither branch
// supports.
func TestSpecScenario5DisjunctiveRuleBody(t *testing.T) {
	e := NewEngine()
	if err := e.Load(`f(x) := a(x) | b(x); a(1); b(3);`); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	q, err := e.NewQuery(`f(x)`)
	if err != nil {
		t.Fatalf("query f(x) failed: %v", err)
	}
	rows := drain(t, q)
	if len(rows) != 2 || rows[0]["x"] != "1" || rows[1]["x"] != "3" {
		t.Fatalf("expected x=1 then x=3 in that order, got %v", rows)
	}

	q, err = e.NewQuery(`f(2)`)
	if err != nil {
		t.Fatalf("query f(2) failed: %v", err)
	}
	if rows := drain(t, q); len(rows) != 0 {
		t.Fatalf("f(2): expected no results, got %v", rows)
	}
}

// Scenario 6: dict-head matching against a host-owned instance. The rule's
// head argument is a Mapping pattern; the call argument is a live instance
// literal, so the match decomposes into a field-access ExternalCall the
// test answers as the stand-in host.
func TestSpecScenario6HostInstanceDictHeadMatch(t *testing.T) {
	e := NewEngine()
	if err := e.Load(`f({x: 1});`); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	t.Run("host reports matching field value", func(t *testing.T) {
		q, err := e.NewQuery(`f(box{})`)
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if _, err := q.Poll(); err != nil { // MakeExternal
			t.Fatalf("poll 1: %v", err)
		}
		ev, err := q.Poll()
		if err != nil {
			t.Fatalf("poll 2: %v", err)
		}
		call, ok := ev.(ExternalCall)
		if !ok || call.Field != "x" {
			t.Fatalf("expected ExternalCall for field x, got %+v", ev)
		}
		if err := q.SupplyExternalResult(call.CallID, NewInteger(1)); err != nil {
			t.Fatalf("supply failed: %v", err)
		}
		ev, err = q.Poll()
		if err != nil {
			t.Fatalf("poll 3: %v", err)
		}
		if _, ok := ev.(Result); !ok {
			t.Fatalf("expected Result when host reports x=1, got %T", ev)
		}
		ev, err = q.Poll()
		if err != nil {
			t.Fatalf("poll 4: %v", err)
		}
		if _, ok := ev.(Done); !ok {
			t.Fatalf("expected Done, got %T", ev)
		}
	})

	t.Run("host reports mismatched field value", func(t *testing.T) {
		q, err := e.NewQuery(`f(box{})`)
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if _, err := q.Poll(); err != nil { // MakeExternal
			t.Fatalf("poll 1: %v", err)
		}
		ev, err := q.Poll()
		if err != nil {
			t.Fatalf("poll 2: %v", err)
		}
		call := ev.(ExternalCall)
		if err := q.SupplyExternalResult(call.CallID, NewInteger(2)); err != nil {
			t.Fatalf("supply failed: %v", err)
		}
		ev, err = q.Poll()
		if err != nil {
			t.Fatalf("poll 3: %v", err)
		}
		if _, ok := ev.(Done); !ok {
			t.Fatalf("expected Done (no Result) when host reports x=2, got %T", ev)
		}
	})
}

// heapPermutations returns every permutation of 0..n-1 using Heap's
// algorithm, iteratively (no external permutation library is available in
// the ecosystem subset this ships with).
func heapPermutations(n int) [][]int {
	arr := make([]int, n)
	for i := range arr {
		arr[i] = i
	}
	out := make([][]int, 0, factorial(n))
	record := func() {
		cp := make([]int, n)
		copy(cp, arr)
		out = append(out, cp)
	}
	record()
	c := make([]int, n)
	i := 0
	for i < n {
		if c[i] < i {
			if i%2 == 0 {
				arr[0], arr[i] = arr[i], arr[0]
			} else {
				arr[c[i]], arr[i] = arr[i], arr[c[i]]
			}
			record()
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}
	return out
}

func factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}

// TestPropertyRuleOrderPermutationInvarianceAllPermutations is the §15
// commitment for property 1: all 720 permutations of a six-rule fixture
// (three color facts, two shape facts, and a rule joining them) must load
// and query to the identical solution set, regardless of textual order.
func TestPropertyRuleOrderPermutationInvarianceAllPermutations(t *testing.T) {
	rules := []string{
		`color("red");`,
		`color("green");`,
		`color("blue");`,
		`shape("circle");`,
		`shape("square");`,
		`pair(X, Y) := color(X), shape(Y);`,
	}
	perms := heapPermutations(len(rules))
	if len(perms) != 720 {
		t.Fatalf("expected 720 permutations of a 6-element fixture, got %d", len(perms))
	}

	var want []string
	for _, perm := range perms {
		e := NewEngine()
		var src string
		for _, i := range perm {
			src += rules[i]
		}
		if err := e.Load(src); err != nil {
			t.Fatalf("load failed for permutation %v: %v", perm, err)
		}
		q, err := e.NewQuery(`pair(C, S)`)
		if err != nil {
			t.Fatalf("query failed for permutation %v: %v", perm, err)
		}
		rows := drain(t, q)
		if len(rows) != 6 {
			t.Fatalf("permutation %v: expected 6 pairs, got %d: %v", perm, len(rows), rows)
		}
		got := make([]string, len(rows))
		for i, r := range rows {
			got[i] = fmt.Sprintf("%s=%s", r["C"], r["S"])
		}
		sort.Strings(got)

		if want == nil {
			want = got
			continue
		}
		if len(got) != len(want) {
			t.Fatalf("permutation %v: solution set size drifted: got %v, want %v", perm, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("permutation %v: solution set %v differs from reference %v", perm, got, want)
			}
		}
	}
}
