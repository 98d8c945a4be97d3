// Package main demonstrates basic usage of the logos resolution engine.
package main

import (
	"fmt"

	"github.com/gitrdm/logos/pkg/logos"
)

func main() {
	fmt.Println("=== logos Examples ===")
	fmt.Println()

	basicUnification()
	disjunctionChoice()
	negationAndRules()
	familyTreeJealousy()
	hostBridgeFieldAccess()
}

// basicUnification demonstrates a single equality goal.
func basicUnification() {
	fmt.Println("1. Basic Unification:")

	e := logos.NewEngine()
	q, err := e.NewQuery(`X = "hello"`)
	if err != nil {
		fmt.Printf("   parse error: %v\n", err)
		return
	}
	printSolutions(q)
	fmt.Println()
}

// disjunctionChoice demonstrates backtracking over a disjunction.
func disjunctionChoice() {
	fmt.Println("2. Multiple Choices (Disjunction):")

	e := logos.NewEngine()
	q, err := e.NewQuery(`X = 1 | X = 2 | X = 3`)
	if err != nil {
		fmt.Printf("   parse error: %v\n", err)
		return
	}
	fmt.Printf("   X in {1, 2, 3} => ")
	printSolutions(q)
	fmt.Println()
}

// negationAndRules demonstrates a rule whose body negates a sub-goal.
func negationAndRules() {
	fmt.Println("3. Negation:")

	e := logos.NewEngine()
	if err := e.Load(`
color("red");
color("blue");
color("green");
not_red(X) := color(X), !(X = "red");
`); err != nil {
		fmt.Printf("   load error: %v\n", err)
		return
	}

	q, err := e.NewQuery(`not_red(X)`)
	if err != nil {
		fmt.Printf("   parse error: %v\n", err)
		return
	}
	fmt.Printf("   colors that are not red => ")
	printSolutions(q)
	fmt.Println()
}

// familyTreeJealousy demonstrates rule chaining over a small fact base:
// two people are jealous of each other if they love the same third person
// and are not the same person.
func familyTreeJealousy() {
	fmt.Println("4. Rule Chaining (Family Tree):")

	e := logos.NewEngine()
	if err := e.Load(`
loves("alice", "bob");
loves("cecile", "bob");
loves("dahlia", "erin");
jealous(X, Y) := loves(X, Z), loves(Y, Z), !(X = Y);
`); err != nil {
		fmt.Printf("   load error: %v\n", err)
		return
	}

	q, err := e.NewQuery(`jealous(X, Y)`)
	if err != nil {
		fmt.Printf("   parse error: %v\n", err)
		return
	}
	fmt.Printf("   jealous(X, Y) => ")
	printSolutions(q)
	fmt.Println()
}

// hostBridgeFieldAccess demonstrates the suspend/resume protocol an
// embedding host drives: an instance literal is reported via MakeExternal,
// and a field access on it suspends on an ExternalCall until the caller
// supplies a value. A real embedding would look the field up on its own
// object; this demo stands in for the host and always answers "gizmo".
func hostBridgeFieldAccess() {
	fmt.Println("5. Host Bridge (External Calls):")

	e := logos.NewEngine()
	q, err := e.NewQuery(`widget{label: "gizmo"}.label = X`)
	if err != nil {
		fmt.Printf("   parse error: %v\n", err)
		return
	}

	for {
		ev, err := q.Poll()
		if err != nil {
			fmt.Printf("   error: %v\n", err)
			return
		}
		switch e := ev.(type) {
		case logos.MakeExternal:
			fmt.Printf("   host: register %s#%d with fields %v\n", e.ClassName, e.InstanceID, e.Fields)
		case logos.ExternalCall:
			fmt.Printf("   host: asked for field %q on instance #%d, answering \"gizmo\"\n", e.Field, e.InstanceID)
			if supplyErr := q.SupplyExternalResult(e.CallID, logos.NewString("gizmo")); supplyErr != nil {
				fmt.Printf("   supply error: %v\n", supplyErr)
				return
			}
		case logos.Result:
			fmt.Printf("   solution: %v\n", formatBindings(e.Bindings))
		case logos.Done:
			fmt.Println()
			return
		}
	}
}

func printSolutions(q *logos.Query) {
	var rows []string
	for {
		ev, err := q.Poll()
		if err != nil {
			fmt.Printf("error: %v", err)
			return
		}
		switch e := ev.(type) {
		case logos.Result:
			rows = append(rows, formatBindings(e.Bindings))
		case logos.Done:
			fmt.Println(rows)
			return
		}
	}
}

func formatBindings(bindings map[string]logos.Term) string {
	out := "{"
	first := true
	for name, term := range bindings {
		if !first {
			out += ", "
		}
		first = false
		out += name + ": " + term.String()
	}
	return out + "}"
}
