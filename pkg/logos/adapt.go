package logos

import "github.com/gitrdm/logos/pkg/logos/parse"

// adaptRule and adaptTerm convert the parser's own term tree into engine
// Terms. This is the one seam between the two packages: parse has no
// import-time dependency on logos (it cannot, since logos.Engine imports
// parse), so conversion happens here rather than inside parse.ParseRules
// or parse.ParseGoal returning logos types directly.
func adaptRule(r *parse.Rule) *Rule {
	return &Rule{
		Head: adaptTerm(r.Head).(*Call),
		Body: adaptTerm(r.Body),
	}
}

func adaptPos(p parse.Pos) Pos { return Pos{Line: p.Line, Col: p.Col} }

func adaptTerm(t parse.Term) Term {
	switch v := t.(type) {
	case *parse.Integer:
		return &Integer{Value: v.Value, At: adaptPos(v.At)}
	case *parse.Str:
		return &Str{Value: v.Value, At: adaptPos(v.At)}
	case *parse.Boolean:
		return &Boolean{Value: v.Value, At: adaptPos(v.At)}
	case *parse.Sequence:
		items := make([]Term, len(v.Items))
		for i, it := range v.Items {
			items[i] = adaptTerm(it)
		}
		return &Sequence{Items: items, At: adaptPos(v.At)}
	case *parse.Mapping:
		out := NewMapping()
		out.At = adaptPos(v.At)
		for i, k := range v.Keys {
			out.Entries.Set(k, adaptTerm(v.Values[i]))
		}
		return out
	case *parse.Instance:
		fields := NewFields()
		for i, k := range v.Keys {
			fields.Set(k, adaptTerm(v.Values[i]))
		}
		return &Instance{ClassName: v.ClassName, Literal: fields, At: adaptPos(v.At)}
	case *parse.Variable:
		return &Variable{Name: v.Name, At: adaptPos(v.At)}
	case *parse.Call:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = adaptTerm(a)
		}
		return &Call{Name: v.Name, Args: args, At: adaptPos(v.At)}
	case *parse.Expression:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = adaptTerm(a)
		}
		return &Expression{Op: Operator(v.Op), Args: args, At: adaptPos(v.At)}
	default:
		panic("logos: unreachable parse term variant")
	}
}

// adaptParseError wraps a *parse.ParseError as the engine-facing
// *ParseError. Engine.Load / Engine.NewQuery call this on any error
// parse.ParseRules / parse.ParseGoal returns.
func adaptParseError(err error) error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*parse.ParseError); ok {
		pos := adaptPos(pe.At)
		return &ParseError{Pos: pos, Message: pe.Message, cause: wrapf(pe, "at %s", pos)}
	}
	return err
}
