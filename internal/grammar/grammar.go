// Package grammar builds a structure-aware mutator from a declarative
// grammar description, implementing spec.md §4.4. A Grammar is a possibly
// cyclic DAG of productions; FromGrammar (builder.go) walks it once to
// produce a mutator over AST (ast.go) values.
package grammar

// Kind discriminates the production represented by a Grammar node.
type Kind int

const (
	KindLiteral Kind = iota
	KindAlternation
	KindConcatenation
	KindRepetition
	KindRecursive
	KindRecurse
)

// Grammar is one node of a (possibly cyclic) grammar DAG. Which fields are.
// meaningful depends on Kind; see the constructors below, which are the.
// only supported way to populate a Grammar.
type Grammar struct {
	Kind Kind

	// KindLiteral: matches a single rune in the closed range [Lo, Hi].
	Lo, Hi rune

	// KindAlternation, KindConcatenation: the branches/sequence elements.
	Children []*Grammar

	// KindRepetition: Elem repeated Min..=Max times.
	Elem     *Grammar
	Min, Max int

	// KindRecursive: Body may (transitively) contain a KindRecurse node.
	// pointing back at this same *Grammar.
	Body *Grammar

	// KindRecurse: Target must be a *Grammar of KindRecursive, registered.
	// by the builder before this node is reached.
	Target *Grammar
}

// Literal matches any single rune in the closed range [lo, hi].
func Literal(lo, hi rune) *Grammar {
	return &Grammar{Kind: KindLiteral, Lo: lo, Hi: hi}
}

// Rune is shorthand for a Literal matching exactly one rune.
func Rune(r rune) *Grammar {
	return Literal(r, r)
}

// Alternation matches exactly one of gs, chosen by the mutator.
func Alternation(gs ...*Grammar) *Grammar {
	return &Grammar{Kind: KindAlternation, Children: gs}
}

// Concatenation matches gs in sequence. Concatenation() with no children is.
// the empty production (epsilon).
func Concatenation(gs ...*Grammar) *Grammar {
	return &Grammar{Kind: KindConcatenation, Children: gs}
}

// Repetition matches elem repeated between min and max times, inclusive.
func Repetition(elem *Grammar, min, max int) *Grammar {
	if min < 0 || min > max {
		panic("grammar: invalid repetition bounds")
	}

	return &Grammar{Kind: KindRepetition, Elem: elem, Min: min, Max: max}
}

// NewRecursive allocates an empty self-referential production. Its body.
// must be attached with SetBody before FromGrammar is called; in the.
// interim, Recurse(rec) may already be used to build cyclic references,.
// since those only need rec's pointer identity, not its Body.
func NewRecursive() *Grammar {
	return &Grammar{Kind: KindRecursive}
}

// SetBody attaches the body of a Recursive production created by.
// NewRecursive. Must be called exactly once, before FromGrammar.
func (g *Grammar) SetBody(body *Grammar) {
	if g.Kind != KindRecursive {
		panic("grammar: SetBody called on a non-Recursive node")
	}

	g.Body = body
}

// Recurse refers back to a production built with NewRecursive, breaking.
// the DAG's cycle at construction time the same way a weak reference would.
func Recurse(target *Grammar) *Grammar {
	if target.Kind != KindRecursive {
		panic("grammar: Recurse target is not a Recursive node")
	}

	return &Grammar{Kind: KindRecurse, Target: target}
}
