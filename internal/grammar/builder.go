package grammar

import (
	corefuzzerrors "github.com/orizon-lang/corefuzz/internal/errors"
	"github.com/orizon-lang/corefuzz/internal/mutator"
)

// FromGrammar walks g once and returns a Mutator[AST] synthesizing and.
// mutating ASTs that conform to it, per spec.md §4.4's construction rules.
// A Recurse node whose Target was never reached by a preceding.
// NewRecursive/SetBody pair is a construction error, not a panic — callers.
// build grammars from static data and should get a reportable error.
func FromGrammar(g *Grammar) (mutator.Mutator[AST], error) {
	return build(g, map[*Grammar]*mutator.RecursiveMutator[AST]{})
}

// WithStrings is a convenience wrapper combining FromGrammar with.
// WithStringMutator, for callers that want the flattened string kept in.
// sync alongside the AST (spec.md §4.4's "with_string" wrapper).
func WithStrings(g *Grammar) (*WithStringMutator, error) {
	inner, err := FromGrammar(g)
	if err != nil {
		return nil, err
	}

	return &WithStringMutator{Inner: inner}, nil
}

func build(g *Grammar, registry map[*Grammar]*mutator.RecursiveMutator[AST]) (mutator.Mutator[AST], error) {
	switch g.Kind {
	case KindLiteral:
		return &tokenMutator{Inner: mutator.NewCharWithinRangeMutator(g.Lo, g.Hi)}, nil

	case KindConcatenation:
		elems, err := buildAll(g.Children, registry)
		if err != nil {
			return nil, err
		}

		return &sequenceMutator{Inner: mutator.NewFixedLenVecMutator[AST](elems)}, nil

	case KindRepetition:
		elem, err := build(g.Elem, registry)
		if err != nil {
			return nil, err
		}

		return &sequenceMutator{Inner: mutator.NewVarLenVecMutator[AST](elem, g.Min, g.Max)}, nil

	case KindAlternation:
		branches, err := buildAll(g.Children, registry)
		if err != nil {
			return nil, err
		}

		return mutator.NewAlternationMutator[AST](branches), nil

	case KindRecursive:
		// Register the handle before recursing into Body: any Recurse node.
		// reachable from Body refers back to this same *Grammar, and must.
		// find it already present in the registry to break the cycle.
		rm := mutator.NewRecursiveMutator[AST]()
		registry[g] = rm

		if g.Body == nil {
			return nil, corefuzzerrors.ConstructionFailure("recursive grammar node has no body",
				map[string]interface{}{"node": "recursive"})
		}

		inner, err := build(g.Body, registry)
		if err != nil {
			return nil, err
		}

		rm.Inner = inner

		return rm, nil

	case KindRecurse:
		rm, ok := registry[g.Target]
		if !ok {
			return nil, corefuzzerrors.ConstructionFailure(
				"recurse target was not registered before use",
				map[string]interface{}{"node": "recurse"})
		}

		return mutator.NewRecurToMutator[AST](rm), nil

	default:
		return nil, corefuzzerrors.ConstructionFailure("unrecognized grammar node kind",
			map[string]interface{}{"kind": int(g.Kind)})
	}
}

func buildAll(gs []*Grammar, registry map[*Grammar]*mutator.RecursiveMutator[AST]) ([]mutator.Mutator[AST], error) {
	out := make([]mutator.Mutator[AST], len(gs))

	for i, g := range gs {
		m, err := build(g, registry)
		if err != nil {
			return nil, err
		}

		out[i] = m
	}

	return out, nil
}
