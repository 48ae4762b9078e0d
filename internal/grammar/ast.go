package grammar

import (
	"math/rand"
	"strings"

	corefuzzerrors "github.com/orizon-lang/corefuzz/internal/errors"
	"github.com/orizon-lang/corefuzz/internal/mutator"
)

// ASTKind discriminates the two cases of the AST tagged union: a single.
// matched rune (Token), or a sequence of child ASTs (Sequence). Every.
// grammar-derived mutator bottoms out in one of these, per spec.md §4.4.
type ASTKind int

const (
	ASTToken ASTKind = iota
	ASTSequence
)

// AST is the value type synthesized and mutated by a grammar-derived.
// Mutator[AST]. It carries no grammar reference of its own; structure.
// comes entirely from which Kind and how deeply Items nest.
type AST struct {
	Kind  ASTKind
	Char  rune
	Items []AST
}

// Yield flattens the AST into the string it represents, by emitting Token.
// leaves in left-to-right order. This is the "with_string" regeneration.
// step of spec.md §4.4.
func (a AST) Yield() string {
	var b strings.Builder
	a.writeTo(&b)

	return b.String()
}

func (a AST) writeTo(b *strings.Builder) {
	switch a.Kind {
	case ASTToken:
		b.WriteRune(a.Char)
	case ASTSequence:
		for _, child := range a.Items {
			child.writeTo(b)
		}
	}
}

// WithString pairs a synthesized AST with its flattened string, kept in.
// sync by WithStringMutator after every mutation (spec.md §4.4).
type WithString struct {
	AST    AST
	String string
}

// tokenMutator adapts a Mutator[rune] (a Literal production) into a.
// Mutator[AST] producing/consuming ASTToken values, so it can sit as a.
// branch inside composite AST mutators alongside Concatenation and.
// Alternation productions.
type tokenMutator struct {
	Inner mutator.Mutator[rune]
}

var _ mutator.Mutator[AST] = (*tokenMutator)(nil)

func (m *tokenMutator) DefaultArbitraryStep() mutator.ArbitraryStep {
	return m.Inner.DefaultArbitraryStep()
}

func (m *tokenMutator) ValidateValue(v AST) (mutator.Cache, bool) {
	if v.Kind != ASTToken {
		return nil, false
	}

	return m.Inner.ValidateValue(v.Char)
}

func (m *tokenMutator) DefaultMutationStep(v AST, cache mutator.Cache) mutator.MutationStep {
	return m.Inner.DefaultMutationStep(v.Char, cache)
}

func (m *tokenMutator) MinComplexity() float64 { return m.Inner.MinComplexity() }
func (m *tokenMutator) MaxComplexity() float64 { return m.Inner.MaxComplexity() }

func (m *tokenMutator) Complexity(v AST, cache mutator.Cache) float64 {
	return m.Inner.Complexity(v.Char, cache)
}

func (m *tokenMutator) OrderedArbitrary(step *mutator.ArbitraryStep, maxCplx float64) (AST, float64, bool) {
	r, cplx, ok := m.Inner.OrderedArbitrary(step, maxCplx)
	if !ok {
		return AST{}, 0, false
	}

	return AST{Kind: ASTToken, Char: r}, cplx, true
}

func (m *tokenMutator) RandomArbitrary(r *rand.Rand, maxCplx float64) (AST, float64) {
	c, cplx := m.Inner.RandomArbitrary(r, maxCplx)

	return AST{Kind: ASTToken, Char: c}, cplx
}

func (m *tokenMutator) OrderedMutate(v *AST, cache *mutator.Cache, step *mutator.MutationStep, maxCplx float64) (mutator.UnmutateToken, float64, bool) {
	tok, cplx, ok := m.Inner.OrderedMutate(&v.Char, cache, step, maxCplx)
	if !ok {
		return nil, 0, false
	}

	return tok, cplx, true
}

func (m *tokenMutator) RandomMutate(r *rand.Rand, v *AST, cache *mutator.Cache, maxCplx float64) (mutator.UnmutateToken, float64) {
	return m.Inner.RandomMutate(r, &v.Char, cache, maxCplx)
}

func (m *tokenMutator) Unmutate(v *AST, cache *mutator.Cache, token mutator.UnmutateToken) {
	m.Inner.Unmutate(&v.Char, cache, token)
}

func (m *tokenMutator) VisitSubvalues(v AST, cache mutator.Cache, visit func(mutator.SubValue)) {
	m.Inner.VisitSubvalues(v.Char, cache, visit)
}

// sequenceMutator adapts a Mutator[[]AST] (a Concatenation or Repetition.
// production) into a Mutator[AST] producing/consuming ASTSequence values.
type sequenceMutator struct {
	Inner mutator.Mutator[[]AST]
}

var _ mutator.Mutator[AST] = (*sequenceMutator)(nil)

func (m *sequenceMutator) DefaultArbitraryStep() mutator.ArbitraryStep {
	return m.Inner.DefaultArbitraryStep()
}

func (m *sequenceMutator) ValidateValue(v AST) (mutator.Cache, bool) {
	if v.Kind != ASTSequence {
		return nil, false
	}

	return m.Inner.ValidateValue(v.Items)
}

func (m *sequenceMutator) DefaultMutationStep(v AST, cache mutator.Cache) mutator.MutationStep {
	return m.Inner.DefaultMutationStep(v.Items, cache)
}

func (m *sequenceMutator) MinComplexity() float64 { return m.Inner.MinComplexity() }
func (m *sequenceMutator) MaxComplexity() float64 { return m.Inner.MaxComplexity() }

func (m *sequenceMutator) Complexity(v AST, cache mutator.Cache) float64 {
	return m.Inner.Complexity(v.Items, cache)
}

func (m *sequenceMutator) OrderedArbitrary(step *mutator.ArbitraryStep, maxCplx float64) (AST, float64, bool) {
	items, cplx, ok := m.Inner.OrderedArbitrary(step, maxCplx)
	if !ok {
		return AST{}, 0, false
	}

	return AST{Kind: ASTSequence, Items: items}, cplx, true
}

func (m *sequenceMutator) RandomArbitrary(r *rand.Rand, maxCplx float64) (AST, float64) {
	items, cplx := m.Inner.RandomArbitrary(r, maxCplx)

	return AST{Kind: ASTSequence, Items: items}, cplx
}

func (m *sequenceMutator) OrderedMutate(v *AST, cache *mutator.Cache, step *mutator.MutationStep, maxCplx float64) (mutator.UnmutateToken, float64, bool) {
	if v.Kind != ASTSequence {
		panic(corefuzzerrors.VariantMismatch("sequenceMutator.OrderedMutate"))
	}

	tok, cplx, ok := m.Inner.OrderedMutate(&v.Items, cache, step, maxCplx)
	if !ok {
		return nil, 0, false
	}

	return tok, cplx, true
}

func (m *sequenceMutator) RandomMutate(r *rand.Rand, v *AST, cache *mutator.Cache, maxCplx float64) (mutator.UnmutateToken, float64) {
	if v.Kind != ASTSequence {
		panic(corefuzzerrors.VariantMismatch("sequenceMutator.RandomMutate"))
	}

	return m.Inner.RandomMutate(r, &v.Items, cache, maxCplx)
}

func (m *sequenceMutator) Unmutate(v *AST, cache *mutator.Cache, token mutator.UnmutateToken) {
	m.Inner.Unmutate(&v.Items, cache, token)
}

func (m *sequenceMutator) VisitSubvalues(v AST, cache mutator.Cache, visit func(mutator.SubValue)) {
	m.Inner.VisitSubvalues(v.Items, cache, visit)
}

// WithStringMutator wraps a Mutator[AST] to keep a flattened string.
// regenerated after every synthesis or edit, implementing the.
// "with_string" wrapper of spec.md §4.4. Cache, MutationStep, ArbitraryStep.
// and UnmutateToken are all the inner mutator's, unchanged.
type WithStringMutator struct {
	Inner mutator.Mutator[AST]
}

var _ mutator.Mutator[WithString] = (*WithStringMutator)(nil)

func (m *WithStringMutator) DefaultArbitraryStep() mutator.ArbitraryStep {
	return m.Inner.DefaultArbitraryStep()
}

func (m *WithStringMutator) ValidateValue(v WithString) (mutator.Cache, bool) {
	if v.String != v.AST.Yield() {
		return nil, false
	}

	return m.Inner.ValidateValue(v.AST)
}

func (m *WithStringMutator) DefaultMutationStep(v WithString, cache mutator.Cache) mutator.MutationStep {
	return m.Inner.DefaultMutationStep(v.AST, cache)
}

func (m *WithStringMutator) MinComplexity() float64 { return m.Inner.MinComplexity() }
func (m *WithStringMutator) MaxComplexity() float64 { return m.Inner.MaxComplexity() }

func (m *WithStringMutator) Complexity(v WithString, cache mutator.Cache) float64 {
	return m.Inner.Complexity(v.AST, cache)
}

func (m *WithStringMutator) OrderedArbitrary(step *mutator.ArbitraryStep, maxCplx float64) (WithString, float64, bool) {
	a, cplx, ok := m.Inner.OrderedArbitrary(step, maxCplx)
	if !ok {
		return WithString{}, 0, false
	}

	return WithString{AST: a, String: a.Yield()}, cplx, true
}

func (m *WithStringMutator) RandomArbitrary(r *rand.Rand, maxCplx float64) (WithString, float64) {
	a, cplx := m.Inner.RandomArbitrary(r, maxCplx)

	return WithString{AST: a, String: a.Yield()}, cplx
}

func (m *WithStringMutator) OrderedMutate(v *WithString, cache *mutator.Cache, step *mutator.MutationStep, maxCplx float64) (mutator.UnmutateToken, float64, bool) {
	tok, cplx, ok := m.Inner.OrderedMutate(&v.AST, cache, step, maxCplx)
	if !ok {
		return nil, 0, false
	}

	v.String = v.AST.Yield()

	return tok, cplx, true
}

func (m *WithStringMutator) RandomMutate(r *rand.Rand, v *WithString, cache *mutator.Cache, maxCplx float64) (mutator.UnmutateToken, float64) {
	tok, cplx := m.Inner.RandomMutate(r, &v.AST, cache, maxCplx)
	v.String = v.AST.Yield()

	return tok, cplx
}

func (m *WithStringMutator) Unmutate(v *WithString, cache *mutator.Cache, token mutator.UnmutateToken) {
	m.Inner.Unmutate(&v.AST, cache, token)
	v.String = v.AST.Yield()
}

func (m *WithStringMutator) VisitSubvalues(v WithString, cache mutator.Cache, visit func(mutator.SubValue)) {
	m.Inner.VisitSubvalues(v.AST, cache, visit)
}
