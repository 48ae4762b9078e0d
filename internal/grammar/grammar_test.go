package grammar

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/orizon-lang/corefuzz/internal/mutator"
)

func TestFromGrammar_RecurseWithoutRegisteredTarget(t *testing.T) {
	other := NewRecursive()
	other.SetBody(Concatenation())

	dangling := Concatenation(Recurse(other))

	// other was never reached from dangling's own construction path, so its.
	// handle never entered the registry built for dangling.
	if _, err := FromGrammar(dangling); err == nil {
		t.Fatalf("expected construction error for unregistered recurse target")
	}
}

func TestFromGrammar_BalancedParens_RandomSynthesisIsBalanced(t *testing.T) {
	m, err := FromGrammar(BalancedParens())
	if err != nil {
		t.Fatalf("FromGrammar: %v", err)
	}

	r := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		v, cplx := m.RandomArbitrary(r, 200)
		if cplx <= 0 && v.Kind == ASTSequence && len(v.Items) > 0 {
			t.Fatalf("expected positive complexity for nonempty value")
		}

		s := v.Yield()
		if !isBalanced(s) {
			t.Fatalf("synthesized string %q is not balanced", s)
		}
	}
}

func isBalanced(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}

		if depth < 0 {
			return false
		}
	}

	return depth == 0
}

func TestFromGrammar_Literal_RoundTrip(t *testing.T) {
	m, err := FromGrammar(Literal('a', 'z'))
	if err != nil {
		t.Fatalf("FromGrammar: %v", err)
	}

	r := rand.New(rand.NewSource(2))
	v, _ := m.RandomArbitrary(r, 100)

	cache, ok := m.ValidateValue(v)
	if !ok {
		t.Fatalf("ValidateValue rejected a synthesized value")
	}

	before := v
	tok, _ := m.RandomMutate(r, &v, &cache, 100)
	m.Unmutate(&v, &cache, tok)

	if !reflect.DeepEqual(v, before) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", v, before)
	}
}

func TestFromGrammar_Concatenation_FixedArity(t *testing.T) {
	g := Concatenation(Rune('<'), Literal('a', 'z'), Rune('>'))

	m, err := FromGrammar(g)
	if err != nil {
		t.Fatalf("FromGrammar: %v", err)
	}

	r := rand.New(rand.NewSource(3))
	v, _ := m.RandomArbitrary(r, 100)

	if len(v.Items) != 3 {
		t.Fatalf("expected 3 concatenated items, got %d", len(v.Items))
	}

	s := v.Yield()
	if !strings.HasPrefix(s, "<") || !strings.HasSuffix(s, ">") {
		t.Fatalf("expected bracketed string, got %q", s)
	}
}

func TestFromGrammar_Repetition_RespectsBounds(t *testing.T) {
	g := Repetition(Rune('x'), 2, 5)

	m, err := FromGrammar(g)
	if err != nil {
		t.Fatalf("FromGrammar: %v", err)
	}

	r := rand.New(rand.NewSource(4))

	for i := 0; i < 50; i++ {
		v, _ := m.RandomArbitrary(r, 100)
		if len(v.Items) < 2 || len(v.Items) > 5 {
			t.Fatalf("repetition length %d outside [2,5]", len(v.Items))
		}
	}
}

func TestWithStrings_StaysInSync(t *testing.T) {
	wm, err := WithStrings(Concatenation(Rune('a'), Literal('0', '9')))
	if err != nil {
		t.Fatalf("WithStrings: %v", err)
	}

	r := rand.New(rand.NewSource(5))
	v, _ := wm.RandomArbitrary(r, 50)

	if v.String != v.AST.Yield() {
		t.Fatalf("string %q out of sync with AST yield %q", v.String, v.AST.Yield())
	}

	cache, ok := wm.ValidateValue(v)
	if !ok {
		t.Fatalf("ValidateValue rejected a synthesized WithString value")
	}

	tok, _ := wm.RandomMutate(r, &v, &cache, 50)
	if v.String != v.AST.Yield() {
		t.Fatalf("string out of sync after mutate")
	}

	wm.Unmutate(&v, &cache, tok)
	if v.String != v.AST.Yield() {
		t.Fatalf("string out of sync after unmutate")
	}
}

var _ mutator.Mutator[AST] = (*tokenMutator)(nil)
