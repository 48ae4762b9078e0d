package grammar

// BalancedParens builds the cyclic grammar of spec.md §8 scenario S5: an.
// empty string, or '(' followed by a balanced body followed by ')'. Used by
// this package's own tests and by cmd/corefuzz's --target grammar demo.
func BalancedParens() *Grammar {
	rec := NewRecursive()
	rec.SetBody(Alternation(
		Concatenation(),
		Concatenation(Rune('('), Recurse(rec), Rune(')')),
	))

	return rec
}
