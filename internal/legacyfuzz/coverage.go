package fuzz

// ByteEdgeCoverage computes a simple input-derived coverage: pairs of adjacent bytes.
// Each edge is encoded as uint64: (uint64(prev)<<8)|uint64(curr). Adapted from the
// teacher's token-edge scheme; a standalone corefuzz binary has no lexer of its own
// to tokenize against, so the edge is taken over the raw byte stream instead.
func ByteEdgeCoverage(input []byte) []uint64 {
	edges := make([]uint64, 0, len(input))

	if len(input) == 0 {
		return edges
	}

	prev := uint64(input[0])

	for i := 1; i < len(input); i++ {
		curr := uint64(input[i])
		edges = append(edges, (prev<<8)|curr)
		prev = curr
	}

	return edges
}

// WeightedByteEdgeCoverage adds a simple weighting for variety: multiply edges by a.
// small prime that depends on the byte's class band (digit/letter/whitespace/other).
// This helps differentiate inputs that share structure but vary in character class
// density, mirroring the teacher's token-class weighting.
func WeightedByteEdgeCoverage(input []byte) []uint64 {
	edges := make([]uint64, 0, len(input))

	if len(input) == 0 {
		return edges
	}

	prev := uint64(input[0])

	for i := 1; i < len(input); i++ {
		curr := uint64(input[i])
		edge := (prev << 8) | curr
		edges = append(edges, edge*byteClassWeight(input[i]))
		prev = curr
	}

	return edges
}

func byteClassWeight(b byte) uint64 {
	switch {
	case b >= '0' && b <= '9':
		return 5
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b == '_':
		return 3
	case b == ' ', b == '\t', b == '\n', b == '\r':
		return 1
	default:
		return 7
	}
}

// ByteTrigramCoverage computes coverage for byte trigrams (prev, mid, curr) by.
// packing three bytes into a uint64: (prev<<16) | (mid<<8) | curr.
func ByteTrigramCoverage(input []byte) []uint64 {
	trigrams := make([]uint64, 0, len(input))

	if len(input) < 3 {
		return trigrams
	}

	prev := uint64(input[0])
	mid := uint64(input[1])

	for i := 2; i < len(input); i++ {
		curr := uint64(input[i])
		trigrams = append(trigrams, (prev<<16)|(mid<<8)|curr)
		prev, mid = mid, curr
	}

	return trigrams
}

// ComputeCoverage computes coverage based on the given mode:
//   - "edge": ByteEdgeCoverage
//   - "weighted": WeightedByteEdgeCoverage (default)
//   - "trigram": ByteTrigramCoverage
//   - "both": union of WeightedByteEdgeCoverage and ByteEdgeCoverage
func ComputeCoverage(mode string, input []byte) []uint64 {
	switch mode {
	case "edge":
		return ByteEdgeCoverage(input)
	case "trigram":
		return ByteTrigramCoverage(input)
	case "both":
		e := ByteEdgeCoverage(input)
		w := WeightedByteEdgeCoverage(input)

		return append(w, e...)
	case "weighted", "":
		fallthrough
	default:
		return WeightedByteEdgeCoverage(input)
	}
}
