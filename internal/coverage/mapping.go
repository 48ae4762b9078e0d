package coverage

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
)

// The decoders in this file read a simplified, self-consistent encoding of.
// the coverage sections (ULEB128 fields, MD5 name keys, counter and.
// expression terms); they are not a decoder for clang's exact byte layout.

// decodeULEB128 reads an LEB128-encoded unsigned integer starting at *pos,.
// advancing *pos past it. LLVM's coverage mapping format encodes every.
// length and index field this way (spec.md §4.5 "parses LLVM's.
// LEB128-encoded coverage mapping").
func decodeULEB128(b []byte, pos *int) (uint64, error) {
	var result uint64

	var shift uint

	for {
		if *pos >= len(b) {
			return 0, fmt.Errorf("coverage: truncated uleb128 at offset %d", *pos)
		}

		next := b[*pos]
		*pos++

		result |= uint64(next&0x7f) << shift
		if next&0x80 == 0 {
			break
		}

		shift += 7
		if shift >= 64 {
			return 0, fmt.Errorf("coverage: uleb128 overflow at offset %d", *pos)
		}
	}

	return result, nil
}

func decodeString(b []byte, pos *int) (string, error) {
	n, err := decodeULEB128(b, pos)
	if err != nil {
		return "", err
	}

	if *pos+int(n) > len(b) {
		return "", fmt.Errorf("coverage: truncated string at offset %d", *pos)
	}

	s := string(b[*pos : *pos+int(n)])
	*pos += int(n)

	return s, nil
}

// readPrfNames decodes the __llvm_prf_names region into the list of
// function names the profiling runtime registered, each a length-prefixed
// string.
func readPrfNames(b []byte) ([]string, error) {
	var names []string

	pos := 0
	for pos < len(b) {
		name, err := decodeString(b, &pos)
		if err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	return names, nil
}

// nameMD5Key hashes name the way the profiling runtime keys its function.
// records: the first 8 bytes of the MD5 digest, read little-endian.
func nameMD5Key(name string) int64 {
	sum := md5.Sum([]byte(name))

	return int64(binary.LittleEndian.Uint64(sum[:8]))
}

// readCovMap decodes the __llvm_covmap region's filename table.
func readCovMap(b []byte) ([]string, error) {
	pos := 0

	numFiles, err := decodeULEB128(b, &pos)
	if err != nil {
		return nil, err
	}

	files := make([]string, numFiles)

	for i := range files {
		files[i], err = decodeString(b, &pos)
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// expression is a counter whose value is the sum of one or more single.
// counters, per spec.md §4.5's "expression counters compute their formula.
// first".
type expression struct {
	terms []int // indices into the owning function's single-counter slots
}

func (e expression) compute(singles []uint64) uint64 {
	var total uint64
	for _, t := range e.terms {
		total += singles[t]
	}

	return total
}

// functionRecord is one parsed __llvm_covfun entry: its resolved name and.
// source file, how many single counters it owns, and its expression.
// counters.
type functionRecord struct {
	name        string
	file        string
	numSingle   int
	expressions []expression
}

// readCovFun decodes the __llvm_covfun region into per-function records,.
// resolving each function's MD5 name key against names (built from.
// prf_names) and its file index against files (from covmap).
func readCovFun(b []byte, names map[int64]string, files []string) ([]functionRecord, error) {
	pos := 0

	var records []functionRecord

	for pos < len(b) {
		if pos+8 > len(b) {
			return nil, fmt.Errorf("coverage: truncated function record header at offset %d", pos)
		}

		key := int64(binary.LittleEndian.Uint64(b[pos : pos+8]))
		pos += 8

		fileIdx, err := decodeULEB128(b, &pos)
		if err != nil {
			return nil, err
		}

		if int(fileIdx) >= len(files) {
			return nil, fmt.Errorf("coverage: function record references out-of-range file index %d", fileIdx)
		}

		numSingle, err := decodeULEB128(b, &pos)
		if err != nil {
			return nil, err
		}

		numExpr, err := decodeULEB128(b, &pos)
		if err != nil {
			return nil, err
		}

		exprs := make([]expression, numExpr)

		for i := range exprs {
			numTerms, err := decodeULEB128(b, &pos)
			if err != nil {
				return nil, err
			}

			terms := make([]int, numTerms)

			for j := range terms {
				term, err := decodeULEB128(b, &pos)
				if err != nil {
					return nil, err
				}

				terms[j] = int(term)
			}

			exprs[i] = expression{terms: terms}
		}

		name, ok := names[key]
		if !ok {
			name = fmt.Sprintf("<unknown:%x>", uint64(key))
		}

		records = append(records, functionRecord{
			name:        name,
			file:        files[fileIdx],
			numSingle:   int(numSingle),
			expressions: exprs,
		})
	}

	return records, nil
}

// buildNameMap indexes names by their MD5 key, the same map shape the.
// original builds in CodeCoverageSensor::new before calling.
// process_function_records.
func buildNameMap(names []string) map[int64]string {
	m := make(map[int64]string, len(names))
	for _, n := range names {
		m[nameMD5Key(n)] = n
	}

	return m
}
