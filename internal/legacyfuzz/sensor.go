package fuzz

import (
	"sort"

	"github.com/orizon-lang/corefuzz/internal/coverage"
	"github.com/orizon-lang/corefuzz/internal/fuzzloop"
)

var _ fuzzloop.Sensor = (*ByteEdgeSensor)(nil)

// ByteEdgeSensor is the Sensor cmd/corefuzz uses when --sensor is not llvm: it satisfies
// internal/fuzzloop.Sensor over ComputeCoverage's byte-edge/trigram scheme
// instead of the LLVM counter sections internal/coverage.Sensor reads, for
// hosts where the binary under test was never Clang-instrumented. Record
// must be called by the harness's test-function wrapper with the exact
// bytes just executed, since unlike real coverage counters this sensor has
// no side channel into the target.
type ByteEdgeSensor struct {
	mode    string
	current []byte
}

// NewByteEdgeSensor returns a sensor computing edges with the given
// ComputeCoverage mode ("edge", "weighted", "trigram", or "both").
func NewByteEdgeSensor(mode string) *ByteEdgeSensor {
	return &ByteEdgeSensor{mode: mode}
}

// Record captures the input the harness is about to execute.
func (s *ByteEdgeSensor) Record(data []byte) { s.current = data }

func (s *ByteEdgeSensor) StartRecording() {}
func (s *ByteEdgeSensor) StopRecording()  {}

func (s *ByteEdgeSensor) Clear() { s.current = nil }

func (s *ByteEdgeSensor) FunctionCount() int {
	if s.current == nil {
		return 0
	}

	return 1
}

// IterateOverCollectedFeatures emits one feature per distinct edge value,
// counting repeat occurrences the way an LLVM counter would, since a
// feature is (index, count) and callers such as SimplePool key novelty on
// index alone.
func (s *ByteEdgeSensor) IterateOverCollectedFeatures(functionIndex int, handle func(coverage.Feature)) {
	if functionIndex != 0 || s.current == nil {
		return
	}

	counts := make(map[uint32]uint64)

	for _, edge := range ComputeCoverage(s.mode, s.current) {
		counts[uint32(edge)]++
	}

	idxs := make([]uint32, 0, len(counts))
	for idx := range counts {
		idxs = append(idxs, idx)
	}

	sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })

	for _, idx := range idxs {
		handle(coverage.NewFeature(idx, counts[idx]))
	}
}
