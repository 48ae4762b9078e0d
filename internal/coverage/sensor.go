package coverage

import "fmt"

// functionCoverage pairs a parsed function record with the slice of the.
// live counters buffer assigned to it.
type functionCoverage struct {
	record   functionRecord
	counters []uint64 // this function's single-counter slots, in order
}

// Sensor reads LLVM coverage sections once at construction, then on each.
// test iteration is cleared, left to observe instrumentation writes during.
// the user function's execution, and drained for the features that fired
// (spec.md §4.5).
type Sensor struct {
	sections *Sections
	funcs    []functionCoverage

	// indexRanges[i] is the closed [start, end] span of global feature.
	// indices owned by funcs[i]; contiguous and monotone across functions.
	indexRanges [][2]int
}

// Filter decides whether to keep a function's coverage based on its source.
// file path. Both Keep and Exclude may be nil, meaning "no opinion".
type Filter struct {
	Keep    func(file string) bool
	Exclude func(file string) bool
}

func (f Filter) accepts(file string) bool {
	if f.Exclude != nil && f.Exclude(file) {
		return false
	}

	if f.Keep != nil {
		return f.Keep(file)
	}

	return true
}

// NewSensor locates the running executable's coverage sections, parses.
// them, drops functions with no discriminating counters (single counters.
// plus expression counters, total <= 1), applies filter, and assigns a.
// dense, contiguous global index to every surviving counter (spec.md §4.5.
// steps 1-3).
func NewSensor(filter Filter) (*Sensor, error) {
	sections, err := Locate()
	if err != nil {
		return nil, err
	}

	names, err := readPrfNames(sections.PrfNames)
	if err != nil {
		return nil, fmt.Errorf("coverage: failed to parse LLVM prf_names: %w", err)
	}

	nameMap := buildNameMap(names)

	files, err := readCovMap(sections.CovMap)
	if err != nil {
		return nil, fmt.Errorf("coverage: failed to parse LLVM covmap: %w", err)
	}

	records, err := readCovFun(sections.CovFun, nameMap, files)
	if err != nil {
		return nil, fmt.Errorf("coverage: failed to parse LLVM covfun: %w", err)
	}

	s := &Sensor{sections: sections}

	counterOffset := 0

	for _, rec := range records {
		span := rec.numSingle

		countersSlot := sliceOrEmpty(sections.Counters, counterOffset, span)
		counterOffset += span

		if rec.numSingle+len(rec.expressions) <= 1 {
			continue
		}

		if !filter.accepts(rec.file) {
			continue
		}

		s.funcs = append(s.funcs, functionCoverage{record: rec, counters: countersSlot})
	}

	index := 0

	for _, fc := range s.funcs {
		count := fc.record.numSingle + len(fc.record.expressions)
		s.indexRanges = append(s.indexRanges, [2]int{index, index + count - 1})
		index += count
	}

	if len(s.funcs) != len(s.indexRanges) {
		return nil, fmt.Errorf("coverage: internal invariant violated: %d functions but %d index ranges",
			len(s.funcs), len(s.indexRanges))
	}

	return s, nil
}

func sliceOrEmpty(xs []uint64, offset, length int) []uint64 {
	if offset >= len(xs) || length == 0 {
		return nil
	}

	end := offset + length
	if end > len(xs) {
		end = len(xs)
	}

	return xs[offset:end]
}

// FunctionCount returns the number of surviving, indexed functions.
func (s *Sensor) FunctionCount() int { return len(s.funcs) }

// TotalFeatures returns the dense index space size (one past the last.
// assigned index), the length the pool's HBitSet must accommodate.
func (s *Sensor) TotalFeatures() int {
	if len(s.indexRanges) == 0 {
		return 0
	}

	return s.indexRanges[len(s.indexRanges)-1][1] + 1
}

// StartRecording and StopRecording are empty hooks: LLVM counters are.
// always live once instrumented code runs, so there is nothing to toggle.
// Ordering is entirely the caller's: Clear before execution, then drain.
// (spec.md §4.5 "Recording").
func (s *Sensor) StartRecording() {}
func (s *Sensor) StopRecording()  {}

// Clear zeroes every live counter slot in place.
func (s *Sensor) Clear() {
	for i := range s.sections.Counters {
		s.sections.Counters[i] = 0
	}
}

// IterateOverCollectedFeatures visits functionIndex's counters in index.
// order — single counters first, then expression counters — emitting a.
// Feature for each nonzero value. If the function's first single counter.
// is zero, the whole function is skipped: execution never entered it
// (spec.md §4.5 "Feature iteration").
func (s *Sensor) IterateOverCollectedFeatures(functionIndex int, handle func(Feature)) {
	fc := s.funcs[functionIndex]
	index := uint32(s.indexRanges[functionIndex][0])

	if len(fc.counters) == 0 {
		return
	}

	if fc.counters[0] == 0 {
		return
	}

	handle(NewFeature(index, fc.counters[0]))
	index++

	for _, c := range fc.counters[1:] {
		if c != 0 {
			handle(NewFeature(index, c))
		}

		index++
	}

	for _, e := range fc.record.expressions {
		computed := e.compute(fc.counters)
		if computed != 0 {
			handle(NewFeature(index, computed))
		}

		index++
	}
}

// Close releases the live counters mapping.
func (s *Sensor) Close() error {
	return s.sections.Close()
}

// FunctionDump is one entry of a CoverageMap debug dump.
type FunctionDump struct {
	Name       string
	File       string
	CounterIDs []int
}

// CoverageMap returns a serializable debug dump of every surviving.
// function's name, file, and assigned counter indices, mirroring the.
// original's coverage_map() diagnostic (spec.md §4.5, grounded on.
// original_source/.../code_coverage_sensor/serialized.rs).
func (s *Sensor) CoverageMap() []FunctionDump {
	dump := make([]FunctionDump, len(s.funcs))

	for i, fc := range s.funcs {
		start, end := s.indexRanges[i][0], s.indexRanges[i][1]

		ids := make([]int, 0, end-start+1)
		for id := start; id <= end; id++ {
			ids = append(ids, id)
		}

		dump[i] = FunctionDump{Name: fc.record.name, File: fc.record.file, CounterIDs: ids}
	}

	return dump
}
