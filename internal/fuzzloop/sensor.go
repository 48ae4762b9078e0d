package fuzzloop

import "github.com/orizon-lang/corefuzz/internal/coverage"

// Sensor is the contract a coverage source must satisfy to drive a Harness.
// internal/coverage.Sensor (LLVM-backed) and internal/legacyfuzz's
// ByteEdgeSensor (byte-edge fallback for uninstrumented hosts) both
// satisfy it, per spec.md §2's "a test harness owns one mutator M ... and
// one sensor S".
type Sensor interface {
	// StartRecording and StopRecording bracket a single test execution.
	// LLVM-backed sensors treat these as empty hooks (counters are always
	// live); other sensors may use them to install/remove instrumentation.
	StartRecording()
	StopRecording()

	// Clear zeroes all counter state before the next execution.
	Clear()

	// FunctionCount reports how many indexed functions/regions exist.
	FunctionCount() int

	// IterateOverCollectedFeatures visits functionIndex's features in.
	// index order, emitting only nonzero counters (spec.md §4.5).
	IterateOverCollectedFeatures(functionIndex int, handle func(coverage.Feature))
}

var _ Sensor = (*coverage.Sensor)(nil)
