// Command corefuzz is the coverage-guided, structure-aware fuzzer described
// by spec.md: a single binary that, depending on --command, either runs the
// fuzzing loop, replays one input, or minifies a failing one, against a
// demo target selected by --target (spec.md §6's External Interfaces).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/orizon-lang/corefuzz/internal/cli"
	"github.com/orizon-lang/corefuzz/internal/coverage"
	"github.com/orizon-lang/corefuzz/internal/driver"
	corefuzzerrors "github.com/orizon-lang/corefuzz/internal/errors"
	"github.com/orizon-lang/corefuzz/internal/fuzzloop"
	"github.com/orizon-lang/corefuzz/internal/grammar"
	fuzz "github.com/orizon-lang/corefuzz/internal/legacyfuzz"
)

func main() {
	args, err := fuzzloop.ParseArguments(os.Args[1:])
	if err != nil {
		cli.ExitWithCode(2, "%v", err)
	}

	locale := cli.GetLocale(args.Lang)
	logger := cli.NewLogger(args.Verbose, args.Verbose)

	if args.DumpCoverageMap {
		runDumpCoverageMap()

		return
	}

	switch args.Command {
	case fuzzloop.CommandFuzz:
		runFuzz(args, locale, logger)
	case fuzzloop.CommandRead:
		runRead(args, locale)
	case fuzzloop.CommandMinify:
		runMinify(args, locale)
	}
}

// checkerFor resolves --target into the demo bug being hunted: rawTarget
// flags a 4-byte "ORIZ" canary anywhere in the input; grammarTarget treats
// the input as the flattened string of a balanced-parens AST and flags
// nesting past a fixed depth, mirroring the two kinds of target component
// C4 and the byte-level mutators exercise.
func checkerFor(target string) func([]byte) error {
	if target == "grammar" {
		return func(data []byte) error { return grammarTarget(string(data)) }
	}

	return rawTarget
}

func rawTarget(data []byte) error {
	needle := []byte("ORIZ")

	for i := 0; i+len(needle) <= len(data); i++ {
		match := true

		for j, b := range needle {
			if data[i+j] != b {
				match = false

				break
			}
		}

		if match {
			return corefuzzerrors.TestFailure("canary ORIZ found in input", nil)
		}
	}

	return nil
}

const grammarMaxDepth = 24

func grammarTarget(s string) error {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
			if depth > grammarMaxDepth {
				return corefuzzerrors.TestFailure(
					fmt.Sprintf("paren nesting exceeded %d", grammarMaxDepth), nil)
			}
		case ')':
			depth--
		}
	}

	return nil
}

func artifactExt(target string) string {
	if target == "grammar" {
		return "txt"
	}

	return "bin"
}

// buildSensor resolves --sensor into a fuzzloop.Sensor: "llvm" reads the
// running binary's own LLVM coverage sections (spec.md §4.5); anything else
// falls back to legacyfuzz's byte-edge scheme, which needs no compiler
// instrumentation. The second return value is non-nil only for the
// byte-edge fallback, since it alone needs the harness's test wrapper to
// hand it each execution's raw bytes explicitly.
func buildSensor(sensorKind string) (fuzzloop.Sensor, *fuzz.ByteEdgeSensor, error) {
	if sensorKind == "llvm" {
		s, err := coverage.NewSensor(coverage.Filter{})
		if err != nil {
			return nil, nil, corefuzzerrors.ConstructionFailure(err.Error(), nil)
		}

		return s, nil, nil
	}

	bes := fuzz.NewByteEdgeSensor("weighted")

	return bes, bes, nil
}

// runDumpCoverageMap prints the running binary's own LLVM function/region
// map as JSON, mirroring the original's coverage_map() debug dump
// (spec.md §4.5's supplemented diagnostic). It requires the binary to carry
// LLVM profiling sections; a non-instrumented build has nothing to dump.
func runDumpCoverageMap() {
	sensor, err := coverage.NewSensor(coverage.Filter{})
	if err != nil {
		cli.ExitWithCode(2, "%v", err)
	}

	data, err := json.MarshalIndent(sensor.CoverageMap(), "", "  ")
	if err != nil {
		cli.ExitWithCode(2, "%v", err)
	}

	fmt.Println(string(data))
}

func runRead(args *fuzzloop.Arguments, locale cli.Locale) {
	data, err := os.ReadFile(args.InputFile)
	if err != nil {
		cli.ExitWithCode(2, "%v", err)
	}

	check := checkerFor(args.Target)
	if err := check(data); err != nil {
		fmt.Fprintln(os.Stderr, locale.Failure(err.Error()))
		os.Exit(1)
	}

	fmt.Println(locale.Done())
}

func runMinify(args *fuzzloop.Arguments, locale cli.Locale) {
	data, err := os.ReadFile(args.InputFile)
	if err != nil {
		cli.ExitWithCode(2, "%v", err)
	}

	check := checkerFor(args.Target)
	if check(data) == nil {
		fmt.Fprintln(os.Stderr, "corefuzz: input does not reproduce a failure, nothing to minify")
		os.Exit(1)
	}

	budget := args.MaxDuration
	if budget <= 0 {
		budget = 2 * time.Second
	}

	minimized := fuzz.Minimize(0, data, check, budget)

	if args.Artifacts != nil {
		path, err := driver.SaveEntry(*args.Artifacts, float64(len(minimized)), minimized, artifactExt(args.Target))
		if err != nil {
			cli.ExitWithCode(2, "%v", err)
		}

		fmt.Println(path)
	}

	fmt.Println(locale.Done())
}

func runFuzz(args *fuzzloop.Arguments, locale cli.Locale, logger *cli.Logger) {
	sensor, byteEdge, err := buildSensor(args.Sensor)
	if err != nil {
		cli.ExitWithCode(2, "%v", err)
	}

	logger.Info("starting fuzz run: target=%s sensor=%s max-cplx=%v", args.Target, args.Sensor, args.MaxCplx)

	var (
		kept int
		seen int
	)

	if args.Target == "grammar" {
		kept, seen, err = fuzzGrammar(args, sensor, byteEdge, logger)
	} else {
		kept, seen, err = fuzzRaw(args, sensor, byteEdge, logger)
	}

	fmt.Println(locale.Cov(seen))
	fmt.Println(locale.Kept(kept))

	if err != nil {
		logger.Error("fuzz run ended with a failure: %v", err)
		fmt.Fprintln(os.Stderr, locale.Failure(err.Error()))
		os.Exit(1)
	}

	fmt.Println(locale.Done())
}

func fuzzRaw(args *fuzzloop.Arguments, sensor fuzzloop.Sensor, byteEdge *fuzz.ByteEdgeSensor, logger *cli.Logger) (int, int, error) {
	m := fuzz.NewAsTypedMutator(int(args.MaxCplx), true)
	h := fuzzloop.NewHarness[[]byte](m, sensor, args)

	target := checkerFor("raw")

	wrapped := func(v []byte) error {
		if byteEdge != nil {
			byteEdge.Record(v)
		}

		return target(v)
	}

	if err := seedCorpus(args, h, func(raw []byte) []byte { return raw }, wrapped); err != nil {
		return h.Pool.Len(), seenCount(sensor), err
	}

	logger.Debug("seed corpus loaded: %d retained so far", h.Pool.Len())

	onFailure := func(v []byte) {
		if args.Artifacts != nil {
			_, _ = driver.SaveEntry(*args.Artifacts, float64(len(v))+1, v, artifactExt(args.Target))
		}
	}

	err, stats := runLoop(args, h, wrapped, onFailure)

	saveOutCorpus(args, h, func(v []byte) []byte { return v })

	stats.Kept = h.Pool.Len()
	stats.Features = seenCount(sensor)
	writeStats(args, stats)

	logger.Info("fuzz run done: %d iterations, %d kept, %d failures", stats.Iterations, stats.Kept, stats.Failures)

	return h.Pool.Len(), seenCount(sensor), err
}

func fuzzGrammar(args *fuzzloop.Arguments, sensor fuzzloop.Sensor, byteEdge *fuzz.ByteEdgeSensor, logger *cli.Logger) (int, int, error) {
	m, err := grammar.WithStrings(grammar.BalancedParens())
	if err != nil {
		return 0, 0, corefuzzerrors.ConstructionFailure(err.Error(), nil)
	}

	h := fuzzloop.NewHarness[grammar.WithString](m, sensor, args)

	target := checkerFor("grammar")

	wrapped := func(v grammar.WithString) error {
		if byteEdge != nil {
			byteEdge.Record([]byte(v.String))
		}

		return target([]byte(v.String))
	}

	if err := seedCorpus(args, h, func(raw []byte) grammar.WithString {
		return grammar.WithString{String: string(raw)}
	}, wrapped); err != nil {
		return h.Pool.Len(), seenCount(sensor), err
	}

	logger.Debug("seed corpus loaded: %d retained so far", h.Pool.Len())

	onFailure := func(v grammar.WithString) {
		if args.Artifacts != nil {
			_, _ = driver.SaveEntry(*args.Artifacts, float64(len(v.String))+1, []byte(v.String), artifactExt(args.Target))
		}
	}

	loopErr, stats := runLoop(args, h, wrapped, onFailure)

	saveOutCorpus(args, h, func(v grammar.WithString) []byte { return []byte(v.String) })

	stats.Kept = h.Pool.Len()
	stats.Features = seenCount(sensor)
	writeStats(args, stats)

	logger.Info("fuzz run done: %d iterations, %d kept, %d failures", stats.Iterations, stats.Kept, stats.Failures)

	return h.Pool.Len(), seenCount(sensor), loopErr
}

// writeStats serializes stats to --stats, if set, per spec.md §6.
func writeStats(args *fuzzloop.Arguments, stats runStats) {
	if args.Stats == nil {
		return
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return
	}

	_ = os.WriteFile(*args.Stats, data, 0o644)
}

// seedCorpus loads --in-corpus, if set, and runs each entry through h once
// via RunSeed so its features register with the pool before the main loop
// starts (spec.md §6's --in-corpus/--out-corpus pair).
func seedCorpus[T any](args *fuzzloop.Arguments, h *fuzzloop.Harness[T], decode func([]byte) T, fn fuzzloop.TestFunc[T]) error {
	if args.InCorpus == nil {
		return nil
	}

	entries, err := driver.LoadCorpus(context.Background(), *args.InCorpus)
	if err != nil {
		return err
	}

	for _, raw := range entries {
		outcome, testErr, ok := h.RunSeed(decode(raw), fn)
		if !ok {
			continue
		}

		if outcome == fuzzloop.OutcomeFailed {
			return testErr
		}
	}

	return nil
}

// runLoop drives h's clear→execute→drain→keep-or-unmutate loop (spec.md §2's
// Data flow paragraph): each iteration samples a retained input to mutate,
// or synthesizes a fresh one when the pool is still empty, until
// MaxDuration or MaxIterations elapses. Every observed failure is reported
// through onFailure; StopAfterFirstFailure decides whether the loop then
// halts or keeps fuzzing. The error return value is the most recent
// failure's error, if any, so the caller can report it after the loop ends.
func runLoop[T any](args *fuzzloop.Arguments, h *fuzzloop.Harness[T], fn fuzzloop.TestFunc[T], onFailure func(T)) (error, runStats) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var deadline time.Time
	if args.MaxDuration > 0 {
		deadline = time.Now().Add(args.MaxDuration)
	}

	var (
		lastErr    error
		stats      runStats
		iterations int
	)

	for ; args.MaxIterations <= 0 || iterations < args.MaxIterations; iterations++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}

		v, outcome, testErr := stepOnce(h, r, fn)

		if outcome == fuzzloop.OutcomeFailed {
			onFailure(v)

			lastErr = testErr
			stats.Failures++

			if args.StopAfterFirstFailure {
				stats.Iterations = iterations + 1

				return lastErr, stats
			}
		}
	}

	stats.Iterations = iterations

	return lastErr, stats
}

// runStats is the run summary written to --stats, if set.
type runStats struct {
	Iterations int `json:"iterations"`
	Failures   int `json:"failures"`
	Kept       int `json:"kept"`
	Features   int `json:"features"`
}

// stepOnce samples a parent from the pool and mutates it, or — while the
// pool is still empty, or the sampled parent no longer validates — falls
// back to synthesizing a fresh value.
func stepOnce[T any](h *fuzzloop.Harness[T], r *rand.Rand, fn fuzzloop.TestFunc[T]) (T, fuzzloop.Outcome, error) {
	parent, ok := h.Pool.Sample(r)
	if !ok {
		return h.RunArbitrary(r, fn)
	}

	cache, ok := h.Mutator.ValidateValue(parent)
	if !ok {
		return h.RunArbitrary(r, fn)
	}

	outcome, err := h.RunMutation(r, &parent, &cache, fn)

	return parent, outcome, err
}

func seenCount(sensor fuzzloop.Sensor) int {
	if llvm, ok := sensor.(*coverage.Sensor); ok {
		return llvm.TotalFeatures()
	}

	return 0
}

// saveOutCorpus persists every input the pool retained to --out-corpus, if.
// set, so a later run can seed from this one's discoveries.
func saveOutCorpus[T any](args *fuzzloop.Arguments, h *fuzzloop.Harness[T], encode func(T) []byte) {
	if args.OutCorpus == nil {
		return
	}

	for _, e := range h.Pool.Entries() {
		data := encode(e.Value)
		_, _ = driver.SaveEntry(*args.OutCorpus, e.Complexity, data, artifactExt(args.Target))
	}
}
