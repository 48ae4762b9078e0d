// Package fuzzloop describes the orchestration surface a test loop
// consumes: the argument surface shared with the external driver, the
// Sensor contract a coverage source must satisfy, the pool that decides
// what to keep, and the harness that ties mutator, sensor, and pool
// together into a clear→execute→drain→keep-or-unmutate loop (spec.md §2,
// §6, §7 — component C7).
package fuzzloop

import (
	"flag"
	"fmt"
	"strconv"
	"time"
)

// Command selects fuzzcorefuzz's top-level mode, per spec.md §6.
type Command string

const (
	CommandFuzz   Command = "fuzz"
	CommandRead   Command = "read"
	CommandMinify Command = "minify"
)

// Arguments is the argument surface consumed from the driver and re-emitted.
// by Serialize as the spawned binary's command-line arguments; nothing is.
// passed through its environment. A nil path field (InCorpus, OutCorpus, Artifacts, Stats)
// means the corresponding "--no-*" flag was given, or neither flag was.
type Arguments struct {
	Command   Command
	InputFile string

	InCorpus  *string
	OutCorpus *string
	Artifacts *string
	Stats     *string

	MaxCplx               float64
	MaxDuration           time.Duration
	MaxIterations         int
	StopAfterFirstFailure bool
	DetectInfiniteLoop    bool

	// Target/Sensor/Lang/Verbose are cmd/corefuzz-specific extensions to
	// spec.md §6's flag table: which demo mutator to fuzz, which coverage
	// source to read it through, which locale to print messages in, and
	// whether to emit progress logging. They travel through
	// Serialize/ParseArguments alongside the core flags so a re-spawned
	// child picks the same target/sensor/lang/verbosity as its parent.
	Target  string
	Sensor  string
	Lang    string
	Verbose bool

	// DumpCoverageMap short-circuits every other command: it prints the LLVM
	// sensor's coverage.Sensor.CoverageMap() diagnostic and exits, mirroring
	// the original's coverage_map() debug dump.
	DumpCoverageMap bool
}

// ParseArguments parses args (typically os.Args[1:] or the re-emitted flag.
// string the driver passed to the spawned binary) into an Arguments value.
func ParseArguments(args []string) (*Arguments, error) {
	fs := flag.NewFlagSet("corefuzz", flag.ContinueOnError)

	command := fs.String("command", "", "fuzz|read|minify")
	inputFile := fs.String("input-file", "", "input file path (required for read/minify)")

	inCorpus := fs.String("in-corpus", "", "seed corpus directory")
	noInCorpus := fs.Bool("no-in-corpus", false, "disable the seed corpus")
	outCorpus := fs.String("out-corpus", "", "directory to write new corpus entries")
	noOutCorpus := fs.Bool("no-out-corpus", false, "disable corpus output")
	artifacts := fs.String("artifacts", "", "directory to write failing inputs")
	noArtifacts := fs.Bool("no-artifacts", false, "disable artifact output")
	stats := fs.String("stats", "", "path to write run statistics")
	noStats := fs.Bool("no-stats", false, "disable statistics output")

	maxCplx := fs.Float64("max-cplx", 4096, "complexity ceiling for synthesized values")
	maxDuration := fs.Int64("max-duration", 0, "soft wall-clock ceiling, in seconds (0=unlimited)")
	maxIterations := fs.Int("max-iterations", 0, "soft iteration ceiling (0=unlimited)")
	stopAfterFirstFailure := fs.Bool("stop-after-first-failure", false, "halt on first observed failure")
	detectInfiniteLoop := fs.Bool("detect-infinite-loop", false, "enable timeout-based hang detection")

	target := fs.String("target", "raw", "demo mutator to fuzz (raw|grammar)")
	sensor := fs.String("sensor", "raw", "coverage source (llvm|raw)")
	lang := fs.String("lang", "en", "message language (en|ja)")
	verbose := fs.Bool("verbose", false, "emit progress logging to stdout")
	dumpCoverageMap := fs.Bool("dump-coverage-map", false, "print the LLVM sensor's function/region map as JSON and exit")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("fuzzloop: %w", err)
	}

	a := &Arguments{
		Command:               Command(*command),
		InputFile:             *inputFile,
		MaxCplx:               *maxCplx,
		MaxDuration:           time.Duration(*maxDuration) * time.Second,
		MaxIterations:         *maxIterations,
		StopAfterFirstFailure: *stopAfterFirstFailure,
		DetectInfiniteLoop:    *detectInfiniteLoop,
		Target:                *target,
		Sensor:                *sensor,
		Lang:                  *lang,
		Verbose:               *verbose,
		DumpCoverageMap:       *dumpCoverageMap,
	}

	var err error

	if a.InCorpus, err = resolveOptionalPath(*inCorpus, *noInCorpus, "in-corpus"); err != nil {
		return nil, err
	}

	if a.OutCorpus, err = resolveOptionalPath(*outCorpus, *noOutCorpus, "out-corpus"); err != nil {
		return nil, err
	}

	if a.Artifacts, err = resolveOptionalPath(*artifacts, *noArtifacts, "artifacts"); err != nil {
		return nil, err
	}

	if a.Stats, err = resolveOptionalPath(*stats, *noStats, "stats"); err != nil {
		return nil, err
	}

	if a.DumpCoverageMap {
		return a, nil
	}

	switch a.Command {
	case CommandFuzz:
	case CommandRead, CommandMinify:
		if a.InputFile == "" {
			return nil, fmt.Errorf("fuzzloop: --input-file is required for --command %s", a.Command)
		}
	default:
		return nil, fmt.Errorf("fuzzloop: --command must be one of fuzz, read, minify, got %q", a.Command)
	}

	return a, nil
}

func resolveOptionalPath(value string, disabled bool, flagName string) (*string, error) {
	if disabled {
		if value != "" {
			return nil, fmt.Errorf("fuzzloop: --%s and --no-%s are mutually exclusive", flagName, flagName)
		}

		return nil, nil
	}

	if value == "" {
		return nil, nil
	}

	return &value, nil
}

// Serialize re-emits a as the flat flag slice the driver passes to a.
// spawned corefuzz binary as its command-line arguments, not via its environment.
func (a *Arguments) Serialize() []string {
	out := []string{"--command", string(a.Command)}

	if a.InputFile != "" {
		out = append(out, "--input-file", a.InputFile)
	}

	out = append(out, serializeOptionalPath("in-corpus", a.InCorpus)...)
	out = append(out, serializeOptionalPath("out-corpus", a.OutCorpus)...)
	out = append(out, serializeOptionalPath("artifacts", a.Artifacts)...)
	out = append(out, serializeOptionalPath("stats", a.Stats)...)

	out = append(out, "--max-cplx", strconv.FormatFloat(a.MaxCplx, 'f', -1, 64))
	out = append(out, "--max-duration", strconv.FormatInt(int64(a.MaxDuration/time.Second), 10))
	out = append(out, "--max-iterations", strconv.Itoa(a.MaxIterations))

	if a.StopAfterFirstFailure {
		out = append(out, "--stop-after-first-failure")
	}

	if a.DetectInfiniteLoop {
		out = append(out, "--detect-infinite-loop")
	}

	out = append(out, "--target", orDefault(a.Target, "raw"))
	out = append(out, "--sensor", orDefault(a.Sensor, "raw"))
	out = append(out, "--lang", orDefault(a.Lang, "en"))

	if a.Verbose {
		out = append(out, "--verbose")
	}

	if a.DumpCoverageMap {
		out = append(out, "--dump-coverage-map")
	}

	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}

	return v
}

func serializeOptionalPath(flagName string, v *string) []string {
	if v == nil {
		return []string{"--no-" + flagName}
	}

	return []string{"--" + flagName, *v}
}
