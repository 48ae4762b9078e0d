package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/orizon-lang/corefuzz/internal/fuzzloop"
)

// MinifyResult reports the outcome of a minification run.
type MinifyResult struct {
	// Confirmed is true once the seed was reproduced as a genuine failure.
	Confirmed bool
	// Iterations is how many minify invocations were spawned after.
	// confirmation.
	Iterations int
	// FinalArtifact is the path of the smallest-complexity artifact found,.
	// if any.
	FinalArtifact string
}

// RunMinification implements spec.md §8 scenario S6: it first confirms seed.
// reproduces a failure by spawning binaryPath with `--command read
// --input-file seed`, then repeatedly selects the lowest-complexity file
// under artifactsDir and spawns `--command minify --input-file <that file>`
// on it, stopping after maxIterations (a hard cap, since spec.md §9 notes
// the loop as sketched never terminates on its own).
func RunMinification(ctx context.Context, binaryPath, seed, artifactsDir string, maxIterations int) (MinifyResult, error) {
	readArgs := &fuzzloop.Arguments{Command: fuzzloop.CommandRead, InputFile: seed}

	res, err := SpawnChild(ctx, binaryPath, readArgs)
	if err != nil {
		return MinifyResult{}, err
	}

	if !res.Failed() {
		return MinifyResult{Confirmed: false}, nil
	}

	result := MinifyResult{Confirmed: true}

	for i := 0; i < maxIterations; i++ {
		candidate, ok, err := lowestComplexityArtifact(artifactsDir)
		if err != nil {
			return result, err
		}

		if !ok {
			break
		}

		minifyArgs := &fuzzloop.Arguments{Command: fuzzloop.CommandMinify, InputFile: candidate}
		if _, err := SpawnChild(ctx, binaryPath, minifyArgs); err != nil {
			return result, err
		}

		result.Iterations++
		result.FinalArtifact = candidate
	}

	return result, nil
}

// lowestComplexityArtifact scans dir for the ArtifactName-encoded entry with.
// the smallest complexity prefix.
func lowestComplexityArtifact(dir string) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("driver: reading artifacts dir %s: %w", dir, err)
	}

	var (
		best     string
		bestCplx float64
		found    bool
	)

	for _, e := range entries {
		if e.IsDir() || e.Name() == versionFileName {
			continue
		}

		cplx, ok := parseArtifactComplexity(e.Name())
		if !ok {
			continue
		}

		if !found || cplx < bestCplx {
			best = e.Name()
			bestCplx = cplx
			found = true
		}
	}

	if !found {
		return "", false, nil
	}

	return filepath.Join(dir, best), true, nil
}

// parseArtifactComplexity extracts the complexity prefix from an.
// ArtifactName-shaped file name ("<complexity>--<hash>.<ext>"), as a float
// since mutator-reported complexity is not generally integral.
func parseArtifactComplexity(name string) (float64, bool) {
	prefix, _, ok := strings.Cut(name, "--")
	if !ok {
		return 0, false
	}

	n, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}
