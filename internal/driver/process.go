package driver

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/orizon-lang/corefuzz/internal/fuzzloop"
)

// ExecResult is one spawned child invocation's outcome.
type ExecResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Failed reports whether the child exited nonzero — the driver's signal.
// that the invocation reproduced a failure (spec.md §6, §8 scenario S6:
// "First child invocation with read on the seed must exit nonzero").
func (r ExecResult) Failed() bool { return r.ExitCode != 0 }

// SpawnChild re-executes binaryPath (the instrumented test binary) with args.
// serialized onto its command line, and waits for it to exit.
func SpawnChild(ctx context.Context, binaryPath string, args *fuzzloop.Arguments) (ExecResult, error) {
	cmd := exec.CommandContext(ctx, binaryPath, args.Serialize()...)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := ExecResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()

		return result, nil
	}

	if err != nil {
		return result, fmt.Errorf("driver: spawning %s: %w", binaryPath, err)
	}

	result.ExitCode = 0

	return result, nil
}
