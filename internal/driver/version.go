// Package driver is the external collaborator around a Harness: it owns the
// corpus directory on disk, spawns/reads results from the instrumented test
// binary, and drives the minification loop (spec.md §6, §8 scenario S6).
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// FormatVersion is the corpus/artifact on-disk format this build writes and.
// reads. A bump to its major component signals an incompatible layout
// change — e.g. a change to the counter ordering a persisted corpus entry's
// complexity was measured against — per spec.md §9's open question about
// persisted-corpus invalidation.
const FormatVersion = "1.0.0"

const versionFileName = "FORMAT_VERSION"

// WriteVersionFile stamps dir with the current FormatVersion, creating dir.
// if necessary. Called the first time a corpus or artifacts directory is.
// used.
func WriteVersionFile(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("driver: creating %s: %w", dir, err)
	}

	path := filepath.Join(dir, versionFileName)
	if err := os.WriteFile(path, []byte(FormatVersion+"\n"), 0o644); err != nil {
		return fmt.Errorf("driver: writing %s: %w", path, err)
	}

	return nil
}

// CheckVersionFile reads dir's FORMAT_VERSION file, if any, and reports
// whether it is compatible with the current FormatVersion: compatible means
// the same major version, per semver's usual meaning of a major bump as a
// breaking change. A missing file is treated as compatible (an empty or
// freshly created directory).
func CheckVersionFile(dir string) error {
	path := filepath.Join(dir, versionFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("driver: reading %s: %w", path, err)
	}

	stamped, err := semver.NewVersion(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("driver: %s contains an invalid version: %w", path, err)
	}

	current, err := semver.NewVersion(FormatVersion)
	if err != nil {
		return fmt.Errorf("driver: invalid built-in FormatVersion %q: %w", FormatVersion, err)
	}

	if stamped.Major() != current.Major() {
		return fmt.Errorf("driver: %s was written by format v%s, incompatible with this binary's v%s",
			dir, stamped.String(), current.String())
	}

	return nil
}
