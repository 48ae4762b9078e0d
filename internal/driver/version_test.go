package driver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndCheckVersionFile_RoundTrips(t *testing.T) {
	dir := t.TempDir()

	if err := WriteVersionFile(dir); err != nil {
		t.Fatalf("WriteVersionFile: %v", err)
	}

	if err := CheckVersionFile(dir); err != nil {
		t.Fatalf("expected a freshly written version file to be compatible: %v", err)
	}
}

func TestCheckVersionFile_MissingFileIsCompatible(t *testing.T) {
	dir := t.TempDir()

	if err := CheckVersionFile(dir); err != nil {
		t.Fatalf("expected a missing version file to be treated as compatible: %v", err)
	}
}

func TestCheckVersionFile_IncompatibleMajorRejected(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, versionFileName)
	if err := os.WriteFile(path, []byte("99.0.0\n"), 0o644); err != nil {
		t.Fatalf("writing fixture version file: %v", err)
	}

	if err := CheckVersionFile(dir); err == nil {
		t.Fatalf("expected an incompatible major version to be rejected")
	}
}
