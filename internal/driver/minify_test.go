package driver

import (
	"path/filepath"
	"testing"
)

func TestParseArtifactComplexity(t *testing.T) {
	cases := []struct {
		name   string
		want   float64
		wantOk bool
	}{
		{"1000--abc123.in", 1000, true},
		{"0--deadbeef.in", 0, true},
		{"12.5--abc.in", 12.5, true},
		{"not-an-artifact.in", 0, false},
		{"FORMAT_VERSION", 0, false},
	}

	for _, c := range cases {
		got, ok := parseArtifactComplexity(c.name)
		if ok != c.wantOk {
			t.Fatalf("%s: ok = %v, want %v", c.name, ok, c.wantOk)
		}

		if ok && got != c.want {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestLowestComplexityArtifact_PicksSmallest(t *testing.T) {
	dir := t.TempDir()

	if _, err := SaveEntry(dir, 500, []byte("mid"), "in"); err != nil {
		t.Fatal(err)
	}

	if _, err := SaveEntry(dir, 10, []byte("small"), "in"); err != nil {
		t.Fatal(err)
	}

	if _, err := SaveEntry(dir, 9000, []byte("big"), "in"); err != nil {
		t.Fatal(err)
	}

	path, ok, err := lowestComplexityArtifact(dir)
	if err != nil {
		t.Fatalf("lowestComplexityArtifact: %v", err)
	}

	if !ok {
		t.Fatalf("expected an artifact to be found")
	}

	if got, _ := parseArtifactComplexity(filepath.Base(path)); got != 10 {
		t.Fatalf("expected the complexity-10 artifact to be picked, got complexity %v from %s", got, path)
	}
}

func TestLowestComplexityArtifact_PicksFractionalComplexity(t *testing.T) {
	dir := t.TempDir()

	if _, err := SaveEntry(dir, 20, []byte("whole"), "in"); err != nil {
		t.Fatal(err)
	}

	if _, err := SaveEntry(dir, 12.5, []byte("fractional"), "in"); err != nil {
		t.Fatal(err)
	}

	path, ok, err := lowestComplexityArtifact(dir)
	if err != nil {
		t.Fatalf("lowestComplexityArtifact: %v", err)
	}

	if !ok {
		t.Fatalf("expected an artifact to be found")
	}

	if got, ok := parseArtifactComplexity(filepath.Base(path)); !ok || got != 12.5 {
		t.Fatalf("expected the complexity-12.5 artifact to be picked, got complexity %v (ok=%v) from %s", got, ok, path)
	}
}

func TestLowestComplexityArtifact_EmptyDirReportsNotFound(t *testing.T) {
	_, ok, err := lowestComplexityArtifact(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ok {
		t.Fatalf("expected ok=false for an empty directory")
	}
}
