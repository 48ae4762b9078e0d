package driver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// ArtifactName returns the on-disk name for a corpus/artifact entry: the.
// input's complexity (as a float, matching the teacher's crash-file naming
// magnitude but able to carry a fractional mutator cost) and a content hash,
// so repeated loads of the same entry are idempotent and entries self-sort
// roughly by simplicity when listed. ext is the file extension, without a
// leading dot.
func ArtifactName(complexity float64, data []byte, ext string) string {
	sum := sha256.Sum256(data)

	return fmt.Sprintf("%s--%s.%s", strconv.FormatFloat(complexity, 'f', -1, 64), hex.EncodeToString(sum[:8]), ext)
}

// LoadCorpus reads every regular file directly under dir concurrently,.
// bounded by an errgroup.Group, and returns their contents in a.
// deterministic (name-sorted) order regardless of load completion order.
func LoadCorpus(ctx context.Context, dir string) ([][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("driver: reading corpus dir %s: %w", dir, err)
	}

	if err := CheckVersionFile(dir); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() || e.Name() == versionFileName {
			continue
		}

		names = append(names, e.Name())
	}

	sort.Strings(names)

	out := make([][]byte, len(names))

	g, gctx := errgroup.WithContext(ctx)

	sem := make(chan struct{}, loadConcurrency())

	for i, name := range names {
		i, name := i, name

		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}

			defer func() { <-sem }()

			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("driver: reading corpus entry %s: %w", name, err)
			}

			out[i] = data

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func loadConcurrency() int {
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return n
	}

	return 1
}

// SaveEntry writes data to dir under its ArtifactName, creating dir (and.
// stamping it with the current FormatVersion) if it does not yet exist. A.
// preexisting file with the same name is left untouched, since the name is.
// content-addressed.
func SaveEntry(dir string, complexity float64, data []byte, ext string) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, versionFileName)); os.IsNotExist(err) {
		if err := WriteVersionFile(dir); err != nil {
			return "", err
		}
	}

	name := ArtifactName(complexity, data, ext)
	path := filepath.Join(dir, name)

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("driver: writing %s: %w", path, err)
	}

	return path, nil
}

// Watcher watches a corpus directory for externally-dropped seed files and.
// delivers their contents on New. cmd/corefuzz does not start a Watcher, so
// its `fuzz` command does not pick up seeds added while it runs.
type Watcher struct {
	w   *fsnotify.Watcher
	dir string

	New chan []byte

	closeOnce sync.Once
}

// WatchCorpus begins watching dir for newly created or written files.
func WatchCorpus(dir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("driver: creating watcher: %w", err)
	}

	if err := w.Add(dir); err != nil {
		w.Close()

		return nil, fmt.Errorf("driver: watching %s: %w", dir, err)
	}

	watcher := &Watcher{w: w, dir: dir, New: make(chan []byte, 64)}

	go watcher.loop()

	return watcher, nil
}

func (cw *Watcher) loop() {
	defer close(cw.New)

	for {
		select {
		case ev, ok := <-cw.w.Events:
			if !ok {
				return
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			if filepath.Base(ev.Name) == versionFileName {
				continue
			}

			data, err := os.ReadFile(ev.Name)
			if err != nil || len(data) == 0 {
				continue
			}

			cw.New <- data
		case _, ok := <-cw.w.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops watching and releases the underlying OS resources.
func (cw *Watcher) Close() error {
	var err error

	cw.closeOnce.Do(func() { err = cw.w.Close() })

	return err
}
