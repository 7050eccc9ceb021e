// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

// startWatcher runs w until the test ends and returns the Run result channel.
func startWatcher(t *testing.T, w *Watcher) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	// Let Run reach its event loop before the test writes files.
	time.Sleep(50 * time.Millisecond)
	return cancel, errCh
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_CoalescesChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var (
		mu    sync.Mutex
		calls [][]string
	)
	done := make(chan struct{}, 1)
	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			calls = append(calls, changed)
			mu.Unlock()
			done <- struct{}{}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	cancel, errCh := startWatcher(t, w)

	for _, name := range []string{"mods.cue", "a.jar", "b.jar"} {
		writeFile(t, filepath.Join(dir, name))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the callback")
	}
	time.Sleep(200 * time.Millisecond)
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 {
		t.Fatalf("callback ran %d times, want 1: %v", len(calls), calls)
	}
	for _, want := range []string{"a.jar", "b.jar", "mods.cue"} {
		if !slices.Contains(calls[0], want) {
			t.Errorf("changed = %v, missing %s", calls[0], want)
		}
	}
	if !slices.IsSorted(calls[0]) {
		t.Errorf("changed = %v, want sorted", calls[0])
	}
}

func TestWatcher_FiltersPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "build", "mods"), 0o755); err != nil {
		t.Fatal(err)
	}
	changes := make(chan []string, 10)
	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"**/*.cue", "**/*.jar"},
		Ignore:   []string{"build/mods/**"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			changes <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "build", "mods", "out.jar"))
	writeFile(t, filepath.Join(dir, "notes.txt"))
	writeFile(t, filepath.Join(dir, "mods.cue.swp"))
	select {
	case changed := <-changes:
		t.Fatalf("callback fired for filtered paths: %v", changed)
	case <-time.After(300 * time.Millisecond):
	}

	if err := os.Mkdir(filepath.Join(dir, "local"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "local", "lib.jar"))
	select {
	case changed := <-changes:
		if !slices.Contains(changed, "local/lib.jar") {
			t.Errorf("changed = %v, want local/lib.jar", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a change in a new directory")
	}
}

func TestWatcher_SkipsWhileBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	release := make(chan struct{})
	var (
		mu    sync.Mutex
		calls int
		seen  []string
	)
	second := make(chan struct{})
	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			calls++
			n := calls
			seen = append(seen, changed...)
			mu.Unlock()
			switch n {
			case 1:
				<-release
			case 2:
				close(second)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "first.cue"))
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "second.cue"))
	time.Sleep(200 * time.Millisecond)
	close(release)

	select {
	case <-second:
	case <-time.After(5 * time.Second):
		t.Fatal("change made while busy was dropped")
	}
	mu.Lock()
	defer mu.Unlock()
	if !slices.Contains(seen, "second.cue") {
		t.Errorf("seen = %v, want second.cue", seen)
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	cancel, errCh := startWatcher(t, w)
	if err := w.Run(context.Background()); err == nil {
		t.Error("second Run() succeeded")
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       Config
		wantCount int
	}{
		{name: "zero value", cfg: Config{}},
		{name: "valid globs", cfg: Config{Patterns: []string{"**/*.cue"}, Ignore: []string{"build/**"}}},
		{name: "empty pattern", cfg: Config{Patterns: []string{""}}, wantCount: 1},
		{name: "unclosed class", cfg: Config{Patterns: []string{"[a"}, Ignore: []string{"{x"}}, wantCount: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantCount == 0 {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			var invalid *InvalidConfigError
			if !errors.As(err, &invalid) || !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() error = %v, want *InvalidConfigError", err)
			}
			if len(invalid.FieldErrors) != tt.wantCount {
				t.Errorf("FieldErrors = %v, want %d", invalid.FieldErrors, tt.wantCount)
			}
		})
	}

	if _, err := New(Config{Patterns: []string{"[a"}}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New() error = %v, want %v", err, ErrInvalidConfig)
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	ignores := DefaultIgnores()
	ignores[0] = "changed"
	if DefaultIgnores()[0] == "changed" {
		t.Error("DefaultIgnores() exposes the package slice")
	}

	w := &Watcher{ignores: DefaultIgnores()}
	for _, rel := range []string{".git/HEAD", "mods/.git/config", "mods.cue.swp", "mods.cue~", "a/.DS_Store", "lib.jar.part"} {
		if !w.ignored(rel) {
			t.Errorf("ignored(%q) = false", rel)
		}
	}
	for _, rel := range []string{"mods.cue", "repo/A/1.0/A.jar"} {
		if w.ignored(rel) {
			t.Errorf("ignored(%q) = true", rel)
		}
	}
}
