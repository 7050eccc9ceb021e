// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when files below a directory change.
//
// Events are filtered through doublestar globs and coalesced: the callback
// fires once per quiet period with every path that changed during it.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is not set.
const DefaultDebounce = 300 * time.Millisecond

// ErrInvalidConfig is the sentinel wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid watch configuration")

// defaultIgnores are never reported: VCS metadata, editor swap files and
// download leftovers.
var defaultIgnores = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
	"**/*.part",
}

type (
	// Config holds the parameters of a Watcher.
	Config struct {
		// BaseDir is the directory watched recursively. Patterns and reported
		// paths are relative to it. Empty means the working directory.
		BaseDir string
		// Patterns select the paths that trigger the callback; empty selects all.
		Patterns []string
		// Ignore excludes paths in addition to the defaults.
		Ignore []string
		// Debounce is the quiet period before the callback fires.
		Debounce time.Duration
		// OnChange receives the changed paths, sorted. Errors are logged and
		// watching continues.
		OnChange func(ctx context.Context, changed []string) error
		Logger   *log.Logger
	}

	// InvalidConfigError lists every invalid glob of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Watcher fires Config.OnChange after matching files change. Run may be
	// called once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		baseDir  string
		debounce time.Duration
		logger   *log.Logger
		started  atomic.Bool
	}
)

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("%d invalid watch pattern(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig so callers can use errors.Is.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate checks that every pattern is a well-formed glob.
func (c Config) Validate() error {
	var errs []error
	check := func(label string, patterns []string) {
		for _, pat := range patterns {
			if pat == "" || !doublestar.ValidatePattern(pat) {
				errs = append(errs, fmt.Errorf("%s %q is not a valid glob", label, pat))
			}
		}
	}
	check("pattern", c.Patterns)
	check("ignore", c.Ignore)
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// DefaultIgnores returns a copy of the patterns ignored by every Watcher.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

// New validates cfg and registers every directory below BaseDir that is not
// ignored.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		baseDir = "."
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve watched directory: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  append(DefaultIgnores(), cfg.Ignore...),
		baseDir:  absBase,
		debounce: debounce,
		logger:   logger,
	}
	if err := w.addTree(absBase); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close file watcher", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled, which returns nil. A callback
// still running when the next quiet period ends is not started twice; the
// pending paths are kept for the following attempt.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watcher is already running")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		busy    atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !busy.CompareAndSwap(false, true) {
			w.logger.Debug("previous run still in progress, retrying later")
			mu.Lock()
			timer.Reset(w.debounce)
			mu.Unlock()
			return
		}
		defer busy.Store(false)

		mu.Lock()
		changed := slices.Collect(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		if len(changed) == 0 || w.cfg.OnChange == nil {
			return
		}
		slices.Sort(changed)

		w.logger.Debug("files changed", "paths", changed)
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Error("run after change failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close file watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("file watcher event channel closed")
			}
			rel := w.relative(evt.Name)
			if w.ignored(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.addIfDir(evt.Name)
			}
			if !w.selected(rel) {
				continue
			}

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("file watcher error channel closed")
			}
			if isResourceExhausted(err) {
				return fmt.Errorf("file watcher stopped: %w", err)
			}
			w.logger.Warn("file watcher error", "err", err)
		}
	}
}

// addTree registers root and every directory below it that is not ignored.
// Unreadable directories are skipped with a warning.
func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("not watching unreadable path", "path", path, "err", walkErr)
			return nil //nolint:nilerr // skip, keep walking
		}
		if !d.IsDir() {
			return nil
		}
		if rel := w.relative(path); rel != "." && w.ignoredDir(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("register watched directories: %w", err)
	}
	return nil
}

// addIfDir extends the watch to a directory created after New.
func (w *Watcher) addIfDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("watch new directory", "path", path, "err", err)
	}
}

func (w *Watcher) relative(path string) string {
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.ignores, rel)
}

// ignoredDir also matches patterns of the form "dir/**" against dir itself.
func (w *Watcher) ignoredDir(rel string) bool {
	return w.ignored(rel) || w.ignored(rel+"/")
}

func (w *Watcher) selected(rel string) bool {
	return len(w.cfg.Patterns) == 0 || matchAny(w.cfg.Patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if doublestar.MatchUnvalidated(pat, rel) {
			return true
		}
	}
	return false
}
