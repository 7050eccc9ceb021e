// SPDX-License-Identifier: MPL-2.0

package dirsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultParallelism is the default number of concurrent file writes.
	DefaultParallelism = 4

	// DefaultDigestCacheSize is the default number of file digests memoized.
	DefaultDigestCacheSize = 4096

	// LinkCopy copies file content into the output.
	LinkCopy LinkMode = "copy"
	// LinkHard hard-links sources into the output when the filesystem allows
	// it and copies otherwise.
	LinkHard LinkMode = "hardlink"

	dirPerm = 0o755
)

type (
	// LinkMode selects how files are materialized.
	LinkMode string

	// Syncer reconciles directories against a list of entries.
	Syncer struct {
		fs          afero.Fs
		parallelism int
		linkMode    LinkMode
		digests     *lru.Cache[digestKey, string]
		logger      *log.Logger
	}

	// Option configures a Syncer.
	Option func(*Syncer)

	// work is the set of operations a pass needs.
	work struct {
		result  Result
		remove  []string
		mkdirs  []string
		writes  []Entry
		rootDir bool
	}
)

// WithParallelism sets the number of concurrent file writes. Values below 1
// are treated as 1.
func WithParallelism(n int) Option {
	return func(s *Syncer) { s.parallelism = max(n, 1) }
}

// WithLinkMode sets how files are materialized.
func WithLinkMode(mode LinkMode) Option {
	return func(s *Syncer) { s.linkMode = mode }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(s *Syncer) { s.logger = logger }
}

// New creates a Syncer reading sources from and writing targets to fsys.
func New(fsys afero.Fs, opts ...Option) (*Syncer, error) {
	digests, err := lru.New[digestKey, string](DefaultDigestCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create digest cache: %w", err)
	}

	s := &Syncer{
		fs:          fsys,
		parallelism: DefaultParallelism,
		linkMode:    LinkCopy,
		digests:     digests,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.linkMode != LinkCopy && s.linkMode != LinkHard {
		return nil, fmt.Errorf("unknown link mode %q", s.linkMode)
	}
	return s, nil
}

// Diff reports what Sync would do without touching the filesystem.
func (s *Syncer) Diff(ctx context.Context, root string, entries []Entry) (*Result, error) {
	w, err := s.plan(ctx, root, entries)
	if err != nil {
		return nil, err
	}
	return &w.result, nil
}

// Sync makes root contain exactly the entries. Stale paths are removed
// first, then missing directories are created and missing or stale files are
// written in parallel. The first I/O error aborts the pass with a *SyncError.
func (s *Syncer) Sync(ctx context.Context, root string, entries []Entry) (*Result, error) {
	w, err := s.plan(ctx, root, entries)
	if err != nil {
		return nil, err
	}

	if !w.rootDir {
		if err := s.fs.MkdirAll(root, dirPerm); err != nil {
			return nil, ioError("mkdir", root, err)
		}
	}

	for _, rel := range w.remove {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := s.fs.RemoveAll(p); err != nil {
			return nil, ioError("remove", p, err)
		}
		s.logger.Debug("removed stale path", "path", rel)
	}

	for _, rel := range w.mkdirs {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := s.fs.MkdirAll(p, dirPerm); err != nil {
			return nil, ioError("mkdir", p, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for _, e := range w.writes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return s.materialize(root, e)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("synchronized directory",
		"root", root,
		"added", len(w.result.Added),
		"updated", len(w.result.Updated),
		"unchanged", len(w.result.Unchanged),
		"removed", len(w.result.Removed))
	return &w.result, nil
}

// plan compares root against the entries. It only reads.
func (s *Syncer) plan(ctx context.Context, root string, entries []Entry) (*work, error) {
	byTarget, err := validateEntries(entries)
	if err != nil {
		return nil, err
	}
	dirs := parentDirs(byTarget)

	w := &work{}
	seenFiles := make(map[string]bool, len(byTarget))
	seenDirs := make(map[string]bool, len(dirs))

	info, err := s.lstat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Nothing to compare against.
	case err != nil:
		return nil, ioError("stat", root, err)
	case !info.IsDir():
		return nil, ioError("stat", root, errors.New("output root is not a directory"))
	default:
		w.rootDir = true
		err = afero.Walk(s.fs, root, func(p string, info fs.FileInfo, walkErr error) error {
			if walkErr != nil {
				return ioError("walk", p, walkErr)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return ioError("walk", p, err)
			}
			if rel == "." {
				return nil
			}
			rel = filepath.ToSlash(rel)
			return s.classify(w, rel, p, info, byTarget, dirs, seenFiles, seenDirs)
		})
		if err != nil {
			return nil, err
		}
	}

	for target, source := range byTarget {
		if !seenFiles[target] {
			w.result.Added = append(w.result.Added, target)
			w.writes = append(w.writes, Entry{Target: target, Source: source})
		}
	}
	for dir := range dirs {
		if !seenDirs[dir] {
			w.mkdirs = append(w.mkdirs, dir)
		}
	}

	w.result.sort()
	slices.Sort(w.remove)
	slices.Sort(w.mkdirs)
	slices.SortFunc(w.writes, func(a, b Entry) int { return strings.Compare(a.Target, b.Target) })
	return w, nil
}

// classify decides the fate of one existing path during the walk.
func (s *Syncer) classify(
	w *work, rel, p string, info fs.FileInfo,
	byTarget map[string]string, dirs, seenFiles, seenDirs map[string]bool,
) error {
	isSymlink := info.Mode()&fs.ModeSymlink != 0

	if dirs[rel] {
		if info.IsDir() && !isSymlink {
			seenDirs[rel] = true
			return nil
		}
		w.remove = append(w.remove, rel)
		w.result.Removed = append(w.result.Removed, rel)
		return nil
	}

	source, wanted := byTarget[rel]
	if !wanted {
		w.remove = append(w.remove, rel)
		w.result.Removed = append(w.result.Removed, rel)
		if info.IsDir() && !isSymlink {
			return filepath.SkipDir
		}
		return nil
	}

	seenFiles[rel] = true
	stale := true
	switch {
	case info.IsDir() && !isSymlink:
		// A directory where a file belongs must go before the rename.
		w.remove = append(w.remove, rel)
		w.result.Updated = append(w.result.Updated, rel)
		w.writes = append(w.writes, Entry{Target: rel, Source: source})
		return filepath.SkipDir
	case isSymlink || !info.Mode().IsRegular():
		// Always replaced.
	default:
		same, err := s.sameContent(source, p, info)
		if err != nil {
			return err
		}
		stale = !same
	}

	if stale {
		w.result.Updated = append(w.result.Updated, rel)
		w.writes = append(w.writes, Entry{Target: rel, Source: source})
	} else {
		w.result.Unchanged = append(w.result.Unchanged, rel)
	}
	return nil
}

// materialize writes one entry through a temporary file in the target's
// directory, then renames it into place.
func (s *Syncer) materialize(root string, e Entry) error {
	target := filepath.Join(root, filepath.FromSlash(e.Target))
	dir := filepath.Dir(target)

	srcInfo, err := s.fs.Stat(e.Source)
	if err != nil {
		return ioError("stat", e.Source, err)
	}
	if !srcInfo.Mode().IsRegular() {
		return ioError("stat", e.Source, errNotRegular)
	}

	tmp, err := s.stage(dir, e.Source, srcInfo)
	if err != nil {
		return err
	}

	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return ioError("rename", target, err)
	}
	s.logger.Debug("wrote file", "target", e.Target, "source", e.Source)
	return nil
}

// stage creates the temporary file holding the new content of a target.
func (s *Syncer) stage(dir, source string, srcInfo fs.FileInfo) (string, error) {
	if s.linkMode == LinkHard {
		if tmp, ok := s.hardlink(dir, source); ok {
			return tmp, nil
		}
	}

	tmp, err := afero.TempFile(s.fs, dir, ".modcollect-*")
	if err != nil {
		return "", ioError("create", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
	}

	src, err := s.fs.Open(source)
	if err != nil {
		cleanup()
		return "", ioError("open", source, err)
	}
	defer src.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		cleanup()
		return "", ioError("copy", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return "", ioError("close", tmpName, err)
	}
	if err := s.fs.Chmod(tmpName, srcInfo.Mode().Perm()|0o400); err != nil {
		_ = s.fs.Remove(tmpName)
		return "", ioError("chmod", tmpName, err)
	}
	return tmpName, nil
}

// hardlink links source to a fresh name in dir. It only works on the OS
// filesystem; any failure (another filesystem, a cross-device link) makes the
// caller fall back to copying.
func (s *Syncer) hardlink(dir, source string) (string, bool) {
	if _, ok := s.fs.(*afero.OsFs); !ok {
		return "", false
	}

	tmp, err := afero.TempFile(s.fs, dir, ".modcollect-link-*")
	if err != nil {
		return "", false
	}
	name := tmp.Name()
	_ = tmp.Close()
	if err := s.fs.Remove(name); err != nil {
		return "", false
	}
	if err := os.Link(source, name); err != nil {
		s.logger.Debug("hard link failed, copying instead", "source", source, "err", err)
		return "", false
	}
	return name, true
}

func (s *Syncer) lstat(p string) (fs.FileInfo, error) {
	if lstater, ok := s.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(p)
		return info, err
	}
	return s.fs.Stat(p)
}
