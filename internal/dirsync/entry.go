// SPDX-License-Identifier: MPL-2.0

package dirsync

import (
	"fmt"
	"path"
	"slices"
	"strings"
)

type (
	// Entry asks for the file at Source to be present at Target.
	Entry struct {
		// Target is a slash-separated path relative to the root.
		Target string
		// Source is the path of the file to copy.
		Source string
	}

	// Result lists what a pass did (or, for Diff, would do). All paths are
	// slash-separated and relative to the root; every list is sorted.
	Result struct {
		Added     []string
		Updated   []string
		Unchanged []string
		// Removed holds the top-most stale paths; directories are removed with
		// their content.
		Removed []string
	}
)

// Changed reports whether the pass modified (or would modify) the directory.
func (r *Result) Changed() bool {
	return len(r.Added)+len(r.Updated)+len(r.Removed) > 0
}

func (r *Result) sort() {
	slices.Sort(r.Added)
	slices.Sort(r.Updated)
	slices.Sort(r.Unchanged)
	slices.Sort(r.Removed)
}

// validateEntries checks every target and indexes the entries by target.
// Repeating an identical entry is allowed.
func validateEntries(entries []Entry) (map[string]string, error) {
	byTarget := make(map[string]string, len(entries))
	for _, e := range entries {
		if err := validateTarget(e.Target); err != nil {
			return nil, err
		}
		if e.Source == "" {
			return nil, fmt.Errorf("%w: target %q has no source", ErrInvalidEntry, e.Target)
		}
		if prev, ok := byTarget[e.Target]; ok && prev != e.Source {
			return nil, fmt.Errorf("%w: target %q has two sources: %s and %s", ErrInvalidEntry, e.Target, prev, e.Source)
		}
		byTarget[e.Target] = e.Source
	}

	// A file target must not also be the parent directory of another target.
	for target := range byTarget {
		for dir := path.Dir(target); dir != "."; dir = path.Dir(dir) {
			if _, ok := byTarget[dir]; ok {
				return nil, fmt.Errorf("%w: %q is both a file and the directory of %q", ErrInvalidEntry, dir, target)
			}
		}
	}
	return byTarget, nil
}

func validateTarget(target string) error {
	switch {
	case target == "":
		return fmt.Errorf("%w: empty target", ErrInvalidEntry)
	case strings.Contains(target, "\\"):
		return fmt.Errorf("%w: target %q must use forward slashes", ErrInvalidEntry, target)
	case path.IsAbs(target):
		return fmt.Errorf("%w: target %q must be relative", ErrInvalidEntry, target)
	case path.Clean(target) != target || target == ".":
		return fmt.Errorf("%w: target %q is not a clean path", ErrInvalidEntry, target)
	case target == ".." || strings.HasPrefix(target, "../"):
		return fmt.Errorf("%w: target %q escapes the root", ErrInvalidEntry, target)
	}
	return nil
}

// parentDirs returns every directory that must exist for the targets,
// excluding the root itself.
func parentDirs(byTarget map[string]string) map[string]bool {
	dirs := make(map[string]bool)
	for target := range byTarget {
		for dir := path.Dir(target); dir != "."; dir = path.Dir(dir) {
			dirs[dir] = true
		}
	}
	return dirs
}
