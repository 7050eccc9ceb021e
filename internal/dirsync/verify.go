// SPDX-License-Identifier: MPL-2.0

package dirsync

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
)

// Verification compares a directory with recorded file digests. All paths
// are slash-separated and relative to the root; every list is sorted.
type Verification struct {
	// Missing files are recorded but absent.
	Missing []string
	// Modified files exist with a different digest, or are not regular files.
	Modified []string
	// Extra paths exist but are not recorded. Unrecorded directories are
	// reported once, without their content.
	Extra []string
	// Verified counts the files whose digest matched.
	Verified int
}

// OK reports whether the directory matches the record exactly.
func (v *Verification) OK() bool {
	return len(v.Missing)+len(v.Modified)+len(v.Extra) == 0
}

// Verify checks that root holds exactly the files of digests (target path to
// hex SHA-256) and nothing else. It only reads.
func (s *Syncer) Verify(ctx context.Context, root string, digests map[string]string) (*Verification, error) {
	byTarget := make(map[string]string, len(digests))
	for target, sum := range digests {
		if err := validateTarget(target); err != nil {
			return nil, err
		}
		byTarget[target] = sum
	}
	dirs := parentDirs(byTarget)

	v := &Verification{}
	seen := make(map[string]bool, len(byTarget))

	info, err := s.lstat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, ioError("stat", root, err)
	case !info.IsDir():
		return nil, ioError("stat", root, errors.New("output root is not a directory"))
	default:
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
			isDir := info.IsDir() && info.Mode()&fs.ModeSymlink == 0

			if dirs[rel] && isDir {
				return nil
			}
			want, recorded := byTarget[rel]
			if !recorded {
				v.Extra = append(v.Extra, rel)
				if isDir {
					return filepath.SkipDir
				}
				return nil
			}

			seen[rel] = true
			if !info.Mode().IsRegular() {
				v.Modified = append(v.Modified, rel)
				if isDir {
					return filepath.SkipDir
				}
				return nil
			}
			sum, err := s.digest(p, info)
			if err != nil {
				return err
			}
			if sum != want {
				v.Modified = append(v.Modified, rel)
				return nil
			}
			v.Verified++
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	for target := range byTarget {
		if !seen[target] {
			v.Missing = append(v.Missing, target)
		}
	}

	slices.Sort(v.Missing)
	slices.Sort(v.Modified)
	slices.Sort(v.Extra)
	return v, nil
}
