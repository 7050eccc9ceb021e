// SPDX-License-Identifier: MPL-2.0

package moddecl

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Brownshome/game-modding/pkg/cueutil"
)

const (
	// LockFileName is the name of the lock file kept next to the declaration.
	LockFileName = "mods.lock.cue"

	// LockFileVersion is the current lock file format version.
	LockFileVersion = "1"

	lockFileHeader = "// Code generated by modcollect. DO NOT EDIT.\n\n"
)

//go:embed lock_schema.cue
var lockSchema []byte

// ErrLockFileNotFound is returned by LoadLockFile when no lock file exists.
var ErrLockFileNotFound = errors.New("lock file not found")

type (
	// LockFile records the outcome of the last successful collection: the
	// selected mods and every file placed in the output directory with its
	// content digest.
	LockFile struct {
		Version string        `json:"version"`
		Output  string        `json:"output"`
		Mods    []LockedMod   `json:"mods"`
		Entries []LockedEntry `json:"entries"`
	}

	// LockedMod is one top-level mod and the folder holding its private files.
	LockedMod struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Folder  string `json:"folder"`
	}

	// LockedEntry is one file of the output directory.
	LockedEntry struct {
		Target string `json:"target"`
		Source string `json:"source"`
		SHA256 string `json:"sha256"`
		Scope  string `json:"scope"`
		Owner  string `json:"owner,omitempty"`
	}
)

// LoadLockFile reads the lock file at path. It returns an error wrapping
// ErrLockFileNotFound when the file does not exist.
func LoadLockFile(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLockFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read lock file: %w", err)
	}
	return ParseLockFile(data, path)
}

// ParseLockFile parses lock file content.
func ParseLockFile(data []byte, filename string) (*LockFile, error) {
	result, err := cueutil.ParseAndDecode[LockFile](lockSchema, data, "#LockFile", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return result.Value, nil
}

// Marshal renders the lock file as CUE. The output only depends on the
// content, so an unchanged collection produces identical bytes.
func (l *LockFile) Marshal() ([]byte, error) {
	out := *l
	if out.Version == "" {
		out.Version = LockFileVersion
	}
	if out.Mods == nil {
		out.Mods = []LockedMod{}
	}
	if out.Entries == nil {
		out.Entries = []LockedEntry{}
	}
	body, err := cueutil.Encode(out)
	if err != nil {
		return nil, err
	}
	return append([]byte(lockFileHeader), body...), nil
}

// Save writes the lock file to path atomically (temp file + rename). Nothing
// is written when the file already holds the same content; the result reports
// whether the file changed.
func (l *LockFile) Save(path string) (bool, error) {
	content, err := l.Marshal()
	if err != nil {
		return false, err
	}

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o644); err != nil {
		return false, fmt.Errorf("failed to write lock file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return false, fmt.Errorf("failed to rename lock file: %w", err)
	}
	return true, nil
}

// Entry returns the locked entry for target.
func (l *LockFile) Entry(target string) (LockedEntry, bool) {
	for _, e := range l.Entries {
		if e.Target == target {
			return e, true
		}
	}
	return LockedEntry{}, false
}
