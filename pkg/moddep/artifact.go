// SPDX-License-Identifier: MPL-2.0

package moddep

import (
	"path/filepath"
)

type (
	// ResolvedArtifact is a concrete file produced by a dependency.
	ResolvedArtifact struct {
		// File is the canonical absolute path of the artifact (see CanonicalPath).
		File string

		// Dependency is the dependency that produced the file.
		Dependency Dependency

		// ModuleName is the module name the artifact declares, if any. It is
		// required when resolving with module-aware attributes.
		ModuleName string
	}

	// ArtifactSet is an insertion-ordered set of artifacts keyed by file identity.
	// The zero value is ready to use.
	ArtifactSet struct {
		order []string
		byKey map[string]ResolvedArtifact
	}
)

// CanonicalPath returns the identity path of a file: absolute, cleaned, and
// with symlinks evaluated when the file exists.
func CanonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// FileKey returns the identity used for all artifact set arithmetic.
func (a ResolvedArtifact) FileKey() string { return a.File }

// BaseName returns the file name of the artifact without its directory.
func (a ResolvedArtifact) BaseName() string { return filepath.Base(a.File) }

// NewArtifactSet builds a set from the given artifacts, keeping the first
// occurrence of each file.
func NewArtifactSet(artifacts ...ResolvedArtifact) *ArtifactSet {
	s := &ArtifactSet{}
	for _, a := range artifacts {
		s.Add(a)
	}
	return s
}

// Add inserts a into the set. It reports false when a file with the same
// identity is already present; the first occurrence wins.
func (s *ArtifactSet) Add(a ResolvedArtifact) bool {
	if s.byKey == nil {
		s.byKey = make(map[string]ResolvedArtifact)
	}
	key := a.FileKey()
	if _, ok := s.byKey[key]; ok {
		return false
	}
	s.byKey[key] = a
	s.order = append(s.order, key)
	return true
}

// AddAll inserts every artifact of other.
func (s *ArtifactSet) AddAll(other *ArtifactSet) {
	if other == nil {
		return
	}
	for _, a := range other.Artifacts() {
		s.Add(a)
	}
}

// Contains reports whether a file with the given identity is in the set.
func (s *ArtifactSet) Contains(fileKey string) bool {
	if s == nil {
		return false
	}
	_, ok := s.byKey[fileKey]
	return ok
}

// Len returns the number of artifacts in the set.
func (s *ArtifactSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Artifacts returns the artifacts in insertion order.
func (s *ArtifactSet) Artifacts() []ResolvedArtifact {
	if s == nil {
		return nil
	}
	out := make([]ResolvedArtifact, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.byKey[key])
	}
	return out
}

// Subtract returns a new set with every artifact of s whose file is not in any
// of the others. s is not modified.
func (s *ArtifactSet) Subtract(others ...*ArtifactSet) *ArtifactSet {
	out := &ArtifactSet{}
	for _, a := range s.Artifacts() {
		excluded := false
		for _, other := range others {
			if other.Contains(a.FileKey()) {
				excluded = true
				break
			}
		}
		if !excluded {
			out.Add(a)
		}
	}
	return out
}
